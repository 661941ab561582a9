package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

type observation struct {
	route, method string
	status        int
}

type fakeObserver struct {
	got []observation
}

func (f *fakeObserver) ObserveRequest(route, method string, status int, _ time.Duration) {
	f.got = append(f.got, observation{route, method, status})
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	obs := &fakeObserver{}

	r := chi.NewRouter()
	r.Use(Metrics(obs))
	r.Get("/api/datasets/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, path := range []string{"/api/datasets/a", "/api/datasets/b", "/nowhere"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	want := []observation{
		{"/api/datasets/{id}", http.MethodGet, http.StatusTeapot},
		{"/api/datasets/{id}", http.MethodGet, http.StatusTeapot},
		{"", http.MethodGet, http.StatusNotFound},
	}
	if len(obs.got) != len(want) {
		t.Fatalf("got %d observations, want %d", len(obs.got), len(want))
	}
	for i := range want {
		if obs.got[i] != want[i] {
			t.Errorf("observation[%d] = %+v, want %+v", i, obs.got[i], want[i])
		}
	}
}
