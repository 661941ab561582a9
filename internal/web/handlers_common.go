package web

// handlers_common.go holds request parsing shared by the handlers.

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/JonMunkholm/datasight/internal/core"
	"github.com/go-chi/chi/v5"
)

// multipartOverhead is allowed on top of the file size limit for form
// boundaries and headers.
const multipartOverhead = 1 << 20

// pathParam returns the decoded URL parameter. chi routes on RawPath when
// the request carries one (an escaped slash, say), so only then is the
// parameter still escaped.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return raw
	}
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// parseViewOverride builds a one-off view from the query string, starting
// from base. It returns nil when the query asks for no override.
//
//	?sort=Age&dir=desc&filter[Name]=contains:ali
func parseViewOverride(r *http.Request, t *core.Table, base core.ViewState) (*core.ViewState, error) {
	q := r.URL.Query()
	state := base
	changed := false

	if col := q.Get("sort"); col != "" {
		if t.ColumnIndex(col) < 0 {
			return nil, fmt.Errorf("%w %q", core.ErrUnknownColumn, col)
		}
		dir := core.SortAscending
		if d := q.Get("dir"); d != "" {
			dir = core.ParseSortDirection(strings.ToLower(d))
		}
		state = state.WithSort(col, dir)
		changed = true
	}

	for key, values := range q {
		if !strings.HasPrefix(key, "filter[") || !strings.HasSuffix(key, "]") {
			continue
		}
		col := key[len("filter[") : len(key)-1]
		if col == "" || len(values) == 0 {
			continue
		}
		if t.ColumnIndex(col) < 0 {
			return nil, fmt.Errorf("%w %q", core.ErrUnknownColumn, col)
		}

		// Last value wins; a column holds one filter.
		f, err := core.ParseFilterExpr(values[len(values)-1])
		if err != nil {
			return nil, err
		}
		state = state.WithFilter(col, f)
		changed = true
	}

	if !changed {
		return nil, nil
	}
	return &state, nil
}
