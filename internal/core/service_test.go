package core

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/datasight/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRecorder struct {
	mu        sync.Mutex
	succeeded int
	failed    []ErrorKind
	views     int
}

func (r *recordingRecorder) IngestSucceeded(Format, int, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.succeeded++
}

func (r *recordingRecorder) IngestFailed(kind ErrorKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, kind)
}

func (r *recordingRecorder) ViewRendered(int, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views++
}

func (r *recordingRecorder) DatasetEvicted(string) {}

func newTestService(t *testing.T, cfg ServiceConfig) (*Service, *recordingRecorder) {
	t.Helper()
	rec := &recordingRecorder{}
	svc := NewService(cfg, rec)
	t.Cleanup(svc.Close)
	return svc, rec
}

func TestService_LoadAndGet(t *testing.T) {
	svc, rec := newTestService(t, ServiceConfig{})
	ctx := ContextWithClientIP(context.Background(), "10.0.0.1")

	ds, err := svc.Load(ctx, csvFile("people.csv", "name,age\nAlice,30\nBob,\nCarol,25"))
	require.NoError(t, err)
	require.NotEmpty(t, ds.ID)

	got, err := svc.Get(ds.ID)
	require.NoError(t, err)
	assert.Same(t, ds, got)

	summary := got.Summary()
	assert.Equal(t, "people.csv", summary.FileName)
	assert.Equal(t, 3, summary.RowCount)
	require.Len(t, summary.Analysis, 2)
	assert.Equal(t, TypeNumber, summary.Analysis[1].Type)

	assert.Equal(t, 1, svc.Count())
	assert.Equal(t, 1, rec.succeeded)
}

func TestService_LogsCallerAndView(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(logging.New(&buf, "debug", "text"))
	defer slog.SetDefault(prev)

	svc, _ := newTestService(t, ServiceConfig{})
	ctx := ContextWithClientIP(context.Background(), "10.0.0.1")
	ctx = ContextWithUserAgent(ctx, "datasight-test/1.0")

	ds, err := svc.Load(ctx, csvFile("people.csv", "name,age\nAlice,30\nBob,12"))
	require.NoError(t, err)
	_, err = svc.SetFilter(ds.ID, "age", ColumnFilter{Kind: FilterGreaterThan, Operand: "20"})
	require.NoError(t, err)
	_, err = svc.SetFilter(ds.ID, "name", ColumnFilter{Kind: FilterContains})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "dataset_id="+ds.ID)
	assert.Contains(t, out, "client_ip=10.0.0.1")
	assert.Contains(t, out, "user_agent=datasight-test/1.0")
	assert.Contains(t, out, "active_filters=1")
}

func TestService_LoadFailureRecordsKind(t *testing.T) {
	svc, rec := newTestService(t, ServiceConfig{})

	_, err := svc.Load(context.Background(), csvFile("x.csv", "a,b\n"))
	assert.ErrorIs(t, err, ErrEmptyFile)
	assert.Equal(t, []ErrorKind{KindEmptyFile}, rec.failed)
	assert.Equal(t, 0, svc.Count())
}

func TestService_ReplaceKeepsOldTableOnFailure(t *testing.T) {
	svc, _ := newTestService(t, ServiceConfig{})
	ctx := context.Background()

	ds, err := svc.Load(ctx, csvFile("a.csv", "a\n1\n2"))
	require.NoError(t, err)
	_, err = svc.ToggleSort(ds.ID, "a")
	require.NoError(t, err)

	_, err = svc.Replace(ctx, ds.ID, csvFile("b.csv", "b\n"))
	assert.ErrorIs(t, err, ErrEmptyFile)

	kept, err := svc.Get(ds.ID)
	require.NoError(t, err)
	assert.Equal(t, "a.csv", kept.Table.FileName)
	assert.True(t, kept.View.Sort.Active())

	replaced, err := svc.Replace(ctx, ds.ID, csvFile("b.csv", "b\nx"))
	require.NoError(t, err)
	assert.Equal(t, ds.ID, replaced.ID)
	assert.Equal(t, "b.csv", replaced.Table.FileName)
	assert.False(t, replaced.View.Sort.Active(), "view resets with a new table")
}

func TestService_Clear(t *testing.T) {
	svc, _ := newTestService(t, ServiceConfig{})

	ds, err := svc.Load(context.Background(), csvFile("a.csv", "a\n1"))
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ds.ID))
	_, err = svc.Get(ds.ID)
	assert.ErrorIs(t, err, ErrDatasetNotFound)
	assert.ErrorIs(t, svc.Clear(ds.ID), ErrDatasetNotFound)
}

func TestService_ViewStateChanges(t *testing.T) {
	svc, rec := newTestService(t, ServiceConfig{DisplayCap: 2})

	ds, err := svc.Load(context.Background(), csvFile("p.csv", "name,age\nAlice,30\nBob,\nCarol,25"))
	require.NoError(t, err)

	_, err = svc.ToggleSort(ds.ID, "age")
	require.NoError(t, err)

	view, err := svc.View(ds.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Carol", "25"}, {"Alice", "30"}}, view.Rows)
	assert.Equal(t, 3, view.Total)
	assert.Equal(t, 2, view.Cap)

	_, err = svc.SetFilter(ds.ID, "name", ColumnFilter{Kind: FilterContains, Operand: "o"})
	require.NoError(t, err)
	view, err = svc.View(ds.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Carol", "25"}, {"Bob", ""}}, view.Rows)

	_, err = svc.ClearFilter(ds.ID, "name")
	require.NoError(t, err)
	_, err = svc.SetFilter(ds.ID, "age", ColumnFilter{Kind: FilterLessThan, Operand: "28"})
	require.NoError(t, err)
	cur, err := svc.ClearFilters(ds.ID)
	require.NoError(t, err)
	assert.Empty(t, cur.View.Filters)

	override := ViewState{}.WithSort("name", SortDescending)
	view, err = svc.View(ds.ID, &override)
	require.NoError(t, err)
	assert.Equal(t, "Carol", view.Rows[0][0])

	stored, err := svc.Get(ds.ID)
	require.NoError(t, err)
	assert.Equal(t, "age", stored.View.Sort.Column, "override is not stored")
	assert.Equal(t, 3, rec.views)
}

func TestService_ViewChangeErrors(t *testing.T) {
	svc, _ := newTestService(t, ServiceConfig{})

	_, err := svc.ToggleSort("missing", "a")
	assert.ErrorIs(t, err, ErrDatasetNotFound)

	ds, err := svc.Load(context.Background(), csvFile("a.csv", "a\n1"))
	require.NoError(t, err)

	_, err = svc.ToggleSort(ds.ID, "zzz")
	assert.ErrorIs(t, err, ErrUnknownColumn)

	_, err = svc.SetFilter(ds.ID, "a", ColumnFilter{Kind: "between", Operand: "1"})
	assert.ErrorContains(t, err, "unknown filter kind")
}

func TestService_Export(t *testing.T) {
	svc, _ := newTestService(t, ServiceConfig{DisplayCap: 1})
	ctx := context.Background()

	ds, err := svc.Load(ctx, csvFile("p.csv", "name,note\nBob,\"x, y\"\nAlice,z\nCarl,q"))
	require.NoError(t, err)
	_, err = svc.ToggleSort(ds.ID, "name")
	require.NoError(t, err)
	_, err = svc.SetFilter(ds.ID, "name", ColumnFilter{Kind: FilterContains, Operand: "l"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(ctx, ds.ID, &buf))
	assert.Equal(t, "name,note\nAlice,z\nCarl,q\n", buf.String())
}

func TestService_ExpiresDatasets(t *testing.T) {
	svc, _ := newTestService(t, ServiceConfig{SessionTTL: 20 * time.Millisecond})

	ds, err := svc.Load(context.Background(), csvFile("a.csv", "a\n1"))
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, err := svc.Get(ds.ID)
		return err != nil
	}, time.Second, 10*time.Millisecond)
}

func TestService_Capacity(t *testing.T) {
	svc, _ := newTestService(t, ServiceConfig{MaxDatasets: 2})
	ctx := context.Background()

	first, err := svc.Load(ctx, csvFile("1.csv", "a\n1"))
	require.NoError(t, err)
	_, err = svc.Load(ctx, csvFile("2.csv", "a\n2"))
	require.NoError(t, err)
	_, err = svc.Load(ctx, csvFile("3.csv", "a\n3"))
	require.NoError(t, err)

	assert.Equal(t, 2, svc.Count())
	_, err = svc.Get(first.ID)
	assert.ErrorIs(t, err, ErrDatasetNotFound)
}
