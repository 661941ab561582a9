package core

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/JonMunkholm/datasight/internal/logging"
	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
)

// ErrDatasetNotFound is returned for unknown, cleared or expired dataset IDs.
var ErrDatasetNotFound = errors.New("dataset not found")

// ErrUnknownColumn is returned when a view change names a column the
// dataset does not have.
var ErrUnknownColumn = errors.New("unknown column")

// DefaultSessionTTL is how long an untouched dataset is kept.
const DefaultSessionTTL = 30 * time.Minute

// ServiceConfig holds the Service tunables. Zero values use the package
// defaults.
type ServiceConfig struct {
	MaxFileSize   int64
	Delimiter     rune
	DisplayCap    int
	SessionTTL    time.Duration
	MaxDatasets   uint64 // 0 = unbounded
	MaxConcurrent int
	MaxWait       time.Duration
}

// Dataset is one loaded file with its analysis and current view.
// Datasets are immutable; every change stores a new value.
type Dataset struct {
	ID       string
	Table    *Table
	Format   Format
	Analysis []ColumnAnalysis
	View     ViewState
	LoadedAt time.Time
}

// Summary describes the dataset without its rows.
func (d *Dataset) Summary() DatasetSummary {
	return DatasetSummary{
		ID:       d.ID,
		FileName: d.Table.FileName,
		Headers:  d.Table.Headers,
		RowCount: d.Table.RowCount(),
		LoadedAt: d.LoadedAt,
		Analysis: d.Analysis,
		View:     d.View,
	}
}

// Service owns the loaded datasets. Each dataset lives in a TTL-bounded
// in-memory store; nothing is written to disk.
type Service struct {
	cfg     ServiceConfig
	limiter *IngestLimiter
	store   *ttlcache.Cache[string, *Dataset]
	metrics Recorder

	// mu serializes read-modify-write of stored datasets.
	mu sync.Mutex
}

// NewService creates a Service and starts its expiry loop. Call Close to
// stop it.
func NewService(cfg ServiceConfig, rec Recorder) *Service {
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.DisplayCap <= 0 {
		cfg.DisplayCap = DefaultDisplayCap
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if rec == nil {
		rec = NopRecorder{}
	}

	opts := []ttlcache.Option[string, *Dataset]{
		ttlcache.WithTTL[string, *Dataset](cfg.SessionTTL),
	}
	if cfg.MaxDatasets > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, *Dataset](cfg.MaxDatasets))
	}

	s := &Service{
		cfg:     cfg,
		limiter: NewIngestLimiter(cfg.MaxConcurrent, cfg.MaxWait),
		store:   ttlcache.New[string, *Dataset](opts...),
		metrics: rec,
	}

	// The callback must not call back into the store.
	s.store.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, *Dataset]) {
		r := evictionReason(reason)
		if reason != ttlcache.EvictionReasonDeleted {
			slog.Info("dataset evicted", "dataset_id", item.Key(), "reason", r)
		}
		s.metrics.DatasetEvicted(r)
	})
	go s.store.Start()

	return s
}

func evictionReason(r ttlcache.EvictionReason) string {
	switch r {
	case ttlcache.EvictionReasonExpired:
		return "expired"
	case ttlcache.EvictionReasonCapacityReached:
		return "capacity"
	default:
		return "deleted"
	}
}

// Close stops the expiry loop.
func (s *Service) Close() {
	s.store.Stop()
}

// Limiter exposes the ingestion limiter for status reporting and drain.
func (s *Service) Limiter() *IngestLimiter {
	return s.limiter
}

// DisplayCap returns the configured view row cap.
func (s *Service) DisplayCap() int {
	return s.cfg.DisplayCap
}

// Count returns the number of live datasets.
func (s *Service) Count() int {
	return s.store.Len()
}

// Load ingests f and stores it as a new dataset.
func (s *Service) Load(ctx context.Context, f File) (*Dataset, error) {
	ds, err := s.ingest(ctx, f)
	if err != nil {
		return nil, err
	}
	ds.ID = uuid.NewString()

	s.store.Set(ds.ID, ds, ttlcache.DefaultTTL)

	datasetLogger(ctx, ds.ID).Info("dataset loaded",
		"file", ds.Table.FileName,
		"rows", ds.Table.RowCount(),
		"columns", len(ds.Table.Headers),
	)
	return ds, nil
}

// Replace ingests f and swaps it in for dataset id. The previous table
// stays in place if ingestion fails. The view is reset because the
// columns may differ.
func (s *Service) Replace(ctx context.Context, id string, f File) (*Dataset, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}

	ds, err := s.ingest(ctx, f)
	if err != nil {
		return nil, err
	}
	ds.ID = id

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store.Get(id) == nil {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}
	s.store.Set(id, ds, ttlcache.DefaultTTL)

	datasetLogger(ctx, id).Info("dataset replaced",
		"file", ds.Table.FileName,
		"rows", ds.Table.RowCount(),
	)
	return ds, nil
}

// datasetLogger carries the dataset and caller details through a log line.
func datasetLogger(ctx context.Context, id string) *slog.Logger {
	return logging.WithFields(ctx,
		"dataset_id", id,
		"client_ip", ClientIPFromContext(ctx),
		"user_agent", UserAgentFromContext(ctx),
	)
}

// ingest runs the pipeline under the limiter and analyzes the result.
func (s *Service) ingest(ctx context.Context, f File) (ds *Dataset, err error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in ingestion", "file", f.Name, "panic", r)
			ds, err = nil, fmt.Errorf("internal error while reading %s: %v", f.Name, r)
			s.metrics.IngestFailed("")
		}
	}()

	start := time.Now()
	table, err := Ingest(ctx, f, IngestOptions{
		MaxFileSize: s.cfg.MaxFileSize,
		Delimiter:   s.cfg.Delimiter,
	})
	if err != nil {
		s.metrics.IngestFailed(KindOf(err))
		return nil, err
	}

	format, _ := DetectFormat(f.Name)
	s.metrics.IngestSucceeded(format, table.RowCount(), time.Since(start))

	return &Dataset{
		Table:    table,
		Format:   format,
		Analysis: Analyze(table),
		LoadedAt: time.Now().UTC(),
	}, nil
}

// Get returns the dataset with the given ID and refreshes its expiry.
func (s *Service) Get(id string) (*Dataset, error) {
	item := s.store.Get(id)
	if item == nil {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}
	return item.Value(), nil
}

// Clear removes a dataset.
func (s *Service) Clear(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store.Get(id) == nil {
		return fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}
	s.store.Delete(id)
	return nil
}

// ToggleSort advances the sort cycle on column.
func (s *Service) ToggleSort(id, column string) (*Dataset, error) {
	return s.updateView(id, column, func(v ViewState) ViewState {
		return v.ToggleSort(column)
	})
}

// SetFilter sets or replaces the filter on column.
func (s *Service) SetFilter(id, column string, f ColumnFilter) (*Dataset, error) {
	if _, ok := predicates[f.Kind]; !ok {
		return nil, fmt.Errorf("unknown filter kind %q", f.Kind)
	}
	return s.updateView(id, column, func(v ViewState) ViewState {
		return v.WithFilter(column, f)
	})
}

// ClearFilter removes the filter on column.
func (s *Service) ClearFilter(id, column string) (*Dataset, error) {
	return s.updateView(id, column, func(v ViewState) ViewState {
		return v.WithoutFilter(column)
	})
}

// ClearFilters removes every filter.
func (s *Service) ClearFilters(id string) (*Dataset, error) {
	return s.updateView(id, "", func(v ViewState) ViewState {
		return v.ClearFilters()
	})
}

// updateView stores a copy of the dataset with fn applied to its view.
// A non-empty column must exist in the table.
func (s *Service) updateView(id, column string, fn func(ViewState) ViewState) (*Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if column != "" && cur.Table.ColumnIndex(column) < 0 {
		return nil, fmt.Errorf("%w %q", ErrUnknownColumn, column)
	}

	next := *cur
	next.View = fn(cur.View)
	s.store.Set(id, &next, ttlcache.DefaultTTL)

	slog.Debug("view updated",
		"dataset_id", id,
		"sort_column", next.View.Sort.Column,
		"sort_direction", next.View.Sort.Direction,
		"active_filters", next.View.ActiveFilters(),
	)
	return &next, nil
}

// View renders the dataset with its stored view state, or with override
// when non-nil. Overrides are not stored.
func (s *Service) View(id string, override *ViewState) (ViewResult, error) {
	ds, err := s.Get(id)
	if err != nil {
		return ViewResult{}, err
	}

	state := ds.View
	if override != nil {
		state = *override
	}

	start := time.Now()
	result := Render(ds.Table, state, s.cfg.DisplayCap)
	s.metrics.ViewRendered(result.Total, time.Since(start))
	return result, nil
}

// Export writes every row of the current view as CSV, without the display
// cap.
func (s *Service) Export(ctx context.Context, id string, w io.Writer) error {
	ds, err := s.Get(id)
	if err != nil {
		return err
	}
	return WriteCSV(ctx, w, ds.Table.Headers, Apply(ds.Table, ds.View))
}

// WriteCSV writes headers and rows as comma-separated values.
func WriteCSV(ctx context.Context, w io.Writer, headers []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
