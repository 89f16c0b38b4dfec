package dataset

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/agriq-org/agriq/taxonomy"
)

// ============================================================================
// STORE — Process-Wide Cache with Lazy, Idempotent Initialization
// ============================================================================
// The first caller of Table() triggers the one-time build; concurrent
// first callers block on the build mutex rather than double-building.
// After the build, Table() is a lock-free atomic load and the returned
// table is immutable. Invalidate() is the only way to force a rebuild.
// ============================================================================

// Store owns the harmonized dataset lifecycle.
type Store struct {
	rain  RainfallLoader
	crops CropLoader
	res   *taxonomy.Resolver
	log   *zap.Logger

	mu    sync.Mutex
	table atomic.Pointer[Table]
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the build logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) StoreOption {
	return func(s *Store) { s.log = log }
}

// NewStore wires the two raw loaders and the taxonomy resolver.
// Nothing is loaded until the first Table() call.
func NewStore(rain RainfallLoader, crops CropLoader, res *taxonomy.Resolver, opts ...StoreOption) *Store {
	s := &Store{rain: rain, crops: crops, res: res, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Table returns the harmonized table, building it on first use.
// A build failure is fatal for every query; it is returned to each
// caller rather than cached, so a transient loader fault can be retried.
func (s *Store) Table() (*Table, error) {
	if t := s.table.Load(); t != nil {
		return t, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.table.Load(); t != nil {
		return t, nil
	}

	grid, err := s.rain.LoadRainfall()
	if err != nil {
		return nil, fmt.Errorf("load rainfall grid: %w", err)
	}
	rows, err := s.crops.LoadCropTable()
	if err != nil {
		return nil, fmt.Errorf("load crop table: %w", err)
	}

	t, err := build(grid, rows, s.res, s.log)
	if err != nil {
		return nil, err
	}
	s.table.Store(t)
	return t, nil
}

// Invalidate discards the cached table. The next Table() call rebuilds
// from the loaders. Queries holding the old *Table keep a consistent
// snapshot; they are never mutated underneath.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table.Store(nil)
}
