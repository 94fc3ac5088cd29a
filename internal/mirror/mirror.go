// Package mirror implements the mutate-then-reload cache that every
// resource container builds on. The backend owns the data; a Mirror
// only holds the latest snapshot it managed to load.
package mirror

import (
	"context"
	"sync"
	"time"

	pkgerrors "github.com/mvgarcia/taproom/pkg/errors"
	"github.com/mvgarcia/taproom/pkg/logger"
	"github.com/mvgarcia/taproom/pkg/metrics"
)

// Loader fetches the full collection snapshot from the backend.
type Loader[T any] func(ctx context.Context) ([]T, error)

// Params wires a Mirror's dependencies.
type Params[T any] struct {
	Resource string
	Load     Loader[T]
	Logger   *logger.Logger
	Metrics  *metrics.MirrorMetrics
}

// Mirror caches one resource collection. Every mutation goes to the
// backend first and triggers a full reload on success; a failed
// mutation leaves the cached snapshot untouched.
type Mirror[T any] struct {
	mu       sync.RWMutex
	items    []T
	loaded   bool
	seq      uint64
	resource string
	load     Loader[T]
	logger   *logger.Logger
	metrics  *metrics.MirrorMetrics
}

// New validates the params and builds an empty mirror.
func New[T any](params Params[T]) (*Mirror[T], error) {
	if params.Resource == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "resource name is required")
	}
	if params.Load == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "loader is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &Mirror[T]{
		resource: params.Resource,
		load:     params.Load,
		logger:   params.Logger,
		metrics:  params.Metrics,
	}, nil
}

// Refresh reloads the collection from the backend. Each call takes a
// sequence number before the fetch; if another refresh started while
// this one was in flight, the older result is discarded so a slow
// response cannot overwrite a newer snapshot.
func (m *Mirror[T]) Refresh(ctx context.Context) error {
	m.mu.Lock()
	m.seq++
	seq := m.seq
	m.mu.Unlock()

	start := time.Now()
	items, err := m.load(m.logger.WithResource(ctx, m.resource))
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if seq != m.seq {
		m.metrics.IncStaleDiscard(m.resource)
		m.logger.Debug(m.logger.WithResource(ctx, m.resource), "discarded stale refresh result")
		return nil
	}
	m.items = items
	m.loaded = true
	m.metrics.ObserveRefresh(m.resource, time.Since(start))
	return nil
}

// Apply runs a backend mutation and, when it succeeds, reconciles by
// reloading the full collection. On mutation failure the cache is left
// exactly as it was and the error is returned to the caller.
func (m *Mirror[T]) Apply(ctx context.Context, op func(ctx context.Context) error) error {
	if op == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "mutation is required")
	}
	if err := op(ctx); err != nil {
		m.metrics.IncMutationError(m.resource)
		return err
	}
	return m.Refresh(ctx)
}

// Items returns a copy of the cached snapshot.
func (m *Mirror[T]) Items() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]T, len(m.items))
	copy(out, m.items)
	return out
}

// Loaded reports whether at least one refresh has completed.
func (m *Mirror[T]) Loaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loaded
}

// Len returns the cached collection size.
func (m *Mirror[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

// Find returns the first cached item matching the predicate.
func (m *Mirror[T]) Find(match func(T) bool) (T, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, item := range m.items {
		if match(item) {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Reset drops the cached snapshot, typically on logout.
func (m *Mirror[T]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = nil
	m.loaded = false
	m.seq++
}
