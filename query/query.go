package query

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Status is the request lifecycle state. Transitions are forward-only: a
// request never returns to pending without a new explicit invocation.
type Status uint8

const (
	StatusIdle Status = iota
	StatusPending
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return "unknown"
}

// Query is a named read with a keyed cache entry. The key function is
// evaluated per Get so that key inputs resolved late (the connected wallet)
// are always current.
type Query[T any] struct {
	name  string
	store *Store
	keyFn func() Key
	fetch func(ctx context.Context) (T, error)

	flight singleflight.Group

	mu      sync.Mutex
	status  Status
	lastErr error
}

func NewQuery[T any](store *Store, name string, keyFn func() Key, fetch func(ctx context.Context) (T, error)) *Query[T] {
	return &Query[T]{
		name:  name,
		store: store,
		keyFn: keyFn,
		fetch: fetch,
	}
}

// Get returns the cached value for the current key, fetching through on a
// miss. Concurrent misses for the same key share one fetch. When the key is
// unresolvable the fetch does not run and ErrKeyUnresolved is returned.
func (q *Query[T]) Get(ctx context.Context) (T, error) {
	var zero T

	key := q.keyFn()
	if !key.Resolvable() {
		return zero, ErrKeyUnresolved
	}

	if cached, ok := q.store.get(key); ok {
		// A hit is a successful read: status must reflect that data is
		// available even when this query instance never fetched itself.
		q.setStatus(StatusSuccess, nil)
		queriesTotal.WithLabelValues(q.name, "hit").Inc()
		return cached.(T), nil
	}

	q.setStatus(StatusPending, nil)
	value, err, _ := q.flight.Do(string(key), func() (any, error) {
		v, err := q.fetch(ctx)
		if err != nil {
			return nil, err
		}
		q.store.set(key, v)
		return v, nil
	})
	if err != nil {
		q.setStatus(StatusError, err)
		queriesTotal.WithLabelValues(q.name, "error").Inc()
		return zero, err
	}

	q.setStatus(StatusSuccess, nil)
	queriesTotal.WithLabelValues(q.name, "miss").Inc()
	return value.(T), nil
}

// Invalidate drops this query's cache entry for the current key.
func (q *Query[T]) Invalidate() {
	q.store.Invalidate(q.keyFn())
}

func (q *Query[T]) Status() Status {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.status
}

func (q *Query[T]) Err() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lastErr
}

func (q *Query[T]) setStatus(status Status, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.status = status
	q.lastErr = err
}
