package query

import (
	"context"
	"sync"
)

// State is a snapshot of a mutation's lifecycle: idle until first invoked,
// then pending, then success with a result or error with a reason.
type State[R any] struct {
	Status Status
	Result R
	Err    error
}

func (s State[R]) IsPending() bool { return s.Status == StatusPending }
func (s State[R]) IsSuccess() bool { return s.Status == StatusSuccess }
func (s State[R]) IsError() bool   { return s.Status == StatusError }

// Mutation is a named write. Results are never cached; instead each mutation
// carries the keys it is known to affect and invalidates them only after the
// run reports durable success. Retrying is always a new explicit Do call.
type Mutation[P, R any] struct {
	name        string
	store       *Store
	run         func(ctx context.Context, params P) (R, error)
	invalidates func(params P) []Key

	mu    sync.Mutex
	state State[R]
}

func NewMutation[P, R any](
	store *Store,
	name string,
	run func(ctx context.Context, params P) (R, error),
	invalidates func(params P) []Key,
) *Mutation[P, R] {
	return &Mutation[P, R]{
		name:        name,
		store:       store,
		run:         run,
		invalidates: invalidates,
	}
}

// Do executes the mutation. A second invocation while one is pending is
// rejected; that situation is the caller's to prevent (disable the trigger),
// this is the backstop. On success every affected key is invalidated so the
// next read reflects the new on-chain state.
func (m *Mutation[P, R]) Do(ctx context.Context, params P) (R, error) {
	var zero R

	m.mu.Lock()
	if m.state.Status == StatusPending {
		m.mu.Unlock()
		return zero, ErrMutationPending
	}
	m.state = State[R]{Status: StatusPending}
	m.mu.Unlock()

	result, err := m.run(ctx, params)
	if err != nil {
		m.mu.Lock()
		m.state = State[R]{Status: StatusError, Err: err}
		m.mu.Unlock()
		mutationsTotal.WithLabelValues(m.name, "error").Inc()
		return zero, err
	}

	if m.invalidates != nil {
		for _, key := range m.invalidates(params) {
			m.store.Invalidate(key)
		}
	}

	m.mu.Lock()
	m.state = State[R]{Status: StatusSuccess, Result: result}
	m.mu.Unlock()
	mutationsTotal.WithLabelValues(m.name, "success").Inc()
	return result, nil
}

// State returns a snapshot for UI gating.
func (m *Mutation[P, R]) State() State[R] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Reset returns a settled mutation to idle, e.g. after its result has been
// consumed. A pending mutation cannot be reset.
func (m *Mutation[P, R]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Status == StatusPending {
		return
	}
	m.state = State[R]{}
}
