// Package mutation tracks one asynchronous create/update/delete operation:
// idle → pending → success | error, with exactly one completion callback per call.
package mutation

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

type Func[I, O any] func(ctx context.Context, input I) (O, error)

type Options[O any] struct {
	// Key names the logical action, e.g. "course:update:12". With a shared Locker, mutations
	// with the same Key exclude each other even across instances.
	Key    string
	Locker Locker

	OnSuccess func(result O)
	OnError   func(err error)
}

type Mutation[I, O any] struct {
	fn   Func[I, O]
	opts Options[O]

	mu     sync.Mutex
	status Status
	data   O
	err    error
}

func New[I, O any](fn Func[I, O], opts Options[O]) *Mutation[I, O] {
	return &Mutation[I, O]{fn: fn, opts: opts}
}

// Mutate runs the operation in a new goroutine, unless it is already pending (locally or,
// with a Locker, anywhere else): then the call is ignored and ok is false.
// done is closed once the completion callback returned.
// The operation runs on a context that is never canceled: in-flight mutations cannot be aborted.
func (m *Mutation[I, O]) Mutate(ctx context.Context, input I) (done <-chan struct{}, ok bool) {
	m.mu.Lock()
	if m.status == StatusPending {
		m.mu.Unlock()
		return nil, false
	}

	if m.opts.Locker != nil {
		locked, err := m.opts.Locker.TryLock(ctx, m.opts.Key)
		if err != nil {
			// the lock backend failing is an operation failure, reported like any other
			m.status = StatusError
			m.err = errors.Wrap(err, "acquiring mutation lock")
			m.mu.Unlock()
			ch := make(chan struct{})
			go func() {
				defer close(ch)
				m.callError(m.err)
			}()
			return ch, true
		}
		if !locked {
			m.mu.Unlock()
			return nil, false
		}
	}

	m.status = StatusPending
	m.err = nil
	m.mu.Unlock()

	ch := make(chan struct{})
	runCtx := context.WithoutCancel(ctx)
	go func() {
		defer close(ch)

		result, err := m.fn(runCtx, input)
		if m.opts.Locker != nil {
			_ = m.opts.Locker.Unlock(runCtx, m.opts.Key)
		}

		m.mu.Lock()
		if err != nil {
			m.status = StatusError
			m.err = err
		} else {
			m.status = StatusSuccess
			m.data = result
		}
		m.mu.Unlock()

		if err != nil {
			m.callError(err)
		} else if m.opts.OnSuccess != nil {
			m.opts.OnSuccess(result)
		}
	}()
	return ch, true
}

// MutateAndWait is Mutate followed by waiting for completion. It reports whether the call ran.
func (m *Mutation[I, O]) MutateAndWait(ctx context.Context, input I) bool {
	done, ok := m.Mutate(ctx, input)
	if ok {
		<-done
	}
	return ok
}

func (m *Mutation[I, O]) callError(err error) {
	if m.opts.OnError != nil {
		m.opts.OnError(err)
	}
}

func (m *Mutation[I, O]) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Mutation[I, O]) IsPending() bool {
	return m.Status() == StatusPending
}

// Data returns the result of the last successful call.
func (m *Mutation[I, O]) Data() O {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data
}

// Err returns the error of the last failed call.
func (m *Mutation[I, O]) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Reset puts a completed mutation back to idle. It has no effect while pending.
func (m *Mutation[I, O]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status == StatusPending {
		return
	}
	var zero O
	m.status = StatusIdle
	m.data = zero
	m.err = nil
}
