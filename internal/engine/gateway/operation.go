package gateway

import (
	"context"
	"maps"
	"sync"

	"go.trai.ch/gqlstore/internal/core/domain"
	"go.trai.ch/zerr"
)

// Operation is one logical operation instance. Each Dispatch supersedes the
// dispatch still in flight on the same instance, and the state fields only ever
// reflect the most recent attempt.
type Operation struct {
	gw        *Gateway
	document  string
	policy    domain.CachePolicy
	onSuccess func(any)
	lazy      bool

	mu        sync.Mutex
	state     domain.DispatchState
	data      any
	err       error
	loading   bool
	variables map[string]any
	attempt   uint64
	cancel    context.CancelCauseFunc

	// inflight counts running dispatches; idle is closed when it drops to zero.
	inflight int
	idle     chan struct{}
}

// OperationOption configures an Operation.
type OperationOption func(*Operation)

// WithCachePolicy sets the policy of every dispatch of the operation.
func WithCachePolicy(p domain.CachePolicy) OperationOption {
	return func(o *Operation) {
		o.policy = p
	}
}

// OnSuccess registers fn to receive the data of every successful dispatch.
func OnSuccess(fn func(any)) OperationOption {
	return func(o *Operation) {
		o.onSuccess = fn
	}
}

// Lazy keeps NewOperation from dispatching on construction.
func Lazy() OperationOption {
	return func(o *Operation) {
		o.lazy = true
	}
}

// NewOperation creates an operation instance for document. Unless Lazy is given,
// the operation is dispatched in the background with no variables; use Wait to
// block until it settles.
func (g *Gateway) NewOperation(ctx context.Context, document string, opts ...OperationOption) *Operation {
	o := &Operation{
		gw:       g,
		document: document,
		state:    domain.DispatchIdle,
	}
	for _, opt := range opts {
		opt(o)
	}

	if !o.lazy {
		o.begin()
		go func() {
			defer o.end()
			_, _ = o.Dispatch(ctx, nil)
		}()
	}
	return o
}

// Dispatch runs the operation with vars and returns its last emitted value.
// A dispatch superseded by a newer one returns ErrSuperseded and leaves the
// operation state to the newer dispatch.
func (o *Operation) Dispatch(ctx context.Context, vars map[string]any) (any, error) {
	o.begin()
	defer o.end()

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	o.mu.Lock()
	if o.cancel != nil {
		o.cancel(domain.ErrSuperseded)
	}
	o.attempt++
	attempt := o.attempt
	o.cancel = cancel
	o.state = domain.DispatchLoading
	o.loading = true
	o.err = nil
	o.variables = maps.Clone(vars)
	o.mu.Unlock()

	var (
		last    any
		emitted bool
		err     error
	)
	for value, reqErr := range o.gw.Request(ctx, domain.RequestOptions{
		Document:    o.document,
		Variables:   vars,
		CachePolicy: o.policy,
	}) {
		if reqErr != nil {
			err = reqErr
			break
		}
		last, emitted = value, true
		if !o.publish(attempt, value) {
			break
		}
	}

	if !o.current(attempt) {
		return nil, zerr.Wrap(domain.ErrSuperseded, "dispatch")
	}
	if err == nil && !emitted {
		// Policies always emit or fail; an empty sequence means the context ended first.
		err = context.Cause(ctx)
	}

	o.settle(attempt, last, err)
	if err != nil {
		return nil, err
	}
	if o.onSuccess != nil {
		o.onSuccess(last)
	}
	return last, nil
}

// publish exposes an intermediate value of attempt and reports whether attempt is still current.
func (o *Operation) publish(attempt uint64, value any) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.attempt != attempt {
		return false
	}
	o.data = value
	return true
}

func (o *Operation) current(attempt uint64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.attempt == attempt
}

// settle records the outcome of attempt unless a newer attempt has started.
func (o *Operation) settle(attempt uint64, data any, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.attempt != attempt {
		return
	}
	o.loading = false
	o.cancel = nil
	o.data = data
	o.err = err
	if err != nil {
		o.state = domain.DispatchError
		return
	}
	o.state = domain.DispatchSuccess
}

func (o *Operation) begin() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.inflight == 0 {
		o.idle = make(chan struct{})
	}
	o.inflight++
}

func (o *Operation) end() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.inflight--
	if o.inflight == 0 {
		close(o.idle)
		o.idle = nil
	}
}

// Wait blocks until no dispatch is running on the operation. Dispatches started
// while Wait blocks are waited for too.
func (o *Operation) Wait() {
	for {
		o.mu.Lock()
		idle := o.idle
		o.mu.Unlock()

		if idle == nil {
			return
		}
		<-idle
	}
}

// Document returns the operation document.
func (o *Operation) Document() string {
	return o.document
}

// State returns the dispatch state.
func (o *Operation) State() domain.DispatchState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Data returns the value of the most recent attempt.
func (o *Operation) Data() any {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.data
}

// Err returns the error of the most recently settled attempt.
func (o *Operation) Err() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.err
}

// Loading reports whether the current attempt is waiting on the network.
func (o *Operation) Loading() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.loading
}

// Variables returns the variables of the most recent dispatch.
func (o *Operation) Variables() map[string]any {
	o.mu.Lock()
	defer o.mu.Unlock()
	return maps.Clone(o.variables)
}
