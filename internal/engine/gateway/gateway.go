// Package gateway executes operations against a transport under a cache policy and
// resolves every network result through the entity store.
package gateway

import (
	"context"
	"errors"
	"iter"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/gqlstore/internal/core/domain"
	"go.trai.ch/gqlstore/internal/core/ports"
	"go.trai.ch/gqlstore/internal/engine/store"
	"go.trai.ch/zerr"
)

// Gateway dispatches operations and owns the response cache.
type Gateway struct {
	store     *store.Store
	transport ports.Transport
	cache     ports.ResponseCache
	tracer    ports.Tracer
	logger    ports.Logger
	policy    domain.CachePolicy

	hookMu  sync.Mutex
	hookSeq uint64
	hooks   []resolveHook

	unsubscribe []func()
}

type resolveHook struct {
	id uint64
	fn func(domain.ResolveEvent)
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithDefaultPolicy sets the policy used by requests that do not name one.
func WithDefaultPolicy(p domain.CachePolicy) Option {
	return func(g *Gateway) {
		if p != "" {
			g.policy = p
		}
	}
}

// WithLogger sets the logger reporting transport failures and supersessions.
func WithLogger(l ports.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithTracer sets the tracer recording one span per request.
func WithTracer(t ports.Tracer) Option {
	return func(g *Gateway) {
		if t != nil {
			g.tracer = t
		}
	}
}

// New creates a Gateway resolving into s and caching into cache.
// Cached responses are rewritten whenever s replaces or removes an entity.
func New(s *store.Store, transport ports.Transport, cache ports.ResponseCache, opts ...Option) *Gateway {
	g := &Gateway{
		store:     s,
		transport: transport,
		cache:     cache,
		tracer:    noopTracer{},
		logger:    noopLogger{},
		policy:    domain.DefaultCachePolicy,
	}
	for _, opt := range opts {
		opt(g)
	}

	g.unsubscribe = append(g.unsubscribe,
		s.On(store.AfterReplace, func(ev store.Event) { g.rewriteCache(ev.Previous, ev.Entity) }),
		s.On(store.AfterRemove, func(ev store.Event) { g.rewriteCache(ev.Entity, nil) }),
	)
	return g
}

// Close detaches the Gateway from the store events.
func (g *Gateway) Close() {
	for _, fn := range g.unsubscribe {
		fn()
	}
	g.unsubscribe = nil
}

// DefaultPolicy returns the policy used by requests that do not name one.
func (g *Gateway) DefaultPolicy() domain.CachePolicy {
	return g.policy
}

// Store returns the entity store the Gateway resolves into.
func (g *Gateway) Store() *store.Store {
	return g.store
}

// CachedResponses returns the number of cached responses.
func (g *Gateway) CachedResponses() int {
	return g.cache.Len()
}

// Cached returns the response cached for document and variables without touching the network.
func (g *Gateway) Cached(document string, variables map[string]any) (any, bool) {
	key, err := CacheKey(document, variables)
	if err != nil {
		return nil, false
	}
	return g.cache.Get(key)
}

// OnAfterResolve registers fn for every resolved network response and returns a func removing it.
func (g *Gateway) OnAfterResolve(fn func(domain.ResolveEvent)) func() {
	g.hookMu.Lock()
	defer g.hookMu.Unlock()

	g.hookSeq++
	id := g.hookSeq
	g.hooks = append(g.hooks, resolveHook{id: id, fn: fn})

	return func() {
		g.hookMu.Lock()
		defer g.hookMu.Unlock()
		g.hooks = slices.DeleteFunc(g.hooks, func(h resolveHook) bool {
			return h.id == id
		})
	}
}

// Request returns the lazy sequence of results for one operation. Nothing runs until
// the sequence is ranged over. It yields the cached value and/or the network value as
// the policy allows, at most two values in total. A failure is yielded once as
// (nil, err) and ends the sequence. A request whose context was cancelled with
// ErrSuperseded ends without yielding an error.
func (g *Gateway) Request(ctx context.Context, opts domain.RequestOptions) iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		g.request(ctx, opts, func(em domain.Emission, err error) bool {
			return yield(em.Value, err)
		})
	}
}

// Emissions is Request with every value tagged by where it came from.
func (g *Gateway) Emissions(ctx context.Context, opts domain.RequestOptions) iter.Seq2[domain.Emission, error] {
	return func(yield func(domain.Emission, error) bool) {
		g.request(ctx, opts, yield)
	}
}

func (g *Gateway) request(ctx context.Context, opts domain.RequestOptions, yield func(domain.Emission, error) bool) {
	if strings.TrimSpace(opts.Document) == "" {
		yield(domain.Emission{}, zerr.Wrap(domain.ErrMissingDocument, "request"))
		return
	}

	policy := opts.CachePolicy
	if policy == "" {
		policy = g.policy
	}
	if !policy.IsValid() {
		yield(domain.Emission{}, zerr.With(zerr.Wrap(domain.ErrInvalidCachePolicy, "request"), "policy", string(policy)))
		return
	}

	key, err := CacheKey(opts.Document, opts.Variables)
	if err != nil {
		yield(domain.Emission{}, err)
		return
	}

	ctx, span := g.tracer.Start(ctx, "gateway.request")
	defer span.End()
	span.SetAttribute("policy", string(policy))
	span.SetAttribute("cache_key", key)

	emissions := 0
	defer func() {
		span.SetAttribute("emissions", emissions)
	}()

	if policy.AllowsHit() {
		cached, hit := g.cache.Get(key)
		span.SetAttribute("cache_hit", hit)
		switch {
		case hit:
			emissions++
			if !yield(domain.Emission{Value: cached, Cached: true}, nil) || policy == domain.CachePolicyCacheFirst {
				return
			}
		case policy == domain.CachePolicyCacheOnly:
			err := zerr.With(zerr.Wrap(domain.ErrNotFound, "cache-only request"), "cache_key", key)
			span.RecordError(err)
			yield(domain.Emission{}, err)
			return
		}
	}
	if !policy.AllowsNetwork() {
		return
	}

	raw, err := g.transport.Execute(ctx, opts.Document, opts.Variables)
	if err != nil {
		// Supersession is not a failure of the request, so the sequence just ends.
		if errors.Is(context.Cause(ctx), domain.ErrSuperseded) {
			g.logger.Info("request superseded: " + key)
			return
		}
		span.RecordError(err)
		g.logger.Error(err)
		yield(domain.Emission{}, err)
		return
	}

	resolved, err := g.store.Resolve(raw, domain.SourceRemote)
	if err != nil {
		span.RecordError(err)
		yield(domain.Emission{}, zerr.With(err, "cache_key", key))
		return
	}

	if policy.AllowsStore() {
		g.cache.Put(key, resolved)
	}

	emissions++
	yield(domain.Emission{Value: resolved}, nil)
	g.emitResolved(domain.ResolveEvent{Value: resolved, Document: opts.Document, Variables: opts.Variables})
}

func (g *Gateway) emitResolved(ev domain.ResolveEvent) {
	g.hookMu.Lock()
	hooks := slices.Clone(g.hooks)
	g.hookMu.Unlock()

	for _, h := range hooks {
		h.fn(ev)
	}
}

// rewriteCache applies a store replace or remove to every cached response.
// A response whose root was the removed entity is evicted.
func (g *Gateway) rewriteCache(from, to *store.Entity) {
	g.cache.Range(func(_ string, value any) (any, bool) {
		rewritten := g.store.Rewrite(value, from, to)
		return rewritten, rewritten != nil || value == nil
	})
}

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string) (context.Context, ports.Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End() {}

func (noopSpan) RecordError(error) {}

func (noopSpan) SetAttribute(string, any) {}

type noopLogger struct{}

func (noopLogger) Info(string) {}

func (noopLogger) Warn(string) {}

func (noopLogger) Error(error) {}
