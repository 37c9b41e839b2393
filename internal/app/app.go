// Package app implements the application layer for gqlstore.
package app

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"go.trai.ch/gqlstore/internal/core/domain"
	"go.trai.ch/gqlstore/internal/core/ports"
	"go.trai.ch/gqlstore/internal/engine/gateway"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	gateway   *gateway.Gateway
	telemetry ports.Telemetry
	logger    ports.Logger
}

// New creates a new App instance.
func New(gw *gateway.Gateway, telemetry ports.Telemetry, log ports.Logger) *App {
	return &App{
		gateway:   gw,
		telemetry: telemetry,
		logger:    log,
	}
}

// QueryInput describes one operation to run.
type QueryInput struct {
	// Name labels the operation in telemetry and logs. Defaults to "query".
	Name      string
	Document  string
	Variables map[string]any
	// Policy overrides the configured default cache policy when non-empty.
	Policy domain.CachePolicy
}

func (in QueryInput) label() string {
	if in.Name == "" {
		return "query"
	}
	return in.Name
}

// Stats summarizes the store and response cache contents.
type Stats struct {
	Entities        map[string]int
	CachedResponses int
}

// Query runs one operation and passes a snapshot of every emission to emit.
// Returning an error from emit stops the operation.
func (a *App) Query(ctx context.Context, in QueryInput, emit func(any) error) error {
	policy := in.Policy
	if policy == "" {
		policy = a.gateway.DefaultPolicy()
	}

	ctx, vertex := a.telemetry.Record(ctx, in.label())
	vertex.Log(describe(policy, in))

	var err error
	for em, reqErr := range a.gateway.Emissions(ctx, domain.RequestOptions{
		Document:    in.Document,
		Variables:   in.Variables,
		CachePolicy: policy,
	}) {
		if reqErr != nil {
			err = reqErr
			break
		}
		if em.Cached {
			vertex.Cached()
			vertex.Log("served from cache")
		} else {
			vertex.Log("resolved from network")
		}
		if err = emit(a.gateway.Store().Snapshot(em.Value)); err != nil {
			break
		}
	}

	vertex.Complete(err)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "query failed"), "operation", in.label())
	}
	return nil
}

// describe renders the policy and cache key of in for its vertex.
func describe(policy domain.CachePolicy, in QueryInput) string {
	key, err := gateway.CacheKey(in.Document, in.Variables)
	if err != nil {
		key = "unavailable"
	}
	return fmt.Sprintf("policy %s, cache key %s", policy, key)
}

// Prefetch runs every input concurrently to warm the response cache.
// Inputs whose policy does not store results are run as network-only.
func (a *App) Prefetch(ctx context.Context, inputs []QueryInput) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, in := range inputs {
		if !in.Policy.AllowsStore() {
			in.Policy = domain.CachePolicyNetworkOnly
		}
		g.Go(func() error {
			return a.Query(ctx, in, func(any) error { return nil })
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info(fmt.Sprintf("prefetched %d operations, %d responses cached", len(inputs), a.gateway.CachedResponses()))
	return nil
}

// Snapshot converts a resolved value into a plain tree.
func (a *App) Snapshot(v any) any {
	return a.gateway.Store().Snapshot(v)
}

// Stats reports entity counts per model and the number of cached responses.
func (a *App) Stats() Stats {
	s := a.gateway.Store()
	entities := make(map[string]int)
	for _, name := range s.Models() {
		entities[name] = s.Len(name)
	}
	return Stats{
		Entities:        entities,
		CachedResponses: a.gateway.CachedResponses(),
	}
}

// ModelNames returns the registered model names in sorted order.
func (s Stats) ModelNames() []string {
	return slices.Sorted(maps.Keys(s.Entities))
}

// Close detaches the gateway and flushes telemetry.
func (a *App) Close() error {
	a.gateway.Close()
	return a.telemetry.Close()
}
