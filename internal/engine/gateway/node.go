package gateway

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/gqlstore/internal/adapters/cache"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/gqlstore/internal/adapters/config"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/gqlstore/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/gqlstore/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/gqlstore/internal/adapters/transport" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/gqlstore/internal/core/domain"
	"go.trai.ch/gqlstore/internal/core/ports"
	"go.trai.ch/gqlstore/internal/engine/store"
)

// NodeID is the unique identifier for the gateway Graft node.
const NodeID graft.ID = "engine.gateway"

func init() {
	graft.Register(graft.Node[*Gateway]{
		ID:        NodeID,
		Cacheable: false,
		DependsOn: []graft.ID{
			config.ConfigNodeID,
			store.NodeID,
			transport.NodeID,
			cache.NodeID,
			telemetry.TracerNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Gateway, error) {
			cfg, err := graft.Dep[domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			s, err := graft.Dep[*store.Store](ctx)
			if err != nil {
				return nil, err
			}
			tr, err := graft.Dep[ports.Transport](ctx)
			if err != nil {
				return nil, err
			}
			responses, err := graft.Dep[ports.ResponseCache](ctx)
			if err != nil {
				return nil, err
			}
			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(s, tr, responses,
				WithDefaultPolicy(cfg.DefaultCachePolicy),
				WithTracer(tracer),
				WithLogger(log),
			), nil
		},
	})
}
