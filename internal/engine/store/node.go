package store

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/gqlstore/internal/adapters/config" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/gqlstore/internal/core/domain"
)

// NodeID is the unique identifier for the store Graft node.
const NodeID graft.ID = "engine.store"

func init() {
	graft.Register(graft.Node[*Store]{
		ID:        NodeID,
		Cacheable: false,
		DependsOn: []graft.ID{config.ConfigNodeID},
		Run: func(ctx context.Context) (*Store, error) {
			cfg, err := graft.Dep[domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			return NewFromConfig(cfg)
		},
	})
}
