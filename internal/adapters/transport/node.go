package transport

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/gqlstore/internal/adapters/config"
	"go.trai.ch/gqlstore/internal/core/domain"
	"go.trai.ch/gqlstore/internal/core/ports"
)

// NodeID is the unique identifier for the transport Graft node.
const NodeID graft.ID = "adapter.transport"

func init() {
	graft.Register(graft.Node[ports.Transport]{
		ID:        NodeID,
		Cacheable: false,
		DependsOn: []graft.ID{config.ConfigNodeID},
		Run: func(ctx context.Context) (ports.Transport, error) {
			cfg, err := graft.Dep[domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			return New(cfg), nil
		},
	})
}
