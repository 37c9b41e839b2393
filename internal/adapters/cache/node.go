package cache

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/gqlstore/internal/core/ports"
)

// NodeID is the unique identifier for the response cache Graft node.
const NodeID graft.ID = "adapter.response_cache"

func init() {
	graft.Register(graft.Node[ports.ResponseCache]{
		ID:        NodeID,
		Cacheable: false,
		Run: func(_ context.Context) (ports.ResponseCache, error) {
			return NewStore(), nil
		},
	})
}
