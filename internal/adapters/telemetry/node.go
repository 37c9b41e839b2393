package telemetry

import (
	"context"
	"os"
	"strings"

	"github.com/grindlemire/graft"
	"go.trai.ch/gqlstore/internal/core/ports"
)

// TracerNodeID is the unique identifier for the tracing adapter Graft node.
const TracerNodeID graft.ID = "adapter.tracer"

func init() {
	graft.Register(graft.Node[ports.Tracer]{
		ID:        TracerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Tracer, error) {
			if strings.EqualFold(os.Getenv("OTEL_SDK_DISABLED"), "true") {
				return NewNoOpTracer(), nil
			}
			return NewOTelTracer(InstrumentationName), nil
		},
	})
}
