// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/gqlstore/internal/adapters/cache"
	_ "go.trai.ch/gqlstore/internal/adapters/config"
	_ "go.trai.ch/gqlstore/internal/adapters/logger"
	_ "go.trai.ch/gqlstore/internal/adapters/telemetry"
	_ "go.trai.ch/gqlstore/internal/adapters/telemetry/progrock"
	_ "go.trai.ch/gqlstore/internal/adapters/transport"
	// Register app and engine nodes.
	_ "go.trai.ch/gqlstore/internal/app"
	_ "go.trai.ch/gqlstore/internal/engine/gateway"
	_ "go.trai.ch/gqlstore/internal/engine/store"
)
