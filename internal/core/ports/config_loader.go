package ports

import "go.trai.ch/gqlstore/internal/core/domain"

// ConfigLoader loads the client configuration.
type ConfigLoader interface {
	// Load reads the configuration at path.
	Load(path string) (domain.Config, error)
}
