package domain

import "time"

// ConfigFileName is the file looked up when no config path is given.
const ConfigFileName = "gqlstore.yaml"

// DefaultTimeout bounds a single transport round trip.
const DefaultTimeout = 30 * time.Second

// Config is the resolved client configuration.
type Config struct {
	// Endpoint is the GraphQL HTTP endpoint.
	Endpoint string
	// Headers are sent with every transport request.
	Headers map[string]string
	// Timeout bounds a single transport round trip.
	Timeout time.Duration
	// Conventions names the identifier and discriminator fields.
	Conventions Conventions
	// DefaultCachePolicy applies to requests that do not name a policy.
	DefaultCachePolicy CachePolicy
	// Strict makes resolve fail on typenames without a registered model
	// instead of treating those objects as plain values.
	Strict bool
	// Models is the discriminator registry.
	Models []Model
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	return Config{
		Timeout:            DefaultTimeout,
		Conventions:        DefaultConventions(),
		DefaultCachePolicy: DefaultCachePolicy,
	}
}
