package config

import "context"

type pathKey struct{}

// WithPath returns a context carrying the config path the Config node loads.
func WithPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, pathKey{}, path)
}

// PathFromContext returns the config path carried by ctx, or the current directory.
func PathFromContext(ctx context.Context) string {
	if path, ok := ctx.Value(pathKey{}).(string); ok && path != "" {
		return path
	}
	return "."
}
