package ports

import "context"

// Transport executes an operation against the remote API.
//
//go:generate mockgen -source=transport.go -destination=mocks/mock_transport.go -package=mocks
type Transport interface {
	// Execute sends the document and variables and returns the raw response data.
	// Cancelling ctx aborts the call.
	Execute(ctx context.Context, document string, variables map[string]any) (any, error)
}
