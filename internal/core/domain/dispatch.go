package domain

// DispatchState is the lifecycle state of a dispatched operation instance.
type DispatchState string

const (
	// DispatchIdle indicates the operation has never been dispatched.
	DispatchIdle DispatchState = "idle"
	// DispatchLoading indicates the current attempt is waiting on the network.
	DispatchLoading DispatchState = "loading"
	// DispatchSuccess indicates the most recent settled attempt produced data.
	DispatchSuccess DispatchState = "success"
	// DispatchError indicates the most recent settled attempt failed.
	DispatchError DispatchState = "error"
)

// IsSettled checks if a state is terminal for an attempt (Success or Error).
func (s DispatchState) IsSettled() bool {
	return s == DispatchSuccess || s == DispatchError
}

// RequestOptions describes one gateway request.
type RequestOptions struct {
	// Document is the operation text sent to the server.
	Document string
	// Variables are the operation variables, if any.
	Variables map[string]any
	// CachePolicy overrides the gateway default when non-empty.
	CachePolicy CachePolicy
}

// Emission is one value yielded by a gateway request.
type Emission struct {
	Value any
	// Cached reports whether Value was served from the response cache.
	Cached bool
}

// ResolveEvent is emitted after a network response has been resolved into the store.
type ResolveEvent struct {
	Value     any
	Document  string
	Variables map[string]any
}
