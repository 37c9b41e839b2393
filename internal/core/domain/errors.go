package domain

import "go.trai.ch/zerr"

var (
	// ErrNotFound is returned when a cache-only request misses the cache.
	ErrNotFound = zerr.New("no cached response for operation")

	// ErrModelNotRecognized is returned when a typename has no registered model.
	ErrModelNotRecognized = zerr.New("model not recognized")

	// ErrInstanceNotFound is returned when an update or replace targets an entity that is not stored.
	ErrInstanceNotFound = zerr.New("instance not found")

	// ErrAlreadyExists is returned when creating an entity whose identifier already occupies a slot.
	ErrAlreadyExists = zerr.New("instance already exists")

	// ErrReplacementIdentityMismatch is returned when replace is given entities with different identities.
	ErrReplacementIdentityMismatch = zerr.New("replacement identity does not match target")

	// ErrAssignNotSupported is returned when a merge target cannot receive field assignments.
	ErrAssignNotSupported = zerr.New("target does not support field assignment")

	// ErrSuperseded is the cancellation cause of a dispatch replaced by a newer dispatch of the same operation.
	ErrSuperseded = zerr.New("dispatch superseded")

	// ErrMissingDocument is returned when a request carries no operation document.
	ErrMissingDocument = zerr.New("no query found in document")

	// ErrInvalidCachePolicy is returned when a cache policy name is not one of the five known policies.
	ErrInvalidCachePolicy = zerr.New("invalid cache policy, expected one of no-cache, cache-first, cache-only, network-only, cache-and-network")

	// ErrCacheKeyFailed is returned when the variables of an operation cannot be serialized into a cache key.
	ErrCacheKeyFailed = zerr.New("failed to compute cache key")

	// ErrTransportFailed is returned when the transport cannot complete an operation.
	ErrTransportFailed = zerr.New("transport request failed")

	// ErrGraphQLErrors is returned when the server answers with a non-empty errors list.
	ErrGraphQLErrors = zerr.New("server returned errors")

	// ErrNoEndpoint is returned when the HTTP transport is built without an endpoint.
	ErrNoEndpoint = zerr.New("no endpoint configured")

	// ErrConfigNotFound is returned when no config file exists at or above the search directory.
	ErrConfigNotFound = zerr.New("could not find gqlstore.yaml")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidModelName is returned when a model is declared without a name or declared twice.
	ErrInvalidModelName = zerr.New("invalid model name")

	// ErrInvalidVariable is returned when a command line variable is not of the form key=value.
	ErrInvalidVariable = zerr.New("invalid variable, expected key=value")

	// ErrInvalidOutputFormat is returned when the requested output format is not yaml or json.
	ErrInvalidOutputFormat = zerr.New("invalid output format, expected yaml or json")
)
