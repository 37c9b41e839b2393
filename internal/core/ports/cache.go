package ports

// ResponseCache stores resolved responses by cache key.
//
//go:generate mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks
type ResponseCache interface {
	// Get returns the cached value for key.
	Get(key string) (any, bool)

	// Put upserts the value for key.
	Put(key string, value any)

	// Range calls fn for every entry and stores the value fn returns,
	// or deletes the entry when fn reports false.
	Range(fn func(key string, value any) (any, bool))

	// Len returns the number of entries.
	Len() int
}
