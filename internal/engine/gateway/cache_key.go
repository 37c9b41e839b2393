package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/gqlstore/internal/core/domain"
	"go.trai.ch/zerr"
)

// CacheKey derives the cache key of an operation from its document text and variables.
// Variables are serialized as JSON with sorted object keys, and nil and empty variables
// produce the same key.
func CacheKey(document string, variables map[string]any) (string, error) {
	encoded := []byte("{}")
	if len(variables) > 0 {
		var err error
		encoded, err = json.Marshal(variables)
		if err != nil {
			return "", zerr.With(zerr.Wrap(domain.ErrCacheKeyFailed, err.Error()), "document", document)
		}
	}

	d := xxhash.New()
	_, _ = d.WriteString(document)
	_, _ = d.Write([]byte{0})
	_, _ = d.Write(encoded)
	return fmt.Sprintf("%016x", d.Sum64()), nil
}
