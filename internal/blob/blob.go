// Package blob stores source documents by key.
package blob

import (
	"context"
	"path"
	"strings"

	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
)

// Store reads and writes opaque objects by key.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// CleanKey normalizes an object key and rejects keys escaping the store root.
func CleanKey(key string) (string, error) {
	k := strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	if k == "" {
		return "", common.InvalidInput("file key is required")
	}
	for _, part := range strings.Split(k, "/") {
		if part == ".." {
			return "", common.InvalidInput("file key must not contain '..'")
		}
	}
	k = strings.TrimPrefix(path.Clean("/"+k), "/")
	if k == "" {
		return "", common.InvalidInput("file key is required")
	}
	return k, nil
}
