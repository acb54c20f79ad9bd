package store

import (
	"context"
	"fmt"
	"strings"
)

// Backend kinds accepted by OpenBackend.
const (
	BackendSQLite = "sqlite"
	BackendDir    = "dir"
	BackendMemory = "memory"
)

// OpenBackend opens the backend of the given kind rooted at path.
func OpenBackend(ctx context.Context, kind, path string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case BackendSQLite:
		b, err := OpenSQLite(ctx, path)
		if err != nil {
			return nil, err
		}
		return b, nil
	case BackendDir:
		b, err := OpenDir(path)
		if err != nil {
			return nil, err
		}
		return b, nil
	case BackendMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("store backend: unsupported value %q", kind)
	}
}
