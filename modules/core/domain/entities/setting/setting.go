package setting

import "context"

// Setting is a key/value pair. A tenant-scoped row overrides the global
// default with the same key.
type Setting struct {
	Key   string
	Value string
}

type Repository interface {
	// Get returns the tenant override when present, else the global default.
	Get(ctx context.Context, key string) (*Setting, error)
}
