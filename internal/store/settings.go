package store

import (
	"context"
	"strings"
)

// ClassName returns the remembered class name used to title the sync sheet.
func ClassName(ctx context.Context, kv KV) (string, error) {
	v, _, err := kv.Get(ctx, ClassNameKey)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(v), nil
}

// SetClassName remembers name for later syncs.
func SetClassName(ctx context.Context, kv KV, name string) error {
	return kv.Put(ctx, ClassNameKey, strings.TrimSpace(name))
}
