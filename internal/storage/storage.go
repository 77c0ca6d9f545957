// Package storage defines the key-value backend used to persist friend records.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by Get when no value exists for a key.
	ErrNotFound = errors.New("key not found")
	// ErrInvalidKey is returned when a key is empty or escapes its namespace.
	ErrInvalidKey = errors.New("invalid storage key")
)

// Backend reads and writes whole values by string key.
// Put always overwrites the existing value.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// ValidateKey rejects keys that are empty or could escape the store's root.
func ValidateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "..") || strings.Contains(key, "\\") {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
