// ABOUTME: Key/value persistence for client-side state records
// ABOUTME: Defines the Storage interface shared by memory, file, and Redis backends

package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// Record names used by the session and cart stores
const (
	AuthKey = "auth-storage"
	CartKey = "cart-storage"
)

// ErrNotFound is returned by Load when no record exists for the key
var ErrNotFound = errors.New("record not found")

// ErrInvalidKey is returned by every backend operation given a malformed key
var ErrInvalidKey = errors.New("invalid storage key")

// Storage defines how serialized state records are persisted.
// Implementations treat values as opaque bytes; serialization belongs to the caller.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

var validKey = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// checkKey rejects keys that could escape a directory or collide with prefixes
func checkKey(key string) error {
	if !validKey.MatchString(key) {
		return fmt.Errorf("%w %q", ErrInvalidKey, key)
	}
	return nil
}
