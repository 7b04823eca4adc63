package session

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned by a Store when the key holds no value
var ErrKeyNotFound = errors.New("key not found")

// Store defines the interface for the persisted key-value slot operations.
// A zero ttl keeps the value until it is deleted.
type Store interface {
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
