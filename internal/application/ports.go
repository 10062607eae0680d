package application

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmptyQuery   = errors.New("username required")
	ErrSelfRemoval  = errors.New("cannot unfriend yourself")
)

// Cache is the key-value store backing the cache-aside read path.
// A zero ttl stores the entry without expiry.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// EventPublisher broadcasts domain events to the message broker,
// fire-and-forget. At-most-once from this service's perspective.
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType string, payload any) error
}

// JobQueue enqueues background jobs for external workers.
type JobQueue interface {
	PublishJSON(ctx context.Context, body any) error
}

// PermissionInvalidator clears a user's permission cache in the auth
// service. Called once per affected identity, never batched.
type PermissionInvalidator interface {
	Invalidate(ctx context.Context, userID string) error
}
