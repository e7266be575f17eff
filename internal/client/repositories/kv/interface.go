package kv

import (
	"context"
)

// Repository is the small device-scoped key-value store holding the session
// token and UI state, distinct from the larger blob cache.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string]string, error)
	Clear(ctx context.Context) error
}

// Well-known keys.
const (
	KeySessionToken  = "session_token"
	KeyUserID        = "user_id"
	KeyLastActiveTab = "last_active_tab"
)
