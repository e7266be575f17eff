package blobs

import (
	"context"

	"github.com/nthieuit88-gif/ecabitnetv7/internal/client/models"
)

// Repository is the device-local blob cache keyed by document id.
//
// The contract is deliberately lenient: the cache is an optimization, never
// a source of truth, so no operation on it may break a caller.
type Repository interface {
	// Put overwrites any existing entry and stamps the capture time.
	// Failures are logged and reported as false; they never propagate as
	// errors, callers treat false as "cache unavailable".
	Put(ctx context.Context, blob *models.CachedBlob) bool

	// Get returns the cached blob and true, or (nil, false) when absent.
	// Absence is a valid, expected outcome.
	Get(ctx context.Context, documentID string) (*models.CachedBlob, bool)

	// Has reports cache presence without loading the content.
	Has(ctx context.Context, documentID string) bool

	// Remove drops the entry. Best-effort: callers must not assume the
	// remote counterpart is gone too.
	Remove(ctx context.Context, documentID string) error

	// Clear empties the cache.
	Clear(ctx context.Context) error
}
