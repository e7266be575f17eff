package users

import (
	"context"

	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/models"
)

// Repository describes persistence operations on user accounts.
// The session-marker operations back the single-active-session protocol:
// SetCurrentSession always overwrites, never appends.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error

	// GetCurrentSession returns the authoritative session token for the
	// account, or "" when none is recorded.
	GetCurrentSession(ctx context.Context, id string) (string, error)

	// SetCurrentSession overwrites the authoritative session token and marks
	// the account active.
	SetCurrentSession(ctx context.Context, id string, sessionID string) error
}
