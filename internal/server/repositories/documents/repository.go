package documents

import (
	"context"

	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/models"
)

// Repository describes persistence operations on document metadata records.
type Repository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id string) (*models.Document, error)
	List(ctx context.Context) ([]*models.Document, error)
	Update(ctx context.Context, doc *models.Document) error
	Delete(ctx context.Context, id string) error
}
