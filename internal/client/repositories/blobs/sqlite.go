package blobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nthieuit88-gif/ecabitnetv7/internal/client/models"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/dbx"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/logging"
)

type SQLiteRepository struct {
	db     dbx.DBTX
	logger logging.Logger
}

func NewSQLiteRepository(db dbx.DBTX, logger logging.Logger) *SQLiteRepository {
	return &SQLiteRepository{db: db, logger: logger.With("module", "blob_cache")}
}

func (r *SQLiteRepository) Put(ctx context.Context, blob *models.CachedBlob) bool {
	if blob.CachedAt.IsZero() {
		blob.CachedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO blobs (document_id, content, content_type, cached_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET content = excluded.content,
			content_type = excluded.content_type,
			cached_at = excluded.cached_at
	`, blob.DocumentID, blob.Content, blob.ContentType, blob.CachedAt.UnixNano())
	if err != nil {
		r.logger.Warn(ctx, "cache put failed", "doc", blob.DocumentID, "error", err)
		return false
	}
	return true
}

func (r *SQLiteRepository) Get(ctx context.Context, documentID string) (*models.CachedBlob, bool) {
	blob := &models.CachedBlob{DocumentID: documentID}
	var cachedAt int64

	err := r.db.QueryRowContext(ctx,
		`SELECT content, content_type, cached_at FROM blobs WHERE document_id = ?`, documentID).
		Scan(&blob.Content, &blob.ContentType, &cachedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false
	}
	if err != nil {
		r.logger.Warn(ctx, "cache get failed", "doc", documentID, "error", err)
		return nil, false
	}

	blob.CachedAt = time.Unix(0, cachedAt).UTC()
	return blob, true
}

func (r *SQLiteRepository) Has(ctx context.Context, documentID string) bool {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM blobs WHERE document_id = ?`, documentID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	if err != nil {
		r.logger.Warn(ctx, "cache probe failed", "doc", documentID, "error", err)
		return false
	}
	return true
}

func (r *SQLiteRepository) Remove(ctx context.Context, documentID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM blobs WHERE document_id = ?`, documentID)
	if err != nil {
		return fmt.Errorf("failed to remove cached blob: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM blobs`)
	if err != nil {
		return fmt.Errorf("failed to clear blob cache: %w", err)
	}
	return nil
}
