package services

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/docker/go-units"
	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/nthieuit88-gif/ecabitnetv7/internal/events"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/logging"
	sc "github.com/nthieuit88-gif/ecabitnetv7/internal/server/config"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/hub"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/models"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/repositories/repomanager"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/server/storage"
)

// DocumentService manages document metadata records and their blobs, and
// publishes create/update/delete events on the "documents" topic so online
// devices can warm their local caches.
type DocumentService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	blobs  *storage.BlobStore
	hub    *hub.Hub
	config *sc.Config
	logger logging.Logger
}

func NewDocumentService(db *sql.DB, repos repomanager.RepositoryManager, blobs *storage.BlobStore, h *hub.Hub, config *sc.Config, logger logging.Logger) *DocumentService {
	return &DocumentService{
		db:     db,
		repos:  repos,
		blobs:  blobs,
		hub:    h,
		config: config,
		logger: logger.With("module", "document_service"),
	}
}

// UploadCommand is a document upload received from a device.
type UploadCommand struct {
	Name        string
	Filename    string
	ContentType string
	Type        string
	OwnerID     string
	Content     []byte
}

// Upload stores the blob, then creates the metadata record pointing at the
// durable URL. PDF page counts are extracted at ingest so clients can show
// pagination before they ever parse the file themselves.
func (s *DocumentService) Upload(ctx context.Context, cmd UploadCommand) (*models.Document, error) {
	key := storage.RandomStorageKey(cmd.Filename)

	url, err := s.blobs.Upload(ctx, key, cmd.ContentType, cmd.Content)
	if err != nil {
		return nil, fmt.Errorf("blob upload: %w", err)
	}

	doc := &models.Document{
		ID:        uuid.NewString(),
		Name:      cmd.Name,
		Type:      cmd.Type,
		Size:      units.HumanSize(float64(len(cmd.Content))),
		OwnerID:   cmd.OwnerID,
		URL:       url,
		UpdatedAt: time.Now().UTC(),
	}

	if doc.Type == models.DocTypePDF {
		count, err := api.PageCount(bytes.NewReader(cmd.Content), model.NewDefaultConfiguration())
		if err != nil {
			s.logger.Warn(ctx, "pdf page count failed", "doc", doc.ID, "error", err)
		} else {
			doc.PageCount = count
		}
	}

	if err := s.repos.Documents(s.db).Create(ctx, doc); err != nil {
		// Orphaned blob; cheap to leave, logged for cleanup.
		s.logger.Error(ctx, "metadata insert failed after upload", "key", key, "error", err)
		return nil, err
	}

	s.notify(ctx, events.KindDocumentCreated, doc)
	return doc, nil
}

// Create records metadata without a blob upload. Devices that uploaded
// offline use this with an empty URL and sync the blob later.
func (s *DocumentService) Create(ctx context.Context, doc *models.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	doc.UpdatedAt = time.Now().UTC()
	if err := s.repos.Documents(s.db).Create(ctx, doc); err != nil {
		return err
	}
	s.notify(ctx, events.KindDocumentCreated, doc)
	return nil
}

func (s *DocumentService) Get(ctx context.Context, id string) (*models.Document, error) {
	return s.repos.Documents(s.db).GetByID(ctx, id)
}

func (s *DocumentService) List(ctx context.Context) ([]*models.Document, error) {
	return s.repos.Documents(s.db).List(ctx)
}

func (s *DocumentService) Update(ctx context.Context, doc *models.Document) error {
	doc.UpdatedAt = time.Now().UTC()
	if err := s.repos.Documents(s.db).Update(ctx, doc); err != nil {
		return err
	}
	s.notify(ctx, events.KindDocumentUpdated, doc)
	return nil
}

// Delete removes the metadata record and best-effort deletes the backing
// blob. Blob deletion failure never fails the operation: the record is the
// source of truth and an orphaned object is harmless.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	doc, err := s.repos.Documents(s.db).GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repos.Documents(s.db).Delete(ctx, id); err != nil {
		return err
	}

	if key := s.blobs.KeyFromURL(doc.URL); key != "" {
		if err := s.blobs.Delete(ctx, key); err != nil {
			s.logger.Warn(ctx, "blob delete failed", "doc", id, "key", key, "error", err)
		}
	}

	s.notify(ctx, events.KindDocumentDeleted, doc)
	return nil
}

func (s *DocumentService) notify(ctx context.Context, kind string, doc *models.Document) {
	msg, err := events.Marshal(kind, doc)
	if err != nil {
		s.logger.Warn(ctx, "encode document event failed", "error", err)
		return
	}
	s.hub.Broadcast("documents", msg)
}
