package preview

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/docker/go-units"
	"github.com/google/uuid"

	"github.com/nthieuit88-gif/ecabitnetv7/internal/client/models"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/client/remote"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/client/repositories/blobs"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/logging"
)

// DocumentWriter is the remote side of the upload and delete flows.
type DocumentWriter interface {
	CreateDocument(ctx context.Context, doc *models.Document) (*models.Document, error)
	UploadDocument(ctx context.Context, req remote.UploadRequest) (*models.Document, error)
	DeleteDocument(ctx context.Context, id string) error
}

// Manager runs the document upload and delete flows: local cache first,
// remote best-effort, with an offline fallback that keeps the document
// usable on this device until a later upload succeeds.
type Manager struct {
	cache  blobs.Repository
	remote DocumentWriter
	logger logging.Logger
}

func NewManager(cache blobs.Repository, remote DocumentWriter, logger logging.Logger) *Manager {
	return &Manager{cache: cache, remote: remote, logger: logger.With("module", "documents")}
}

// Upload ingests one file. The blob lands in the local cache before any
// network traffic, so the document previews immediately and stays viewable
// offline. Then the bytes go to the server; if that fails, a metadata-only
// record with a transient local reference is created (or kept locally when
// even that fails), and the caller gets the document plus a warning rather
// than a hard error.
//
// The returned warning is non-nil when the upload ran in degraded mode.
func (m *Manager) Upload(ctx context.Context, filename string, content []byte) (*models.Document, error) {
	name := SanitizeFilename(filepath.Base(filename))
	doc := &models.Document{
		ID:        uuid.NewString(),
		Name:      name,
		Type:      DocTypeFromFilename(name),
		Size:      units.HumanSize(float64(len(content))),
		UpdatedAt: time.Now(),
	}

	if ok := m.cache.Put(ctx, &models.CachedBlob{
		DocumentID:  doc.ID,
		Content:     content,
		ContentType: contentTypeFor(doc.Type),
	}); !ok {
		m.logger.Warn(ctx, "local cache rejected upload blob", "document_id", doc.ID)
	}

	uploaded, err := m.remote.UploadDocument(ctx, remote.UploadRequest{
		Name:     doc.Name,
		Filename: name,
		Content:  content,
	})
	if err == nil {
		// The server minted its own id; move the cached bytes under it.
		if uploaded.ID != doc.ID {
			m.cache.Put(ctx, &models.CachedBlob{
				DocumentID:  uploaded.ID,
				Content:     content,
				ContentType: contentTypeFor(uploaded.Type),
			})
			if rmErr := m.cache.Remove(ctx, doc.ID); rmErr != nil {
				m.logger.Warn(ctx, "stale cache entry left behind", "document_id", doc.ID, "error", rmErr)
			}
		}
		return uploaded, nil
	}

	m.logger.Warn(ctx, "durable upload failed, keeping transient reference", "document_id", doc.ID, "error", err)
	warning := fmt.Errorf("upload did not complete: %w; the document is available on this device only until a retry succeeds", err)

	// Metadata-only record pointing at this device. Other devices will see
	// the record but cannot preview it until a durable upload happens.
	doc.URL = models.TransientURLPrefix + doc.ID
	created, cErr := m.remote.CreateDocument(ctx, doc)
	if cErr != nil {
		m.logger.Warn(ctx, "metadata record creation failed, document is local-only", "document_id", doc.ID, "error", cErr)
		return doc, warning
	}
	return created, warning
}

// LocalDocument reconstructs a minimal metadata record for a cached blob so
// the document stays previewable when the server cannot supply the real
// record. The stored content type recovers the type tag; the name gets a
// matching extension so the renderer split still works; the URL is a
// transient reference because no durable address is known on this device.
func (m *Manager) LocalDocument(ctx context.Context, id string) (*models.Document, bool) {
	blob, ok := m.cache.Get(ctx, id)
	if !ok {
		return nil, false
	}
	docType := docTypeForContent(blob.ContentType)
	return &models.Document{
		ID:        id,
		Name:      id + extensionFor(docType),
		Type:      docType,
		Size:      units.HumanSize(float64(len(blob.Content))),
		URL:       models.TransientURLPrefix + id,
		UpdatedAt: blob.CachedAt,
	}, true
}

func extensionFor(docType string) string {
	switch docType {
	case models.DocTypePDF:
		return ".pdf"
	case models.DocTypeDoc:
		return ".doc"
	case models.DocTypeXLS:
		return ".xls"
	case models.DocTypePPT:
		return ".ppt"
	}
	return ""
}

// Delete removes the document: remote record best-effort, local cache
// always. A remote failure is reported but the cache entry is still gone,
// matching the lenient cache contract.
func (m *Manager) Delete(ctx context.Context, id string) error {
	var remoteErr error
	if err := m.remote.DeleteDocument(ctx, id); err != nil {
		m.logger.Warn(ctx, "remote delete failed", "document_id", id, "error", err)
		remoteErr = err
	}
	if err := m.cache.Remove(ctx, id); err != nil {
		m.logger.Warn(ctx, "cache remove failed", "document_id", id, "error", err)
	}
	if remoteErr != nil {
		return fmt.Errorf("deleting remote record: %w", remoteErr)
	}
	return nil
}

// DocTypeFromFilename maps a filename extension onto the closed type set,
// mirroring the server's classification so both sides agree before the
// record round-trips.
func DocTypeFromFilename(filename string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "pdf":
		return models.DocTypePDF
	case "doc", "docx":
		return models.DocTypeDoc
	case "xls", "xlsx", "csv":
		return models.DocTypeXLS
	case "ppt", "pptx":
		return models.DocTypePPT
	default:
		return models.DocTypeOther
	}
}

// SanitizeFilename strips anything unsafe for a storage key or viewer URL:
// whitespace becomes underscores, everything outside [a-zA-Z0-9._-] drops.
func SanitizeFilename(filename string) string {
	var b strings.Builder
	for _, r := range filename {
		switch {
		case r == ' ' || r == '\t':
			b.WriteByte('_')
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	return b.String()
}
