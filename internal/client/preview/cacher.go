package preview

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/nthieuit88-gif/ecabitnetv7/internal/client/models"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/client/repositories/blobs"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/events"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/logging"
)

// BlobFetcher fetches raw bytes from a durable URL.
type BlobFetcher interface {
	FetchBlob(ctx context.Context, url string) ([]byte, error)
}

// Cacher warms the local blob cache from document-created feed events, so
// participants who did not upload a file still get offline-capable access
// soon after it is shared.
//
// Warming is best-effort and silent: a fetch failure is logged and
// forgotten, and the event stream is never blocked. Concurrent duplicate
// fetches for one document id are collapsed.
type Cacher struct {
	cache   blobs.Repository
	fetcher BlobFetcher
	logger  logging.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
	wg       sync.WaitGroup
}

func NewCacher(cache blobs.Repository, fetcher BlobFetcher, logger logging.Logger) *Cacher {
	return &Cacher{
		cache:    cache,
		fetcher:  fetcher,
		logger:   logger.With("module", "cacher"),
		inflight: map[string]struct{}{},
	}
}

// HandleEvent inspects one feed event and, for a created document with a
// durable URL, starts a background warm. Always returns immediately.
func (c *Cacher) HandleEvent(ctx context.Context, ev events.Event) {
	if ev.Kind != events.KindDocumentCreated {
		return
	}
	var doc models.Document
	if err := json.Unmarshal(ev.Body, &doc); err != nil {
		c.logger.Warn(ctx, "malformed document event", "error", err)
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.Warm(ctx, &doc)
	}()
}

// Warm fetches and caches the document's bytes if it has a durable URL and
// is not cached yet. Safe to call redundantly.
func (c *Cacher) Warm(ctx context.Context, doc *models.Document) {
	if !doc.HasDurableURL() {
		return
	}

	c.mu.Lock()
	if _, busy := c.inflight[doc.ID]; busy {
		c.mu.Unlock()
		return
	}
	c.inflight[doc.ID] = struct{}{}
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.inflight, doc.ID)
		c.mu.Unlock()
	}()

	if c.cache.Has(ctx, doc.ID) {
		return
	}

	content, err := c.fetcher.FetchBlob(ctx, doc.URL)
	if err != nil {
		c.logger.Debug(ctx, "cache warm skipped", "document_id", doc.ID, "error", err)
		return
	}

	c.cache.Put(ctx, &models.CachedBlob{
		DocumentID:  doc.ID,
		Content:     content,
		ContentType: contentTypeFor(doc.Type),
	})
	c.logger.Debug(ctx, "cached document", "document_id", doc.ID, "size", len(content))
}

// Drain waits for in-flight warms. Test helper and teardown hook.
func (c *Cacher) Drain() {
	c.wg.Wait()
}

func contentTypeFor(docType string) string {
	switch docType {
	case models.DocTypePDF:
		return "application/pdf"
	case models.DocTypeDoc:
		return "application/msword"
	case models.DocTypeXLS:
		return "application/vnd.ms-excel"
	case models.DocTypePPT:
		return "application/vnd.ms-powerpoint"
	}
	return "application/octet-stream"
}

// docTypeForContent inverts contentTypeFor: the stored content type is the
// only type information a cache entry carries, so it is what reconstructs
// the type tag when the metadata record is unreachable.
func docTypeForContent(contentType string) string {
	switch contentType {
	case "application/pdf":
		return models.DocTypePDF
	case "application/msword":
		return models.DocTypeDoc
	case "application/vnd.ms-excel":
		return models.DocTypeXLS
	case "application/vnd.ms-powerpoint":
		return models.DocTypePPT
	}
	return models.DocTypeOther
}
