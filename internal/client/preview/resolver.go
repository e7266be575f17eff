package preview

import (
	"context"
	"fmt"
	"net/url"

	"github.com/nthieuit88-gif/ecabitnetv7/internal/client/models"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/client/repositories/blobs"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/common"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/logging"
)

// External viewer endpoints for URL-based tiers.
const (
	officeViewerBase  = "https://view.officeapps.live.com/op/view.aspx?src="
	genericViewerBase = "https://docs.google.com/viewer?embedded=true&url="
)

// Preview is the outcome of a successful resolution. Exactly one payload
// field is populated, selected by Tier: HTML for the converted and
// placeholder tiers, Paginated for the bitmap tier, URL for the
// viewer-by-URL tiers.
type Preview struct {
	Tier      Tier
	HTML      string
	Paginated *PaginatedDocument
	URL       string
}

// NoPreviewError is the terminal outcome after every tier has been tried.
// URL carries any known address so the caller can still offer an
// external-open or download action.
type NoPreviewError struct {
	URL string
}

func (e *NoPreviewError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("no preview available (document can be opened externally at %s)", e.URL)
	}
	return "no preview available"
}

func (e *NoPreviewError) Unwrap() error { return common.ErrNoPreview }

// openDocument parses paginated bytes. Seam for tests.
var openDocument = OpenPaginated

// Resolver walks the tier precedence list for a document. A tier that
// cannot handle the document is skipped; a tier that fails while rendering
// degrades to the next one. Only exhaustion surfaces an error.
type Resolver struct {
	cache  blobs.Repository
	logger logging.Logger

	// Legacy converts old binary word files; nil disables the tier.
	Legacy LegacyConverter
	// Modern renders zip-based word files; nil disables the tier.
	Modern ModernRenderer
	// NativeEmbedSupported reports whether the host can embed the URL
	// directly. When it declines, the generic viewer takes over.
	NativeEmbedSupported func(doc *models.Document) bool
}

func NewResolver(cache blobs.Repository, logger logging.Logger) *Resolver {
	return &Resolver{
		cache:  cache,
		logger: logger.With("module", "preview"),
		Legacy: &TextExtractConverter{},
		NativeEmbedSupported: func(*models.Document) bool { return true },
	}
}

// Resolve produces the best available preview for doc. transientBlob holds
// bytes the caller is still carrying from the current upload action, used
// ahead of the cache so a just-uploaded document previews without any
// remote round trip.
func (r *Resolver) Resolve(ctx context.Context, doc *models.Document, transientBlob []byte) (*Preview, error) {
	blob := transientBlob
	if blob == nil {
		if cached, ok := r.cache.Get(ctx, doc.ID); ok {
			blob = cached.Content
		}
	}

	// An upload that never durably completed is unrecoverable by any
	// URL-based tier: the address only means something on the device that
	// minted it.
	if blob == nil && doc.HasTransientURL() {
		return nil, fmt.Errorf("%w: document %q was uploaded from another device and has not finished syncing", common.ErrNotSynchronized, doc.ID)
	}

	for _, tier := range orderedTiers {
		if !tier.Handles(doc, blob != nil) {
			continue
		}
		p, err := r.attempt(ctx, tier, doc, blob)
		if err != nil {
			r.logger.Debug(ctx, "preview tier failed, degrading", "document_id", doc.ID, "tier", tier.String(), "error", err)
			continue
		}
		return p, nil
	}

	externalURL := ""
	if doc.HasDurableURL() {
		externalURL = doc.URL
	}
	return nil, &NoPreviewError{URL: externalURL}
}

func (r *Resolver) attempt(ctx context.Context, tier Tier, doc *models.Document, blob []byte) (*Preview, error) {
	switch tier {
	case TierLocalLegacy:
		if r.Legacy == nil {
			return nil, fmt.Errorf("no legacy converter configured")
		}
		html, err := r.Legacy.Convert(ctx, blob)
		if err != nil {
			return nil, err
		}
		return &Preview{Tier: tier, HTML: html}, nil

	case TierLocalModern:
		if r.Modern == nil {
			return nil, fmt.Errorf("no modern renderer configured")
		}
		html, err := r.Modern.Render(ctx, blob)
		if err != nil {
			return nil, err
		}
		return &Preview{Tier: tier, HTML: html}, nil

	case TierLocalPaginated:
		d, err := openDocument(blob)
		if err != nil {
			return nil, err
		}
		return &Preview{Tier: tier, Paginated: d}, nil

	case TierRemoteOffice:
		return &Preview{Tier: tier, URL: officeViewerBase + url.QueryEscape(doc.URL)}, nil

	case TierRemoteNative:
		if !r.NativeEmbedSupported(doc) {
			return nil, fmt.Errorf("native embed unsupported")
		}
		return &Preview{Tier: tier, URL: doc.URL}, nil

	case TierRemoteGeneric:
		return &Preview{Tier: tier, URL: genericViewerBase + url.QueryEscape(doc.URL)}, nil

	case TierDemoPlaceholder:
		return &Preview{Tier: tier, HTML: demoPlaceholder(doc)}, nil
	}
	return nil, fmt.Errorf("unhandled tier %v", tier)
}
