// Package preview resolves a document's metadata into the best renderable
// representation the device can produce right now, degrading tier by tier
// when a strategy cannot handle the document or fails while trying. It also
// keeps the local blob cache warm so documents stay viewable offline.
package preview

import (
	"path/filepath"
	"strings"

	"github.com/nthieuit88-gif/ecabitnetv7/internal/client/models"
)

// Tier tags one preview strategy. Tiers are attempted in declaration
// order: local renderers first, then URL-based viewers, then the demo
// placeholder.
type Tier int

const (
	TierLocalLegacy Tier = iota
	TierLocalModern
	TierLocalPaginated
	TierRemoteOffice
	TierRemoteNative
	TierRemoteGeneric
	TierDemoPlaceholder
)

var tierNames = map[Tier]string{
	TierLocalLegacy:     "local-legacy",
	TierLocalModern:     "local-modern",
	TierLocalPaginated:  "local-paginated",
	TierRemoteOffice:    "remote-office",
	TierRemoteNative:    "remote-native",
	TierRemoteGeneric:   "remote-generic",
	TierDemoPlaceholder: "demo-placeholder",
}

func (t Tier) String() string {
	if s, ok := tierNames[t]; ok {
		return s
	}
	return "unknown"
}

// orderedTiers is the fixed precedence list the resolver walks.
var orderedTiers = []Tier{
	TierLocalLegacy,
	TierLocalModern,
	TierLocalPaginated,
	TierRemoteOffice,
	TierRemoteNative,
	TierRemoteGeneric,
	TierDemoPlaceholder,
}

// isLegacyWord reports whether the document is a word-processor file in the
// old binary format. The type tag lumps .doc and .docx together, so the
// split is on the filename extension.
func isLegacyWord(doc *models.Document) bool {
	if doc.Type != models.DocTypeDoc {
		return false
	}
	ext := strings.ToLower(filepath.Ext(doc.Name))
	return ext == ".doc" || ext == ".rtf"
}

// isModernWord reports whether the document is the zip-based word format.
func isModernWord(doc *models.Document) bool {
	return doc.Type == models.DocTypeDoc && !isLegacyWord(doc)
}

// isOfficeType reports whether an external office web viewer can display
// the format from a durable URL.
func isOfficeType(doc *models.Document) bool {
	switch doc.Type {
	case models.DocTypeDoc, models.DocTypeXLS, models.DocTypePPT:
		return true
	}
	return false
}

// Handles is the can-this-strategy-try predicate. It decides eligibility
// only; a tier that handles a document may still fail while rendering and
// degrade to the next tier.
func (t Tier) Handles(doc *models.Document, hasBlob bool) bool {
	switch t {
	case TierLocalLegacy:
		return hasBlob && isLegacyWord(doc)
	case TierLocalModern:
		return hasBlob && isModernWord(doc)
	case TierLocalPaginated:
		return hasBlob && doc.Type == models.DocTypePDF
	case TierRemoteOffice:
		return doc.HasDurableURL() && isOfficeType(doc)
	case TierRemoteNative:
		return doc.HasDurableURL() && doc.Type == models.DocTypePDF
	case TierRemoteGeneric:
		return doc.HasDurableURL()
	case TierDemoPlaceholder:
		return strings.HasPrefix(doc.ID, "demo-")
	}
	return false
}
