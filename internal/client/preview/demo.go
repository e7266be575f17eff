package preview

import (
	"fmt"
	"html"

	"github.com/nthieuit88-gif/ecabitnetv7/internal/client/models"
)

// demoPlaceholder synthesizes content for sample documents that ship with
// the dashboard for demonstrations. They have no bytes and no URL anywhere,
// so the placeholder keeps the interface demonstrable instead of erroring.
func demoPlaceholder(doc *models.Document) string {
	name := doc.Name
	if name == "" {
		name = doc.ID
	}
	return fmt.Sprintf(
		`<div class="doc-demo"><h2>%s</h2><p>Sample %s document.</p><p>This is placeholder content shown for demonstration items; upload a real file to see it here.</p></div>`,
		html.EscapeString(name), html.EscapeString(doc.Type))
}
