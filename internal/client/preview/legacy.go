package preview

import (
	"context"
	"fmt"
	"html"
	"strings"
	"unicode"
)

// LegacyConverter turns an old binary word-processor file into HTML.
type LegacyConverter interface {
	Convert(ctx context.Context, content []byte) (string, error)
}

// ModernRenderer turns a zip-based word-processor file into a
// layout-preserving HTML fragment for a scrollable container.
type ModernRenderer interface {
	Render(ctx context.Context, content []byte) (string, error)
}

// TextExtractConverter is the built-in legacy converter: it salvages the
// readable text runs out of the binary container and wraps them in
// paragraphs. Coarse but dependency-free, and good enough for meeting
// handouts; a higher-fidelity converter can be plugged in instead.
type TextExtractConverter struct {
	// MinRunLength filters binary noise: runs of printable characters
	// shorter than this are dropped. Zero means the default of 4.
	MinRunLength int
}

func (c *TextExtractConverter) Convert(_ context.Context, content []byte) (string, error) {
	min := c.MinRunLength
	if min == 0 {
		min = 4
	}

	var runs []string
	var run strings.Builder
	flush := func() {
		if run.Len() >= min {
			runs = append(runs, run.String())
		}
		run.Reset()
	}
	for _, r := range string(content) {
		if unicode.IsPrint(r) && r != unicode.ReplacementChar {
			run.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()

	if len(runs) == 0 {
		return "", fmt.Errorf("no readable text in %d bytes", len(content))
	}

	var b strings.Builder
	b.WriteString(`<div class="doc-legacy">`)
	for _, r := range runs {
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(strings.TrimSpace(r)))
		b.WriteString("</p>")
	}
	b.WriteString("</div>")
	return b.String(), nil
}
