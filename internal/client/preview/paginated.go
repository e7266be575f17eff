package preview

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Fallback page size in PDF points (A4 portrait), used when the file does
// not declare a media box for a page.
const (
	defaultPageWidth  = 595.0
	defaultPageHeight = 842.0
)

// PageSize is one page's dimensions in PDF points.
type PageSize struct {
	Width  float64
	Height float64
}

// PaginatedDocument is a parsed page-based document: page count, per-page
// dimensions and the raw bytes needed for rendering.
type PaginatedDocument struct {
	data      []byte
	pageCount int
	sizes     []PageSize
}

// OpenPaginated parses the binary and extracts the page inventory. A parse
// failure here is what makes the resolver degrade past the local paginated
// tier.
func OpenPaginated(data []byte) (*PaginatedDocument, error) {
	conf := model.NewDefaultConfiguration()

	count, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("counting pages: %w", err)
	}
	if count < 1 {
		return nil, errors.New("document has no pages")
	}

	sizes := make([]PageSize, count)
	for i := range sizes {
		sizes[i] = PageSize{Width: defaultPageWidth, Height: defaultPageHeight}
	}
	if dims, err := api.PageDims(bytes.NewReader(data), conf); err == nil {
		for i, d := range dims {
			if i >= count {
				break
			}
			if d.Width > 0 && d.Height > 0 {
				sizes[i] = PageSize{Width: d.Width, Height: d.Height}
			}
		}
	}

	return &PaginatedDocument{data: data, pageCount: count, sizes: sizes}, nil
}

// PageCount returns the total number of pages.
func (d *PaginatedDocument) PageCount() int { return d.pageCount }

// PageSize returns the dimensions of the 1-indexed page in points.
func (d *PaginatedDocument) PageSize(page int) (PageSize, error) {
	if page < 1 || page > d.pageCount {
		return PageSize{}, fmt.Errorf("page %d out of range 1..%d", page, d.pageCount)
	}
	return d.sizes[page-1], nil
}

// RenderResult is one completed page render. The bitmap is sized for the
// physical pixel grid (points x scale x device pixel ratio) while CSSWidth
// and CSSHeight report the density-independent display size (points x
// scale only), so text stays crisp on high-density screens without the
// page visually growing.
type RenderResult struct {
	Page      int
	Scale     float64
	Image     *image.RGBA
	CSSWidth  float64
	CSSHeight float64
}

// Surface renders pages of one document into an off-screen bitmap.
//
// Renders are strictly serialized: a new request first cancels any
// in-flight render, then takes its place. Cancellation is an expected
// outcome under rapid page or zoom changes and is reported as (nil, nil),
// never as an error; the previously completed result stays current until a
// later render completes.
//
// The surface owns sizing, serialization and cancellation; content
// rasterization is a pluggable leaf, the built-in renderPage draws only the
// page frame at the computed dimensions. A rasterizing backend replaces
// that leaf without touching the contract, the same way a higher-fidelity
// LegacyConverter replaces the built-in text extractor.
type Surface struct {
	doc *PaginatedDocument
	dpr float64

	mu       sync.Mutex
	cancel   context.CancelFunc
	last     *RenderResult
	renderMu sync.Mutex
}

// NewSurface creates a rendering surface for the document at the given
// device pixel ratio. Ratios below 1 are clamped to 1.
func NewSurface(doc *PaginatedDocument, devicePixelRatio float64) *Surface {
	if devicePixelRatio < 1 {
		devicePixelRatio = 1
	}
	return &Surface{doc: doc, dpr: devicePixelRatio}
}

// Render draws the 1-indexed page at the given zoom scale. Only one render
// runs at a time; issuing a new one aborts the previous.
func (s *Surface) Render(ctx context.Context, page int, scale float64) (*RenderResult, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("invalid zoom scale %v", scale)
	}

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	rctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	s.renderMu.Lock()
	defer s.renderMu.Unlock()

	res, err := s.renderPage(rctx, page, scale)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, nil
		}
		return nil, err
	}

	s.mu.Lock()
	s.last = res
	s.mu.Unlock()
	return res, nil
}

// Last returns the most recently completed render, or nil.
func (s *Surface) Last() *RenderResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Surface) renderPage(ctx context.Context, page int, scale float64) (*RenderResult, error) {
	size, err := s.doc.PageSize(page)
	if err != nil {
		return nil, err
	}

	pxW := int(math.Ceil(size.Width * scale * s.dpr))
	pxH := int(math.Ceil(size.Height * scale * s.dpr))
	img := image.NewRGBA(image.Rect(0, 0, pxW, pxH))

	paper := color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	border := color.RGBA{R: 0xd0, G: 0xd0, B: 0xd0, A: 0xff}
	for y := 0; y < pxH; y++ {
		// Cooperative cancellation between scanlines.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for x := 0; x < pxW; x++ {
			if x == 0 || y == 0 || x == pxW-1 || y == pxH-1 {
				img.SetRGBA(x, y, border)
			} else {
				img.SetRGBA(x, y, paper)
			}
		}
	}

	return &RenderResult{
		Page:      page,
		Scale:     scale,
		Image:     img,
		CSSWidth:  size.Width * scale,
		CSSHeight: size.Height * scale,
	}, nil
}
