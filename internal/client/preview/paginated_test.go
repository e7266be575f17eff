package preview

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimalPDF builds a structurally valid empty PDF with the given number
// of US-Letter pages, tracking byte offsets so the xref table is correct.
func minimalPDF(t *testing.T, pages int) []byte {
	t.Helper()

	var buf bytes.Buffer
	var offsets []int
	obj := func(format string, args ...any) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, format, args...)
	}

	buf.WriteString("%PDF-1.4\n")

	kids := ""
	for i := 0; i < pages; i++ {
		kids += fmt.Sprintf("%d 0 R ", 3+i)
	}
	obj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	obj("2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", kids, pages)
	for i := 0; i < pages; i++ {
		obj("%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>\nendobj\n", 3+i)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func TestOpenPaginated(t *testing.T) {
	doc, err := OpenPaginated(minimalPDF(t, 3))
	require.NoError(t, err)

	assert.Equal(t, 3, doc.PageCount())

	size, err := doc.PageSize(2)
	require.NoError(t, err)
	assert.InDelta(t, 612.0, size.Width, 0.5)
	assert.InDelta(t, 792.0, size.Height, 0.5)

	_, err = doc.PageSize(0)
	assert.Error(t, err)
	_, err = doc.PageSize(4)
	assert.Error(t, err)
}

func TestOpenPaginated_Garbage(t *testing.T) {
	_, err := OpenPaginated([]byte("this is not a document"))
	assert.Error(t, err)
}

func TestSurfaceRender_PixelAndCSSSizing(t *testing.T) {
	doc, err := OpenPaginated(minimalPDF(t, 1))
	require.NoError(t, err)

	// Density doubles the bitmap, not the on-screen size.
	s := NewSurface(doc, 2.0)
	res, err := s.Render(context.Background(), 1, 1.5)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, 1, res.Page)
	assert.InDelta(t, 1.5, res.Scale, 1e-9)
	assert.InDelta(t, 612*1.5, res.CSSWidth, 0.5)
	assert.InDelta(t, 792*1.5, res.CSSHeight, 0.5)
	assert.Equal(t, 1836, res.Image.Bounds().Dx()) // 612 * 1.5 * 2
	assert.Equal(t, 2376, res.Image.Bounds().Dy()) // 792 * 1.5 * 2
}

func TestSurfaceRender_SequentialRendersReplaceLast(t *testing.T) {
	doc, err := OpenPaginated(minimalPDF(t, 2))
	require.NoError(t, err)
	s := NewSurface(doc, 1.0)

	_, err = s.Render(context.Background(), 1, 1.0)
	require.NoError(t, err)

	res, err := s.Render(context.Background(), 2, 2.0)
	require.NoError(t, err)

	last := s.Last()
	require.NotNil(t, last)
	assert.Equal(t, res, last)
	assert.Equal(t, 2, last.Page)
	assert.InDelta(t, 2.0, last.Scale, 1e-9)
}

func TestSurfaceRender_CancelledIsNotAnError(t *testing.T) {
	doc, err := OpenPaginated(minimalPDF(t, 1))
	require.NoError(t, err)
	s := NewSurface(doc, 1.0)

	first, err := s.Render(context.Background(), 1, 1.0)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := s.Render(ctx, 1, 3.0)
	assert.NoError(t, err)
	assert.Nil(t, res)

	// The aborted render left no stale output behind.
	assert.Equal(t, first, s.Last())
}

func TestSurfaceRender_InvalidInputs(t *testing.T) {
	doc, err := OpenPaginated(minimalPDF(t, 1))
	require.NoError(t, err)
	s := NewSurface(doc, 1.0)

	_, err = s.Render(context.Background(), 5, 1.0)
	assert.Error(t, err)
	_, err = s.Render(context.Background(), 1, 0)
	assert.Error(t, err)
	_, err = s.Render(context.Background(), 1, -2)
	assert.Error(t, err)
}

func TestNewSurface_ClampsPixelRatio(t *testing.T) {
	doc, err := OpenPaginated(minimalPDF(t, 1))
	require.NoError(t, err)

	s := NewSurface(doc, 0)
	res, err := s.Render(context.Background(), 1, 1.0)
	require.NoError(t, err)
	assert.Equal(t, 612, res.Image.Bounds().Dx())
}
