package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/nthieuit88-gif/ecabitnetv7/internal/client/preview"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/client/remote"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/client/repositories/kv"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/common"
)

func (a *App) ListDocuments(ctx context.Context) {
	if !a.isLoggedIn() {
		log.Printf("Not logged in")
		return
	}

	a.rememberTab(ctx, "docs")

	docs, err := a.remote.ListDocuments(ctx)
	if err != nil {
		log.Println(err.Error())
		return
	}

	for _, d := range docs {
		cached := ""
		if a.store.Blobs.Has(ctx, d.ID) {
			cached = " [cached]"
		}
		fmt.Printf("%s  %-30s %-5s %8s%s\n", d.ID, d.Name, d.Type, d.Size, cached)
	}
}

func (a *App) Upload(ctx context.Context, path string) {
	if !a.isLoggedIn() {
		log.Printf("Not logged in")
		return
	}

	content, err := os.ReadFile(path)
	if err != nil {
		log.Printf("error reading file: %v", err)
		return
	}

	doc, warn := a.docs.Upload(ctx, path, content)
	if warn != nil {
		log.Printf("Warning: %v", warn)
	}
	fmt.Printf("Uploaded %s (%s, %s) as %s\n", doc.Name, doc.Type, doc.Size, doc.ID)
}

func (a *App) Delete(ctx context.Context, id string) {
	if !a.isLoggedIn() {
		log.Printf("Not logged in")
		return
	}

	if err := a.docs.Delete(ctx, id); err != nil {
		log.Println(err.Error())
		return
	}
	fmt.Println("Deleted", id)
}

func (a *App) Preview(ctx context.Context, id string, scanner *bufio.Scanner) {
	if !a.isLoggedIn() {
		log.Printf("Not logged in")
		return
	}

	p, err := a.resolvePreview(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotSynchronized) {
			fmt.Println("This document has not finished syncing; ask the uploader to retry the upload.")
			return
		}
		var np *preview.NoPreviewError
		if errors.As(err, &np) {
			if np.URL != "" {
				fmt.Printf("Cannot preview this document. Open it externally: %s\n", np.URL)
				return
			}
			fmt.Println("Cannot preview this document.")
			return
		}
		log.Println(err.Error())
		return
	}

	switch p.Tier {
	case preview.TierLocalPaginated:
		a.paginatedView(ctx, p, scanner)
	case preview.TierLocalLegacy, preview.TierLocalModern, preview.TierDemoPlaceholder:
		fmt.Printf("[%s]\n%s\n", p.Tier, p.HTML)
	default:
		fmt.Printf("[%s] open in viewer: %s\n", p.Tier, p.URL)
	}
}

// resolvePreview fetches the metadata record and resolves it against the
// local cache. When the server is unreachable or has no record but the
// blob is cached, the record is reconstructed from the cache entry, so a
// document uploaded on this device previews without any network round trip.
func (a *App) resolvePreview(ctx context.Context, id string) (*preview.Preview, error) {
	doc, err := a.remote.GetDocument(ctx, id)
	if err != nil {
		if !errors.Is(err, remote.ErrUnavailable) && !errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		local, ok := a.docs.LocalDocument(ctx, id)
		if !ok {
			return nil, err
		}
		a.logger.Debug(ctx, "metadata fetch failed, previewing from cache", "document_id", id, "error", err)
		doc = local
	}
	return a.resolver.Resolve(ctx, doc, nil)
}

// paginatedView is the interactive page navigator for the bitmap tier:
// page <n> and zoom <factor> re-render, back leaves the view.
func (a *App) paginatedView(ctx context.Context, p *preview.Preview, scanner *bufio.Scanner) {
	surface := preview.NewSurface(p.Paginated, a.config.DevicePixelRatio)
	page, scale := 1, 1.0

	render := func() {
		res, err := surface.Render(ctx, page, scale)
		if err != nil {
			log.Println(err.Error())
			return
		}
		if res == nil {
			// Superseded by a newer request.
			return
		}
		b := res.Image.Bounds()
		fmt.Printf("page %d/%d  zoom %.2f  bitmap %dx%d  display %.0fx%.0f\n",
			res.Page, p.Paginated.PageCount(), res.Scale, b.Dx(), b.Dy(), res.CSSWidth, res.CSSHeight)
	}
	render()

	for {
		fmt.Print("view (page <n> | zoom <f> | back) > ")
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "page":
			if len(parts) < 2 {
				fmt.Println("Usage: page <n>")
				continue
			}
			n, err := strconv.Atoi(parts[1])
			if err != nil || n < 1 || n > p.Paginated.PageCount() {
				fmt.Printf("Page must be 1..%d\n", p.Paginated.PageCount())
				continue
			}
			page = n
			render()

		case "zoom":
			if len(parts) < 2 {
				fmt.Println("Usage: zoom <factor>")
				continue
			}
			f, err := strconv.ParseFloat(parts[1], 64)
			if err != nil || f <= 0 {
				fmt.Println("Zoom must be a positive number")
				continue
			}
			scale = f
			render()

		case "back", "exit":
			return

		default:
			fmt.Println("Unknown command:", parts[0])
		}
	}
}

func (a *App) rememberTab(ctx context.Context, tab string) {
	if err := a.store.KV.Set(ctx, kv.KeyLastActiveTab, tab); err != nil {
		a.logger.Warn(ctx, "saving active tab", "error", err)
	}
}
