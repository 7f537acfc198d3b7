// Package pipeline implements the batched document pipeline: rasterize a PDF
// into page images, feed bounded batches to the vision extractor, merge the
// results into a transcript, and grade it against an answer key, reporting
// progress to an optional live listener throughout.
package pipeline

import (
	"context"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog"
	"gradescan/internal/logger"
)

// baseDPI is the PDF rendering resolution at scale 1.
const baseDPI = 72

// jpegQuality balances vision-model legibility of handwriting against
// request payload size.
const jpegQuality = 90

// Rasterizer turns a PDF into an ordered sequence of page images on disk.
type Rasterizer struct {
	scale float64
	log   zerolog.Logger
}

// NewRasterizer creates a rasterizer rendering at the given scale factor
// (output resolution is scale × 72 DPI).
func NewRasterizer(scale float64) *Rasterizer {
	if scale <= 0 {
		scale = 4
	}
	return &Rasterizer{
		scale: scale,
		log:   logger.WithComponent("rasterizer"),
	}
}

// Rasterize renders every page of the PDF at pdfPath into workDir as JPEG
// files named to sort lexicographically in page order (zero-padded index).
// That naming is load-bearing: the batch cursor's lexicographic listing is
// what preserves page order downstream.
//
// The working directory is created if absent. An unreadable or corrupt
// document is fatal for the run. onPage, when non-nil, is called once per
// written page with (done, total).
func (r *Rasterizer) Rasterize(ctx context.Context, pdfPath, workDir string, onPage func(done, total int)) (int, error) {
	const op = "Rasterize"

	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return 0, fmt.Errorf("pipeline: %s: create working directory: %w", op, err)
	}

	doc, err := fitz.New(pdfPath)
	if err != nil {
		return 0, fmt.Errorf("pipeline: %s: open document %s: %w", op, pdfPath, err)
	}
	defer doc.Close()

	docName := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
	total := doc.NumPage()

	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return i, fmt.Errorf("pipeline: %s: %w", op, err)
		}

		img, err := doc.ImageDPI(i, baseDPI*r.scale)
		if err != nil {
			return i, fmt.Errorf("pipeline: %s: render page %d: %w", op, i, err)
		}

		outPath := filepath.Join(workDir, fmt.Sprintf("%s_%03d.jpg", docName, i))
		f, err := os.Create(outPath)
		if err != nil {
			return i, fmt.Errorf("pipeline: %s: create %s: %w", op, outPath, err)
		}
		if err := jpeg.Encode(f, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			f.Close()
			return i, fmt.Errorf("pipeline: %s: encode page %d: %w", op, i, err)
		}
		if err := f.Close(); err != nil {
			return i, fmt.Errorf("pipeline: %s: close %s: %w", op, outPath, err)
		}

		if onPage != nil {
			onPage(i+1, total)
		}
	}

	r.log.Info().
		Str("document", docName).
		Int("pages", total).
		Float64("scale", r.scale).
		Msg("Rasterized document")

	return total, nil
}
