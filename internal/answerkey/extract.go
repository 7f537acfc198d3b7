// Package answerkey extracts the marking scheme text from an answer key PDF.
//
// Most answer keys are digitally authored and carry a text layer, which is
// read directly. Scanned keys with no text layer fall back to OCR when an
// OCR service is configured.
package answerkey

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog"
	"gradescan/internal/logger"
	"gradescan/internal/ocr"
)

// ErrNoText is returned when the PDF has no text layer and no OCR fallback
// is available.
var ErrNoText = errors.New("answer key contains no extractable text")

// Extractor reads answer key text from PDF files.
type Extractor struct {
	ocr ocr.OCRService // optional fallback, may be nil
	log zerolog.Logger
}

// NewExtractor creates an answer key extractor. The OCR service is optional;
// pass nil to disable the scanned-document fallback.
func NewExtractor(ocrService ocr.OCRService) *Extractor {
	return &Extractor{
		ocr: ocrService,
		log: logger.WithComponent("answerkey"),
	}
}

// ExtractText returns the full text of the answer key PDF, pages joined in
// order. A PDF whose text layer is empty is retried through OCR if a service
// was configured.
func (e *Extractor) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	text, err := e.readTextLayer(pdfPath)
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) != "" {
		e.log.Debug().
			Str("path", pdfPath).
			Int("length", len(text)).
			Msg("Answer key text layer extracted")
		return text, nil
	}

	if e.ocr == nil {
		return "", fmt.Errorf("%w: %s", ErrNoText, pdfPath)
	}

	e.log.Info().
		Str("path", pdfPath).
		Msg("Answer key has no text layer, falling back to OCR")

	f, err := os.Open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("failed to open answer key: %w", err)
	}
	defer f.Close()

	ocrText, err := e.ocr.ProcessPDF(ctx, f)
	if err != nil {
		return "", fmt.Errorf("answer key OCR fallback failed: %w", err)
	}
	return ocrText, nil
}

// readTextLayer concatenates the per-page text layers of the PDF.
func (e *Extractor) readTextLayer(pdfPath string) (string, error) {
	doc, err := fitz.New(pdfPath)
	if err != nil {
		return "", fmt.Errorf("failed to open answer key PDF: %w", err)
	}
	defer doc.Close()

	var sb strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		pageText, err := doc.Text(i)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d text: %w", i+1, err)
		}
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(pageText)
	}
	return sb.String(), nil
}
