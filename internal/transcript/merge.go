// Package transcript folds batch extraction records into a single ordered
// document transcript with per-page confidence scores.
package transcript

import (
	"fmt"
	"sort"
	"strings"

	"gradescan/pkg/models"
)

// Aggregator accumulates extraction records across batches, renumbering
// batch-local pages with a running offset so global page order survives
// short, empty, or out-of-order batch responses.
//
// Not safe for concurrent use; one Aggregator belongs to one pipeline run.
type Aggregator struct {
	builder     strings.Builder
	confidences map[int]float64
	offset      int
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		confidences: make(map[int]float64),
	}
}

// MergeBatch folds one batch's records into the running transcript.
//
// batchImageCount is the number of images submitted in the batch, not the
// number of records returned: the offset advances by the former so a
// malformed or short response never desynchronizes later page numbering.
func (a *Aggregator) MergeBatch(records []models.PageExtraction, batchImageCount int) {
	globalized := make([]models.PageExtraction, len(records))
	for i, rec := range records {
		rec.PageNumber += a.offset
		globalized[i] = rec
	}

	// Stable: records with equal page numbers keep their response order.
	sort.SliceStable(globalized, func(i, j int) bool {
		return globalized[i].PageNumber < globalized[j].PageNumber
	})

	for _, rec := range globalized {
		a.builder.WriteString(fmt.Sprintf("--- Page %d ---\n\n", rec.PageNumber))

		if rec.Text != "" {
			a.builder.WriteString(rec.Text)
			a.builder.WriteString("\n\n")
		}

		if rec.VisualDescription != "" {
			a.builder.WriteString("Visual Description:\n")
			a.builder.WriteString(rec.VisualDescription)
			a.builder.WriteString("\n\n")
		}

		a.confidences[rec.PageNumber] = combineConfidence(rec.ConfidenceText, rec.ConfidenceVisual)
	}

	a.offset += batchImageCount
}

// Transcript returns the combined text with trailing whitespace trimmed.
func (a *Aggregator) Transcript() string {
	return strings.TrimSpace(a.builder.String())
}

// Confidences returns the per-page confidence map keyed by global page number.
func (a *Aggregator) Confidences() map[int]float64 {
	return a.confidences
}

// PagesConsumed returns the running page offset: the total number of images
// consumed by merged batches so far.
func (a *Aggregator) PagesConsumed() int {
	return a.offset
}

// combineConfidence reduces text and visual confidence to one score: the mean
// when both are present, otherwise whichever is present, otherwise zero.
func combineConfidence(text, visual float64) float64 {
	switch {
	case text > 0 && visual > 0:
		return (text + visual) / 2
	case text > 0:
		return text
	case visual > 0:
		return visual
	default:
		return 0.0
	}
}
