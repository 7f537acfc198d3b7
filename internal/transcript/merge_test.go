package transcript

import (
	"strings"
	"testing"

	"gradescan/pkg/models"
)

func TestMergeBatchCombinesConfidence(t *testing.T) {
	agg := NewAggregator()
	agg.MergeBatch([]models.PageExtraction{
		{PageNumber: 1, Text: "both", ConfidenceText: 0.8, ConfidenceVisual: 0.6},
		{PageNumber: 2, Text: "visual only", ConfidenceVisual: 0.9},
		{PageNumber: 3, Text: "neither"},
	}, 3)

	conf := agg.Confidences()
	if got := conf[1]; got != 0.7 {
		t.Fatalf("expected mean 0.7 for page 1, got %v", got)
	}
	if got := conf[2]; got != 0.9 {
		t.Fatalf("expected 0.9 for page 2, got %v", got)
	}
	if got := conf[3]; got != 0.0 {
		t.Fatalf("expected 0.0 for page 3, got %v", got)
	}
}

func TestMergeBatchGlobalNumbering(t *testing.T) {
	agg := NewAggregator()
	agg.MergeBatch([]models.PageExtraction{
		{PageNumber: 1, Text: "page one", ConfidenceText: 0.9},
		{PageNumber: 2, Text: "page two", ConfidenceText: 0.9},
	}, 2)
	agg.MergeBatch([]models.PageExtraction{
		{PageNumber: 1, Text: "page three", ConfidenceText: 0.9},
	}, 1)

	text := agg.Transcript()
	if !strings.Contains(text, "--- Page 3 ---") {
		t.Fatalf("expected second batch renumbered to page 3, got:\n%s", text)
	}
	if _, ok := agg.Confidences()[3]; !ok {
		t.Fatal("expected confidence entry for global page 3")
	}
	if agg.PagesConsumed() != 3 {
		t.Fatalf("expected 3 pages consumed, got %d", agg.PagesConsumed())
	}
}

func TestMergeBatchEmptyBatchKeepsOffset(t *testing.T) {
	agg := NewAggregator()
	agg.MergeBatch([]models.PageExtraction{
		{PageNumber: 1, Text: "page one"},
		{PageNumber: 2, Text: "page two"},
	}, 2)

	// A batch whose response was unparsable contributes no records but
	// still consumed its images.
	agg.MergeBatch(nil, 2)

	agg.MergeBatch([]models.PageExtraction{
		{PageNumber: 1, Text: "page five"},
	}, 1)

	text := agg.Transcript()
	if !strings.Contains(text, "--- Page 5 ---") {
		t.Fatalf("expected page numbering to skip lost batch, got:\n%s", text)
	}
	if strings.Contains(text, "--- Page 3 ---") {
		t.Fatalf("lost pages must not appear in transcript:\n%s", text)
	}
	if agg.PagesConsumed() != 5 {
		t.Fatalf("expected 5 pages consumed, got %d", agg.PagesConsumed())
	}
}

func TestMergeBatchSortsWithinBatch(t *testing.T) {
	agg := NewAggregator()
	agg.MergeBatch([]models.PageExtraction{
		{PageNumber: 2, Text: "second"},
		{PageNumber: 1, Text: "first"},
	}, 2)

	text := agg.Transcript()
	first := strings.Index(text, "--- Page 1 ---")
	second := strings.Index(text, "--- Page 2 ---")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("pages out of order:\n%s", text)
	}
}

func TestMergeBatchVisualDescriptionSection(t *testing.T) {
	agg := NewAggregator()
	agg.MergeBatch([]models.PageExtraction{
		{PageNumber: 1, Text: "an answer", VisualDescription: "a labeled circuit diagram"},
	}, 1)

	text := agg.Transcript()
	if !strings.Contains(text, "Visual Description:\na labeled circuit diagram") {
		t.Fatalf("missing visual description section:\n%s", text)
	}
}
