package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-pdf/fpdf"
	"gradescan/internal/extract"
	"gradescan/pkg/models"
)

// writeTestPDF renders a small multi-page PDF for the rasterizer to consume.
func writeTestPDF(t *testing.T, dir string, pages int) string {
	t.Helper()
	pdf := fpdf.New("P", "mm", "A4", "")
	for i := 0; i < pages; i++ {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "", 14)
		pdf.Cell(0, 10, fmt.Sprintf("Page %d", i+1))
	}
	path := filepath.Join(dir, "exam.pdf")
	if err := pdf.OutputFileAndClose(path); err != nil {
		t.Fatalf("failed to write test PDF: %v", err)
	}
	return path
}

// fakeExtractor returns one record per image and fails to parse on a chosen
// call number.
type fakeExtractor struct {
	calls       int
	failOnCall  int
	recordsSeen []int
}

func (f *fakeExtractor) ExtractBatch(ctx context.Context, imagePaths []string) ([]models.PageExtraction, error) {
	f.calls++
	if f.calls == f.failOnCall {
		return nil, extract.WrapExtractionError("ExtractBatch", extract.ErrUnparsableResponse, "garbled")
	}
	records := make([]models.PageExtraction, len(imagePaths))
	for i := range imagePaths {
		records[i] = models.PageExtraction{
			PageNumber:     i + 1,
			Text:           fmt.Sprintf("answer from call %d image %d", f.calls, i+1),
			ConfidenceText: 0.9,
		}
	}
	f.recordsSeen = append(f.recordsSeen, len(imagePaths))
	return records, nil
}

type fakeKeys struct{}

func (fakeKeys) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	return "1. The answer is 42. (5 points)", nil
}

type fakeGrader struct {
	gotTranscript string
}

func (g *fakeGrader) Grade(ctx context.Context, answerKey, studentAnswer string) (*models.GradingReport, error) {
	g.gotTranscript = studentAnswer
	return &models.GradingReport{
		TotalScore:    5,
		TotalPossible: 5,
		Percentage:    100,
		Questions: []models.Question{
			{QuestionNumber: 1, PointsEarned: 5, PointsPossible: 5, Feedback: "correct"},
		},
	}, nil
}

func TestEvaluateSkipsUnparsableBatch(t *testing.T) {
	dir := t.TempDir()
	pdfPath := writeTestPDF(t, dir, 3)

	ext := &fakeExtractor{failOnCall: 2}
	grader := &fakeGrader{}
	svc := NewService(ext, fakeKeys{}, grader, ServiceConfig{RenderScale: 1, BatchSize: 1})

	result, err := svc.Evaluate(context.Background(), pdfPath, pdfPath, filepath.Join(dir, "images"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Pages != 3 {
		t.Fatalf("expected 3 pages, got %d", result.Pages)
	}
	if ext.calls != 3 {
		t.Fatalf("expected 3 extraction calls, got %d", ext.calls)
	}

	// The second batch was lost but numbering stays aligned: pages 1 and 3
	// are present, page 2 is absent.
	if !strings.Contains(result.Transcript, "--- Page 1 ---") {
		t.Fatalf("missing page 1:\n%s", result.Transcript)
	}
	if !strings.Contains(result.Transcript, "--- Page 3 ---") {
		t.Fatalf("missing page 3:\n%s", result.Transcript)
	}
	if strings.Contains(result.Transcript, "--- Page 2 ---") {
		t.Fatalf("lost page must not appear:\n%s", result.Transcript)
	}

	if _, ok := result.Confidences[2]; ok {
		t.Fatal("lost page must have no confidence entry")
	}
	if got := result.Confidences[1]; got != 0.9 {
		t.Fatalf("unexpected confidence for page 1: %v", got)
	}

	if result.Report.TotalScore != 5 {
		t.Fatalf("unexpected report: %+v", result.Report)
	}
	if grader.gotTranscript != result.Transcript {
		t.Fatal("grader did not receive the merged transcript")
	}
	if result.AnswerKey == "" {
		t.Fatal("result must carry the extracted answer key")
	}

	// All page images released.
	remaining, err := NextBatch(filepath.Join(dir, "images"), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected working directory exhausted, got %v", remaining)
	}
}

func TestProcessDocumentFatalOnTransportError(t *testing.T) {
	dir := t.TempDir()
	pdfPath := writeTestPDF(t, dir, 2)

	ext := &transportFailExtractor{}
	svc := NewService(ext, fakeKeys{}, &fakeGrader{}, ServiceConfig{RenderScale: 1, BatchSize: 1})

	_, _, _, err := svc.ProcessDocument(context.Background(), pdfPath, filepath.Join(dir, "images"), nil)
	if err == nil {
		t.Fatal("expected transport error to abort the run")
	}
}

type transportFailExtractor struct{}

func (transportFailExtractor) ExtractBatch(ctx context.Context, imagePaths []string) ([]models.PageExtraction, error) {
	return nil, extract.WrapExtractionError("ExtractBatch", extract.ErrRemoteCall, "connection refused")
}

func TestRasterizeNamesSortInPageOrder(t *testing.T) {
	dir := t.TempDir()
	pdfPath := writeTestPDF(t, dir, 3)

	workDir := filepath.Join(dir, "images")
	r := NewRasterizer(1)
	pages, err := r.Rasterize(context.Background(), pdfPath, workDir, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pages != 3 {
		t.Fatalf("expected 3 pages, got %d", pages)
	}

	entries, err := os.ReadDir(workDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 images, got %d", len(entries))
	}
	if entries[0].Name() != "exam_000.jpg" || entries[2].Name() != "exam_002.jpg" {
		t.Fatalf("unexpected names: %v, %v", entries[0].Name(), entries[2].Name())
	}
}
