package report

import (
	"bytes"
	"testing"

	"gradescan/pkg/models"
)

func sampleReport() *models.GradingReport {
	return &models.GradingReport{
		TotalScore:    8,
		TotalPossible: 10,
		Percentage:    80,
		Questions: []models.Question{
			{QuestionNumber: 1, PointsEarned: 5, PointsPossible: 5, Feedback: "Complete answer", Justification: "All criteria met"},
			{QuestionNumber: 2, PointsEarned: 3, PointsPossible: 5, Feedback: "Missing the second derivation step"},
		},
	}
}

func TestRenderProducesPDF(t *testing.T) {
	data, err := Render(sampleReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output does not start with PDF header: %q", data[:8])
	}
}

func TestPerformanceLabelBands(t *testing.T) {
	cases := []struct {
		percentage float64
		want       string
	}{
		{95, "Excellent"},
		{90, "Excellent"},
		{89.9, "Good"},
		{75, "Good"},
		{74.9, "Satisfactory"},
		{60, "Satisfactory"},
		{59.9, "Needs Improvement"},
		{0, "Needs Improvement"},
	}
	for _, tc := range cases {
		if got := performanceLabel(tc.percentage); got != tc.want {
			t.Fatalf("performanceLabel(%v) = %q, want %q", tc.percentage, got, tc.want)
		}
	}
}

func TestResultLabel(t *testing.T) {
	full := models.Question{PointsEarned: 5, PointsPossible: 5}
	if got := resultLabel(full); got != "Full marks" {
		t.Fatalf("unexpected label: %q", got)
	}
	partial := models.Question{PointsEarned: 2, PointsPossible: 5}
	if got := resultLabel(partial); got != "Partial" {
		t.Fatalf("unexpected label: %q", got)
	}
	zero := models.Question{PointsEarned: 0, PointsPossible: 5}
	if got := resultLabel(zero); got != "No marks" {
		t.Fatalf("unexpected label: %q", got)
	}
}
