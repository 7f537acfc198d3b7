// Package report renders a grading report as a downloadable PDF document.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"gradescan/pkg/models"
)

// Render produces a PDF score report from a grading report.
func Render(r *models.GradingReport) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// Header
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "Exam Results Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated %s", time.Now().Format("January 2, 2006")), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	// Summary
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, fmt.Sprintf("Total Score: %.1f / %.1f", r.TotalScore, r.TotalPossible), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Percentage: %.1f%%", r.Percentage), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Performance: %s", performanceLabel(r.Percentage)), "", 1, "L", false, 0, "")
	if r.ScoreMismatch {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.SetTextColor(180, 80, 0)
		pdf.CellFormat(0, 6, "Note: the reported total differs from the sum of per-question scores.", "", 1, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(6)

	// Question table
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(30, 8, "Question", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 8, "Earned", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 8, "Possible", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 8, "Result", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, q := range r.Questions {
		pdf.CellFormat(30, 8, fmt.Sprintf("%d", q.QuestionNumber), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%.1f", q.PointsEarned), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%.1f", q.PointsPossible), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 8, resultLabel(q), "1", 1, "C", false, 0, "")
	}
	pdf.Ln(8)

	// Detailed feedback
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 10, "Detailed Feedback", "", 1, "L", false, 0, "")
	for _, q := range r.Questions {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 8, fmt.Sprintf("Question %d (%.1f / %.1f)", q.QuestionNumber, q.PointsEarned, q.PointsPossible), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		if q.Justification != "" {
			pdf.MultiCell(0, 5, "Justification: "+q.Justification, "", "L", false)
		}
		if q.Feedback != "" {
			pdf.MultiCell(0, 5, "Feedback: "+q.Feedback, "", "L", false)
		}
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// performanceLabel maps a percentage to the summary band shown on the report.
func performanceLabel(percentage float64) string {
	switch {
	case percentage >= 90:
		return "Excellent"
	case percentage >= 75:
		return "Good"
	case percentage >= 60:
		return "Satisfactory"
	default:
		return "Needs Improvement"
	}
}

func resultLabel(q models.Question) string {
	switch {
	case q.PointsPossible > 0 && q.PointsEarned >= q.PointsPossible:
		return "Full marks"
	case q.PointsEarned > 0:
		return "Partial"
	default:
		return "No marks"
	}
}
