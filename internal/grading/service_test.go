package grading

import (
	"errors"
	"testing"
)

func TestParseReport(t *testing.T) {
	body := `{
		"total_score": 7.5,
		"total_possible": 10,
		"percentage": 75,
		"questions": [
			{"question_number": 1, "points_earned": 4, "points_possible": 5, "feedback": "good", "justification": "matches key"},
			{"question_number": 2, "points_earned": 3.5, "points_possible": 5, "feedback": "partial"}
		]
	}`

	report, err := ParseReport(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.TotalScore != 7.5 || report.TotalPossible != 10 {
		t.Fatalf("unexpected totals: %+v", report)
	}
	if len(report.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(report.Questions))
	}
	if report.ScoreMismatch {
		t.Fatal("consistent report flagged as mismatch")
	}
}

func TestParseReportScoreMismatch(t *testing.T) {
	// Model reported 9 but the questions only sum to 7.5; the total is kept
	// verbatim and the mismatch is flagged.
	body := `{
		"total_score": 9,
		"total_possible": 10,
		"percentage": 90,
		"questions": [
			{"question_number": 1, "points_earned": 4, "points_possible": 5, "feedback": ""},
			{"question_number": 2, "points_earned": 3.5, "points_possible": 5, "feedback": ""}
		]
	}`

	report, err := ParseReport(body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.ScoreMismatch {
		t.Fatal("expected mismatch flag")
	}
	if report.TotalScore != 9 {
		t.Fatalf("total must be kept verbatim, got %v", report.TotalScore)
	}
	if sum := report.QuestionSum(); sum != 7.5 {
		t.Fatalf("unexpected question sum: %v", sum)
	}
}

func TestParseReportNoQuestions(t *testing.T) {
	_, err := ParseReport(`{"total_score": 0, "total_possible": 0, "percentage": 0, "questions": []}`)
	if err == nil {
		t.Fatal("expected error for report without questions")
	}
	if !errors.Is(err, ErrInvalidReport) {
		t.Fatalf("expected ErrInvalidReport, got %v", err)
	}
}

func TestParseReportInvalidJSON(t *testing.T) {
	_, err := ParseReport("The student did well overall.")
	if err == nil {
		t.Fatal("expected error for non-JSON response")
	}
	if !errors.Is(err, ErrInvalidReport) {
		t.Fatalf("expected ErrInvalidReport, got %v", err)
	}
}
