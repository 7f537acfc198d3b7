package models

import (
	"math"
	"time"
)

// PageExtraction is the result of the vision model reading a single page.
// PageNumber is relative to the batch the page was submitted in (1-based);
// callers must add the running page offset before using it as an ordering key.
type PageExtraction struct {
	PageNumber        int     `json:"page_number"`
	Text              string  `json:"text"`
	VisualDescription string  `json:"visual_description"`
	ConfidenceText    float64 `json:"confidence_text"`
	ConfidenceVisual  float64 `json:"confidence_visual"`
}

// Question is one graded question in a report.
type Question struct {
	QuestionNumber int     `json:"question_number"`
	PointsEarned   float64 `json:"points_earned"`
	PointsPossible float64 `json:"points_possible"`
	Feedback       string  `json:"feedback"`
	Justification  string  `json:"justification,omitempty"`
}

// GradingReport is the full scored breakdown returned by the grading model.
//
// The grading prompt requires TotalScore to equal the sum of PointsEarned
// across all questions. That arithmetic is not re-derived here; ScoreMismatch
// is set when the model's own numbers disagree beyond ScoreEpsilon.
type GradingReport struct {
	TotalScore    float64    `json:"total_score"`
	TotalPossible float64    `json:"total_possible"`
	Percentage    float64    `json:"percentage"`
	Questions     []Question `json:"questions"`

	// ScoreMismatch flags a report whose total_score does not match the sum
	// of per-question points_earned. The model's value is kept verbatim.
	ScoreMismatch bool `json:"score_mismatch,omitempty"`
}

// ScoreEpsilon is the tolerance for the total-score consistency check.
const ScoreEpsilon = 0.01

// QuestionSum returns the sum of points earned across all questions.
func (r *GradingReport) QuestionSum() float64 {
	var sum float64
	for _, q := range r.Questions {
		sum += q.PointsEarned
	}
	return sum
}

// ScoreSumConsistent reports whether total_score matches the per-question sum
// within ScoreEpsilon.
func (r *GradingReport) ScoreSumConsistent() bool {
	return math.Abs(r.TotalScore-r.QuestionSum()) < ScoreEpsilon
}

// ProgressStatus is the lifecycle state of a processing run.
type ProgressStatus string

const (
	StatusIdle       ProgressStatus = "idle"
	StatusProcessing ProgressStatus = "processing"
	StatusComplete   ProgressStatus = "complete"
	StatusError      ProgressStatus = "error"
)

// ProgressState is the per-session progress snapshot pushed to WebSocket
// clients. Progress is 0..100 and non-decreasing within a run.
type ProgressState struct {
	Status   ProgressStatus `json:"status"`
	Progress int            `json:"progress"`
	Message  string         `json:"message"`
}

// Evaluation is one stored grading run, keyed to a student email so the chat
// assistant can answer questions over past results.
type Evaluation struct {
	ID         string    `json:"id"`
	Subject    string    `json:"subject"`
	Email      string    `json:"email"`
	PaperID    string    `json:"paper_id"`
	Transcript string    `json:"transcript"`
	AnswerKey  string    `json:"answer_key"`
	Report     string    `json:"report"` // GradingReport JSON as graded
	CreatedAt  time.Time `json:"created_at"`
}
