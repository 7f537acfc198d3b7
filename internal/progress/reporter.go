package progress

import (
	"gradescan/pkg/models"
)

// Stage identifies a pipeline stage for progress weighting.
type Stage int

const (
	StageRasterize Stage = iota
	StageExtract
	StageAnswerKey
	StageGrade
)

// band is the percentage window a stage occupies within a full run. The
// remainder above the grading band is reserved for finalization; only a
// Complete event reaches 100.
type band struct {
	base int
	span int
}

var bands = map[Stage]band{
	StageRasterize: {base: 0, span: 10},
	StageExtract:   {base: 10, span: 30},
	StageAnswerKey: {base: 40, span: 10},
	StageGrade:     {base: 50, span: 30},
}

// Reporter maps pipeline position to a monotonic percentage for one session.
// A nil Reporter is valid and drops everything, so callers without a listener
// can thread it through unconditionally.
//
// Reporters are not safe for concurrent use; stages within one run are
// strictly sequential, which is what keeps the percentage monotonic.
type Reporter struct {
	reg  *Registry
	id   string
	last int
	done bool
}

// Start transitions the session to processing and resets progress to zero.
// Call once per run, before the first rasterized page.
func (r *Reporter) Start(message string) {
	if r == nil {
		return
	}
	r.last = 0
	r.done = false
	r.reg.push(r.id, models.ProgressState{
		Status:   models.StatusProcessing,
		Progress: 0,
		Message:  message,
	})
}

// Step reports fractional completion of a stage: floor(base + span*done/total),
// clamped so progress never decreases within a run.
func (r *Reporter) Step(stage Stage, done, total int, message string) {
	if r == nil || r.done {
		return
	}
	b := bands[stage]
	pct := b.base
	if total > 0 {
		fraction := float64(done) / float64(total)
		if fraction > 1 {
			fraction = 1
		}
		pct = b.base + int(float64(b.span)*fraction)
	}
	if pct < r.last {
		pct = r.last
	}
	r.last = pct
	r.reg.push(r.id, models.ProgressState{
		Status:   models.StatusProcessing,
		Progress: pct,
		Message:  message,
	})
}

// Complete emits the terminal success event at exactly 100.
func (r *Reporter) Complete(message string) {
	if r == nil || r.done {
		return
	}
	r.done = true
	r.reg.push(r.id, models.ProgressState{
		Status:   models.StatusComplete,
		Progress: 100,
		Message:  message,
	})
}

// Error emits a single terminal error event carrying the message. Progress
// stays where it was; the run never continues to complete afterwards.
func (r *Reporter) Error(message string) {
	if r == nil || r.done {
		return
	}
	r.done = true
	r.reg.push(r.id, models.ProgressState{
		Status:   models.StatusError,
		Progress: r.last,
		Message:  message,
	})
}
