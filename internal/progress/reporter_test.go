package progress

import (
	"testing"

	"gradescan/pkg/models"
)

func drain(ch *Channel) []models.ProgressState {
	var states []models.ProgressState
	for {
		select {
		case s := <-ch.Updates():
			states = append(states, s)
		default:
			return states
		}
	}
}

func TestReporterMonotoneProgress(t *testing.T) {
	reg := NewRegistry()
	ch := reg.Register("c1")
	rep := reg.Reporter("c1")

	rep.Start("starting")
	rep.Step(StageRasterize, 1, 2, "raster")
	rep.Step(StageRasterize, 2, 2, "raster done")
	rep.Step(StageExtract, 1, 4, "extract")
	rep.Step(StageExtract, 4, 4, "extract done")
	rep.Step(StageAnswerKey, 1, 1, "key")
	rep.Step(StageGrade, 1, 1, "graded")
	rep.Complete("done")

	states := drain(ch)
	last := -1
	for _, s := range states {
		if s.Progress < last {
			t.Fatalf("progress decreased: %d after %d", s.Progress, last)
		}
		last = s.Progress
	}
	final := states[len(states)-1]
	if final.Status != models.StatusComplete || final.Progress != 100 {
		t.Fatalf("unexpected terminal state: %+v", final)
	}
}

func TestReporterOnlyCompleteReaches100(t *testing.T) {
	reg := NewRegistry()
	ch := reg.Register("c1")
	rep := reg.Reporter("c1")

	rep.Start("starting")
	rep.Step(StageGrade, 1, 1, "graded")

	for _, s := range drain(ch) {
		if s.Progress >= 100 {
			t.Fatalf("stage step reached %d without Complete", s.Progress)
		}
	}
}

func TestReporterErrorKeepsProgress(t *testing.T) {
	reg := NewRegistry()
	ch := reg.Register("c1")
	rep := reg.Reporter("c1")

	rep.Start("starting")
	rep.Step(StageExtract, 2, 4, "halfway")
	drain(ch)

	rep.Error("model call failed")
	states := drain(ch)
	if len(states) != 1 {
		t.Fatalf("expected 1 terminal event, got %d", len(states))
	}
	if states[0].Status != models.StatusError {
		t.Fatalf("expected error status, got %+v", states[0])
	}
	if states[0].Progress != 25 {
		t.Fatalf("expected progress held at 25, got %d", states[0].Progress)
	}

	// Terminal state is final: later events are dropped.
	rep.Step(StageGrade, 1, 1, "late")
	rep.Complete("late complete")
	if extra := drain(ch); len(extra) != 0 {
		t.Fatalf("events after terminal state: %+v", extra)
	}
}

func TestNilReporterIsSafe(t *testing.T) {
	var rep *Reporter
	rep.Start("x")
	rep.Step(StageExtract, 1, 2, "x")
	rep.Complete("x")
	rep.Error("x")
}

func TestUnregisteredSessionDropsEvents(t *testing.T) {
	reg := NewRegistry()
	rep := reg.Reporter("ghost")

	// Must not panic or block.
	rep.Start("x")
	rep.Step(StageGrade, 1, 1, "x")
	rep.Complete("x")

	if _, ok := reg.State("ghost"); ok {
		t.Fatal("unregistered session should have no state")
	}
}

func TestChannelDropsWhenFull(t *testing.T) {
	reg := NewRegistry()
	ch := reg.Register("c1")
	rep := reg.Reporter("c1")

	rep.Start("start")
	for i := 0; i <= 100; i++ {
		rep.Step(StageExtract, i, 100, "tick")
	}

	// The pipeline never blocked; the channel holds at most its buffer and
	// the state reflects the latest push.
	states := drain(ch)
	if len(states) == 0 || len(states) > 16 {
		t.Fatalf("expected 1..16 buffered events, got %d", len(states))
	}
	if got := ch.State(); got.Progress != 40 {
		t.Fatalf("expected latest state at extract band end, got %+v", got)
	}
}
