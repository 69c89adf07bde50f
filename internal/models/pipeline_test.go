package models

import "testing"

func TestNewPipeline(t *testing.T) {
	p := NewPipeline()

	wantOrder := []StepID{StepFetch, StepExtract, StepSegment, StepAnimate}
	if len(p.Steps) != len(wantOrder) {
		t.Fatalf("len(Steps) = %d, want %d", len(p.Steps), len(wantOrder))
	}
	for i, id := range wantOrder {
		if p.Steps[i].ID != id {
			t.Errorf("Steps[%d].ID = %q, want %q", i, p.Steps[i].ID, id)
		}
		if p.Steps[i].Status != StepPending {
			t.Errorf("Steps[%d].Status = %q, want pending", i, p.Steps[i].Status)
		}
		if p.Steps[i].Title == "" || p.Steps[i].Description == "" {
			t.Errorf("Steps[%d] missing title or description", i)
		}
	}

	if p.CompletedCount() != 0 {
		t.Errorf("CompletedCount() = %d, want 0", p.CompletedCount())
	}
	if p.ActiveStep() != nil {
		t.Error("ActiveStep() should be nil for a fresh pipeline")
	}
	if p.HasError() {
		t.Error("HasError() should be false for a fresh pipeline")
	}
}

func TestPipeline_CloneIsIndependent(t *testing.T) {
	p := NewPipeline()
	c := p.Clone()

	c.Steps[0].Status = StepCompleted
	c.Steps[1].Status = StepActive

	if p.Steps[0].Status != StepPending || p.Steps[1].Status != StepPending {
		t.Error("mutating a clone changed the original pipeline")
	}
	if c.CompletedCount() != 1 {
		t.Errorf("clone CompletedCount() = %d, want 1", c.CompletedCount())
	}
	if got := c.ActiveStep(); got == nil || got.ID != StepExtract {
		t.Errorf("clone ActiveStep() = %v, want extract", got)
	}
}

func TestStepStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status StepStatus
		want   bool
	}{
		{StepPending, false},
		{StepActive, false},
		{StepCompleted, true},
		{StepError, true},
	}
	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.want {
			t.Errorf("%s.IsTerminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestJobLifecycle(t *testing.T) {
	tests := []struct {
		lifecycle JobLifecycle
		valid     bool
		terminal  bool
	}{
		{LifecycleQueued, true, false},
		{LifecycleProcessing, true, false},
		{LifecycleCompleted, true, true},
		{LifecycleFailed, true, true},
		{JobLifecycle("bogus"), false, false},
		{JobLifecycle(""), false, false},
	}
	for _, tt := range tests {
		if got := tt.lifecycle.IsValid(); got != tt.valid {
			t.Errorf("%q.IsValid() = %v, want %v", tt.lifecycle, got, tt.valid)
		}
		if got := tt.lifecycle.IsTerminal(); got != tt.terminal {
			t.Errorf("%q.IsTerminal() = %v, want %v", tt.lifecycle, got, tt.terminal)
		}
	}
}

func TestPollOutcomeConstructors(t *testing.T) {
	result := &AnimationResult{SegmentsCount: 2}

	if o := Succeeded(result); o.Kind != OutcomeSucceeded || o.Result != result || o.Reason != "" {
		t.Errorf("Succeeded() = %+v", o)
	}
	if o := Failed("boom"); o.Kind != OutcomeFailed || o.Reason != "boom" || o.Result != nil {
		t.Errorf("Failed() = %+v", o)
	}
	if o := TimedOut(); o.Kind != OutcomeTimedOut || o.Result != nil || o.Reason != "" {
		t.Errorf("TimedOut() = %+v", o)
	}
}
