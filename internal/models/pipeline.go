package models

// StepID identifies one named phase of the animation pipeline.
type StepID string

const (
	StepFetch   StepID = "fetch"
	StepExtract StepID = "extract"
	StepSegment StepID = "segment"
	StepAnimate StepID = "animate"
)

// StepStatus represents the display status of a pipeline step.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepActive    StepStatus = "active"
	StepCompleted StepStatus = "completed"
	StepError     StepStatus = "error"
)

// IsTerminal reports whether the status is final for the session. A step
// that reached completed or error must never be moved back to pending or
// active by a later snapshot.
func (s StepStatus) IsTerminal() bool {
	return s == StepCompleted || s == StepError
}

// String returns the string representation of the StepStatus
func (s StepStatus) String() string {
	return string(s)
}

// PipelineStep is one named phase of the overall job. Step order is fixed
// and steps are never reordered; only Status and Description change, and
// only through the stage mapper.
type PipelineStep struct {
	ID          StepID     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      StepStatus `json:"status"`
}

// Pipeline is the ordered step sequence for one monitoring session. It is a
// read model: callers render it between mutations and must treat it as
// immutable. The stage mapper returns a fresh copy on every update.
type Pipeline struct {
	Steps []PipelineStep `json:"steps"`
}

// NewPipeline returns the four animation pipeline steps, all pending.
// A new pipeline replaces the previous one wholesale when a new session starts.
func NewPipeline() Pipeline {
	return Pipeline{
		Steps: []PipelineStep{
			{ID: StepFetch, Title: "Fetch Paper", Description: "Download paper from arXiv", Status: StepPending},
			{ID: StepExtract, Title: "Extract Content", Description: "Extract text and figures", Status: StepPending},
			{ID: StepSegment, Title: "Segment Topics", Description: "Split content into animatable topics", Status: StepPending},
			{ID: StepAnimate, Title: "Generate Animations", Description: "Render animation videos", Status: StepPending},
		},
	}
}

// Clone returns a deep copy of the pipeline so updates never mutate a
// sequence a renderer may still be reading.
func (p Pipeline) Clone() Pipeline {
	steps := make([]PipelineStep, len(p.Steps))
	copy(steps, p.Steps)
	return Pipeline{Steps: steps}
}

// CompletedCount returns the number of steps at completed.
func (p Pipeline) CompletedCount() int {
	n := 0
	for _, s := range p.Steps {
		if s.Status == StepCompleted {
			n++
		}
	}
	return n
}

// ActiveStep returns the currently active step, or nil if none is active.
func (p Pipeline) ActiveStep() *PipelineStep {
	for i := range p.Steps {
		if p.Steps[i].Status == StepActive {
			return &p.Steps[i]
		}
	}
	return nil
}

// HasError reports whether any step is in the error state.
func (p Pipeline) HasError() bool {
	for _, s := range p.Steps {
		if s.Status == StepError {
			return true
		}
	}
	return false
}
