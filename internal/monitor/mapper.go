package monitor

import (
	"fmt"
	"strings"

	"github.com/ummeaymen499/xebot/internal/models"
)

// ApplySnapshot translates one status snapshot into pipeline step updates and
// returns a new pipeline; the input is never mutated. The server reports
// stages as free-form lowercase tokens ("fetching", "extracting", ...) and may
// repeat the same token across polls, so updates are idempotent and a step
// that already reached completed or error is never moved back to pending or
// active.
func ApplySnapshot(p models.Pipeline, snap *models.StatusSnapshot) models.Pipeline {
	next := p.Clone()
	if snap == nil {
		return next
	}

	switch snap.Lifecycle {
	case models.LifecycleCompleted:
		// Terminal success overrides any partial state.
		for i := range next.Steps {
			setStatus(&next.Steps[i], models.StepCompleted, "")
		}
		return next

	case models.LifecycleFailed:
		// Only the step that was active when the job died is marked; steps
		// still pending stay pending.
		for i := range next.Steps {
			if next.Steps[i].Status == models.StepActive {
				detail := snap.StageDetail
				if detail == "" {
					detail = "failed"
				}
				setStatus(&next.Steps[i], models.StepError, detail)
				break
			}
		}
		return next

	case models.LifecycleQueued:
		advanceTo(&next, models.StepFetch, "queued")
		return next
	}

	stage := strings.ToLower(snap.Stage)
	switch {
	case strings.Contains(stage, "fetch"):
		advanceTo(&next, models.StepFetch, describe(snap, "Fetching paper"))
	case strings.Contains(stage, "extract"):
		advanceTo(&next, models.StepExtract, describe(snap, "Extracting content"))
	case strings.Contains(stage, "segment"):
		advanceTo(&next, models.StepSegment, describe(snap, "Segmenting topics"))
	case strings.Contains(stage, "animat"):
		advanceTo(&next, models.StepAnimate, describe(snap, "Rendering animations"))
	}

	return next
}

// advanceTo marks every step before target as completed and target as active.
// Terminal step statuses are left alone, so a stale or repeated stage token
// cannot regress displayed progress.
func advanceTo(p *models.Pipeline, target models.StepID, description string) {
	for i := range p.Steps {
		if p.Steps[i].ID == target {
			setStatus(&p.Steps[i], models.StepActive, description)
			return
		}
		setStatus(&p.Steps[i], models.StepCompleted, "")
	}
}

// setStatus applies a status mutation unless the step already holds a
// different terminal status.
func setStatus(step *models.PipelineStep, status models.StepStatus, description string) {
	if step.Status.IsTerminal() && status != step.Status {
		return
	}
	step.Status = status
	if description != "" {
		step.Description = description
	}
}

// describe picks the step description for an in-progress stage: the server's
// detail text when present, otherwise a line synthesized from the progress
// percentage.
func describe(snap *models.StatusSnapshot, fallback string) string {
	if snap.StageDetail != "" {
		return snap.StageDetail
	}
	if snap.Progress != nil {
		return fmt.Sprintf("%s (%d%%)", fallback, *snap.Progress)
	}
	return fallback
}
