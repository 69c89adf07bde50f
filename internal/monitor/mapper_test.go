package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ummeaymen499/xebot/internal/models"
)

func intPtr(n int) *int { return &n }

func statuses(p models.Pipeline) []models.StepStatus {
	out := make([]models.StepStatus, len(p.Steps))
	for i, s := range p.Steps {
		out[i] = s.Status
	}
	return out
}

func TestApplySnapshot_QueuedActivatesFetch(t *testing.T) {
	p := models.NewPipeline()
	next := ApplySnapshot(p, &models.StatusSnapshot{Lifecycle: models.LifecycleQueued})

	assert.Equal(t, []models.StepStatus{
		models.StepActive, models.StepPending, models.StepPending, models.StepPending,
	}, statuses(next))
	assert.Equal(t, "queued", next.Steps[0].Description)

	// Input pipeline is untouched
	assert.Equal(t, models.StepPending, p.Steps[0].Status)
}

func TestApplySnapshot_StageTokens(t *testing.T) {
	tests := []struct {
		stage string
		want  []models.StepStatus
	}{
		{"fetching", []models.StepStatus{models.StepActive, models.StepPending, models.StepPending, models.StepPending}},
		{"extracting", []models.StepStatus{models.StepCompleted, models.StepActive, models.StepPending, models.StepPending}},
		{"segmenting", []models.StepStatus{models.StepCompleted, models.StepCompleted, models.StepActive, models.StepPending}},
		{"animating", []models.StepStatus{models.StepCompleted, models.StepCompleted, models.StepCompleted, models.StepActive}},
		{"ANIMATING", []models.StepStatus{models.StepCompleted, models.StepCompleted, models.StepCompleted, models.StepActive}},
		{"animation_render", []models.StepStatus{models.StepCompleted, models.StepCompleted, models.StepCompleted, models.StepActive}},
	}

	for _, tt := range tests {
		t.Run(tt.stage, func(t *testing.T) {
			next := ApplySnapshot(models.NewPipeline(), &models.StatusSnapshot{
				Lifecycle: models.LifecycleProcessing,
				Stage:     tt.stage,
			})
			assert.Equal(t, tt.want, statuses(next))
		})
	}
}

func TestApplySnapshot_UnknownStageChangesNothing(t *testing.T) {
	p := ApplySnapshot(models.NewPipeline(), &models.StatusSnapshot{
		Lifecycle: models.LifecycleProcessing,
		Stage:     "extracting",
	})

	next := ApplySnapshot(p, &models.StatusSnapshot{
		Lifecycle: models.LifecycleProcessing,
		Stage:     "warming_up",
	})
	assert.Equal(t, statuses(p), statuses(next))
}

func TestApplySnapshot_Idempotent(t *testing.T) {
	snap := &models.StatusSnapshot{
		Lifecycle:   models.LifecycleProcessing,
		Stage:       "segmenting",
		StageDetail: "topic 2 of 5",
	}

	once := ApplySnapshot(models.NewPipeline(), snap)
	twice := ApplySnapshot(once, snap)
	assert.Equal(t, once, twice)
}

func TestApplySnapshot_NeverRegresses(t *testing.T) {
	p := ApplySnapshot(models.NewPipeline(), &models.StatusSnapshot{
		Lifecycle: models.LifecycleProcessing,
		Stage:     "animating",
	})

	// A stale earlier stage arrives out of order
	next := ApplySnapshot(p, &models.StatusSnapshot{
		Lifecycle: models.LifecycleProcessing,
		Stage:     "extracting",
	})

	// Completed steps stay completed; animate keeps its state
	assert.Equal(t, models.StepCompleted, next.Steps[0].Status)
	assert.Equal(t, models.StepCompleted, next.Steps[2].Status)
}

func TestApplySnapshot_CompletedOverridesEverything(t *testing.T) {
	p := ApplySnapshot(models.NewPipeline(), &models.StatusSnapshot{
		Lifecycle: models.LifecycleProcessing,
		Stage:     "extracting",
	})

	next := ApplySnapshot(p, &models.StatusSnapshot{Lifecycle: models.LifecycleCompleted})
	for _, s := range next.Steps {
		assert.Equal(t, models.StepCompleted, s.Status)
	}
	assert.Equal(t, 4, next.CompletedCount())
	assert.False(t, next.HasError())
}

func TestApplySnapshot_FailedMarksOnlyActiveStep(t *testing.T) {
	p := ApplySnapshot(models.NewPipeline(), &models.StatusSnapshot{
		Lifecycle: models.LifecycleProcessing,
		Stage:     "segmenting",
	})

	next := ApplySnapshot(p, &models.StatusSnapshot{
		Lifecycle:   models.LifecycleFailed,
		StageDetail: "segmentation model crashed",
	})

	assert.Equal(t, []models.StepStatus{
		models.StepCompleted, models.StepCompleted, models.StepError, models.StepPending,
	}, statuses(next))
	assert.Equal(t, "segmentation model crashed", next.Steps[2].Description)
	assert.True(t, next.HasError())

	// A failed step stays failed even if a later snapshot claims progress
	after := ApplySnapshot(next, &models.StatusSnapshot{
		Lifecycle: models.LifecycleProcessing,
		Stage:     "segmenting",
	})
	assert.Equal(t, models.StepError, after.Steps[2].Status)
}

func TestApplySnapshot_FailedWithoutDetail(t *testing.T) {
	p := ApplySnapshot(models.NewPipeline(), &models.StatusSnapshot{
		Lifecycle: models.LifecycleProcessing,
		Stage:     "fetching",
	})
	next := ApplySnapshot(p, &models.StatusSnapshot{Lifecycle: models.LifecycleFailed})
	assert.Equal(t, "failed", next.Steps[0].Description)
}

func TestApplySnapshot_DescriptionFromDetailOrProgress(t *testing.T) {
	withDetail := ApplySnapshot(models.NewPipeline(), &models.StatusSnapshot{
		Lifecycle:   models.LifecycleProcessing,
		Stage:       "animating",
		StageDetail: "rendering segment 3",
		Progress:    intPtr(60),
	})
	assert.Equal(t, "rendering segment 3", withDetail.Steps[3].Description)

	withProgress := ApplySnapshot(models.NewPipeline(), &models.StatusSnapshot{
		Lifecycle: models.LifecycleProcessing,
		Stage:     "animating",
		Progress:  intPtr(60),
	})
	assert.Equal(t, "Rendering animations (60%)", withProgress.Steps[3].Description)

	bare := ApplySnapshot(models.NewPipeline(), &models.StatusSnapshot{
		Lifecycle: models.LifecycleProcessing,
		Stage:     "animating",
	})
	assert.Equal(t, "Rendering animations", bare.Steps[3].Description)
}

func TestApplySnapshot_NilSnapshot(t *testing.T) {
	p := models.NewPipeline()
	next := ApplySnapshot(p, nil)
	assert.Equal(t, p, next)
}

func TestApplySnapshot_FullRun(t *testing.T) {
	p := models.NewPipeline()
	timeline := []*models.StatusSnapshot{
		{Lifecycle: models.LifecycleQueued},
		{Lifecycle: models.LifecycleProcessing, Stage: "fetching"},
		{Lifecycle: models.LifecycleProcessing, Stage: "fetching"},
		{Lifecycle: models.LifecycleProcessing, Stage: "extracting", Progress: intPtr(30)},
		{Lifecycle: models.LifecycleProcessing, Stage: "segmenting"},
		{Lifecycle: models.LifecycleProcessing, Stage: "animating", StageDetail: "segment 1 of 3"},
		{Lifecycle: models.LifecycleCompleted},
	}

	for _, snap := range timeline {
		p = ApplySnapshot(p, snap)

		// At every point at most one step is active and no earlier step is
		// behind a later one.
		active := 0
		for _, s := range p.Steps {
			if s.Status == models.StepActive {
				active++
			}
		}
		require.LessOrEqual(t, active, 1)
	}

	assert.Equal(t, 4, p.CompletedCount())
	assert.Nil(t, p.ActiveStep())
}
