package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/table"

	"github.com/ummeaymen499/xebot/internal/models"
)

// stepGlyph returns the status marker for one pipeline step.
func stepGlyph(status models.StepStatus) string {
	switch status {
	case models.StepCompleted:
		return SuccessStyle.Render("✓")
	case models.StepActive:
		return AccentStyle.Render("▶")
	case models.StepError:
		return ErrorStyle.Render("✗")
	default:
		return MutedStyle.Render("○")
	}
}

// RenderPipeline renders the four-step pipeline view, one line per step.
// The caller owns cursor management for in-place refresh.
func RenderPipeline(p models.Pipeline) string {
	var b strings.Builder
	for _, step := range p.Steps {
		title := step.Title
		if step.Status == models.StepActive {
			title = Bold(title)
		}
		fmt.Fprintf(&b, "  %s %-20s %s\n", stepGlyph(step.Status), title, Muted(step.Description))
	}
	return b.String()
}

// PipelineLineCount is the number of lines RenderPipeline prints, used by
// callers to move the cursor back up before a redraw.
func PipelineLineCount(p models.Pipeline) int {
	return len(p.Steps)
}

// RenderPapers renders arXiv search results as a table.
func RenderPapers(papers []models.Paper) string {
	t := table.New().Headers("ARXIV ID", "TITLE", "PUBLISHED")
	for _, p := range papers {
		title := p.Title
		if len(title) > 70 {
			title = title[:67] + "..."
		}
		t.Row(p.ArxivID, title, p.Published)
	}
	return t.Render()
}

// RenderVideos renders the video listing as a table.
func RenderVideos(videos []models.Video) string {
	t := table.New().Headers("TYPE", "TOPIC", "URL")
	for _, v := range videos {
		t.Row(v.Type, v.Topic, v.VideoURL)
	}
	return t.Render()
}

// RenderHistory renders local job history as a table, newest first.
func RenderHistory(records []*models.JobRecord) string {
	t := table.New().Headers("JOB ID", "PAPER", "OUTCOME", "VIDEOS", "SUBMITTED")
	for _, r := range records {
		outcome := r.Outcome
		if outcome == "" {
			outcome = "running"
		}
		t.Row(r.JobID, r.ArxivID, outcome, fmt.Sprintf("%d", r.VideoCount), r.SubmittedAt.Format("2006-01-02 15:04"))
	}
	return t.Render()
}
