package api

import "github.com/ummeaymen499/xebot/internal/models"

// APIKeyGrant is the response to a key issuance request. The key is shown
// once and never again.
type APIKeyGrant struct {
	APIKey    string `json:"api_key"`
	Name      string `json:"name"`
	Tier      string `json:"tier"`
	RateLimit string `json:"rate_limit"`
	Message   string `json:"message"`
}

// SubmitResponse acknowledges an accepted generation job.
type SubmitResponse struct {
	JobID         string `json:"job_id"`
	Status        string `json:"status"`
	Message       string `json:"message"`
	EstimatedTime string `json:"estimated_time"`
}

// searchResponse wraps the paper list returned by the search endpoint.
type searchResponse struct {
	Papers []models.Paper `json:"papers"`
	Count  int            `json:"count"`
}

// codeResponse carries generated animation code.
type codeResponse struct {
	ManimCode string `json:"manim_code"`
}

// videosResponse wraps the video listing endpoint.
type videosResponse struct {
	Videos []models.Video `json:"videos"`
}

// jobStatusResponse is the raw wire shape of the job status resource. The
// server reports a flat document; toSnapshot folds it into the client's
// StatusSnapshot, treating absent fields as "not provided".
type jobStatusResponse struct {
	Status        string         `json:"status"`
	Stage         string         `json:"stage"`
	StageDetail   string         `json:"stage_detail"`
	Progress      *int           `json:"progress"`
	ArxivID       string         `json:"arxiv_id"`
	Videos        []models.Video `json:"videos"`
	Paper         *paperInfo     `json:"paper"`
	SegmentsCount int            `json:"segments_count"`
	Error         string         `json:"error"`
}

type paperInfo struct {
	Title string `json:"title"`
}

// toSnapshot converts the wire document into a StatusSnapshot. The result
// payload is attached only for completed jobs.
func (r *jobStatusResponse) toSnapshot(jobID string) *models.StatusSnapshot {
	snap := &models.StatusSnapshot{
		JobID:       jobID,
		Lifecycle:   models.JobLifecycle(r.Status),
		Stage:       r.Stage,
		StageDetail: r.StageDetail,
		Progress:    r.Progress,
		Error:       r.Error,
	}

	if snap.Lifecycle == models.LifecycleCompleted {
		result := &models.AnimationResult{
			Videos:        r.Videos,
			SegmentsCount: r.SegmentsCount,
		}
		if r.Paper != nil {
			result.PaperTitle = r.Paper.Title
		}
		snap.Result = result
	}

	return snap
}
