package models

import "time"

// JobLifecycle represents the remote lifecycle state of an animation job.
type JobLifecycle string

const (
	LifecycleQueued     JobLifecycle = "queued"
	LifecycleProcessing JobLifecycle = "processing"
	LifecycleCompleted  JobLifecycle = "completed"
	LifecycleFailed     JobLifecycle = "failed"
)

// IsValid checks if the JobLifecycle is a known, valid state
func (l JobLifecycle) IsValid() bool {
	switch l {
	case LifecycleQueued, LifecycleProcessing, LifecycleCompleted, LifecycleFailed:
		return true
	}
	return false
}

// IsTerminal reports whether the lifecycle state ends the job on the remote side
func (l JobLifecycle) IsTerminal() bool {
	return l == LifecycleCompleted || l == LifecycleFailed
}

// String returns the string representation of the JobLifecycle
func (l JobLifecycle) String() string {
	return string(l)
}

// StatusSnapshot is one observation of remote job state at a point in time.
// Snapshots are transient: each one is superseded by the next poll. Absent
// fields mean "not provided by the server", never an error. Progress is a
// pointer so a missing value can be told apart from 0%.
type StatusSnapshot struct {
	JobID       string           `json:"job_id"`
	Lifecycle   JobLifecycle     `json:"status"`
	Stage       string           `json:"stage,omitempty"`
	StageDetail string           `json:"stage_detail,omitempty"`
	Progress    *int             `json:"progress,omitempty"`
	Result      *AnimationResult `json:"result,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// AnimationResult is the payload of a completed job.
type AnimationResult struct {
	PaperTitle    string  `json:"paper_title,omitempty"`
	Videos        []Video `json:"videos"`
	SegmentsCount int     `json:"segments_count"`
}

// Video describes one rendered video belonging to a job result.
type Video struct {
	Type         string `json:"type"`
	Topic        string `json:"topic,omitempty"`
	SegmentIndex int    `json:"segment_index,omitempty"`
	VideoURL     string `json:"video_url"`
	DownloadURL  string `json:"download_url"`
}

// Paper is a single arXiv search result.
type Paper struct {
	ArxivID   string   `json:"arxiv_id"`
	Title     string   `json:"title"`
	Authors   []string `json:"authors"`
	Summary   string   `json:"summary"`
	Published string   `json:"published,omitempty"`
	PDFURL    string   `json:"pdf_url,omitempty"`
}

// JobRecord is the locally persisted history entry for one submitted job.
type JobRecord struct {
	JobID       string    `json:"job_id" badgerhold:"key"`
	ArxivID     string    `json:"arxiv_id"`
	Quality     string    `json:"quality"`
	Outcome     string    `json:"outcome"` // "succeeded", "failed", "timed_out", or "" while running
	Reason      string    `json:"reason,omitempty"`
	VideoCount  int       `json:"video_count"`
	SubmittedAt time.Time `json:"submitted_at"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
}
