package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ummeaymen499/xebot/internal/models"
)

// HistoryStorage persists the local record of submitted jobs and their
// outcomes so past submissions can be listed without asking the service.
type HistoryStorage struct {
	db     *HistoryDB
	logger arbor.ILogger
}

// NewHistoryStorage creates a new HistoryStorage instance
func NewHistoryStorage(db *HistoryDB, logger arbor.ILogger) *HistoryStorage {
	return &HistoryStorage{
		db:     db,
		logger: logger,
	}
}

// SaveJob inserts or updates a job record.
func (s *HistoryStorage) SaveJob(ctx context.Context, record *models.JobRecord) error {
	if record.JobID == "" {
		return fmt.Errorf("job ID is required")
	}

	if err := s.db.Store().Upsert(record.JobID, record); err != nil {
		return fmt.Errorf("failed to save job record: %w", err)
	}
	return nil
}

// GetJob retrieves a job record by ID.
func (s *HistoryStorage) GetJob(ctx context.Context, jobID string) (*models.JobRecord, error) {
	var record models.JobRecord
	if err := s.db.Store().Get(jobID, &record); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("job not found: %s", jobID)
		}
		return nil, fmt.Errorf("failed to get job record: %w", err)
	}
	return &record, nil
}

// RecordOutcome updates the stored record with the session's terminal outcome.
func (s *HistoryStorage) RecordOutcome(ctx context.Context, jobID string, outcome models.PollOutcome) error {
	record, err := s.GetJob(ctx, jobID)
	if err != nil {
		return err
	}

	record.Outcome = string(outcome.Kind)
	record.Reason = outcome.Reason
	record.CompletedAt = time.Now()
	if outcome.Result != nil {
		record.VideoCount = len(outcome.Result.Videos)
	}

	return s.SaveJob(ctx, record)
}

// ListJobs returns job records newest first, up to limit (0 = no limit).
func (s *HistoryStorage) ListJobs(ctx context.Context, limit int) ([]*models.JobRecord, error) {
	query := badgerhold.Where("JobID").Ne("").SortBy("SubmittedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []models.JobRecord
	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to list job records: %w", err)
	}

	result := make([]*models.JobRecord, len(records))
	for i := range records {
		result[i] = &records[i]
	}
	return result, nil
}
