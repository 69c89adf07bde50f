package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"

	"github.com/ummeaymen499/xebot/internal/common"
	"github.com/ummeaymen499/xebot/internal/models"
)

const (
	// DefaultPollInterval is the spacing between status polls.
	DefaultPollInterval = 5 * time.Second

	// DefaultMaxAttempts bounds the wall-clock polling duration
	// (180 polls at 5s is the 15-minute job budget).
	DefaultMaxAttempts = 180

	// DefaultMaxConsecutiveErrors is the transient failure streak tolerated
	// before the session gives up on the endpoint.
	DefaultMaxConsecutiveErrors = 5

	// DefaultBackoffMultiplier scales the poll interval after a transient
	// failure.
	DefaultBackoffMultiplier = 2
)

// StatusFetcher fetches the current status snapshot for a job. Implemented
// by the API client; tests substitute scripted fakes.
type StatusFetcher interface {
	JobStatus(ctx context.Context, jobID string) (*models.StatusSnapshot, error)
}

// Options carries the timing policy for one session. Zero values fall back
// to the package defaults.
type Options struct {
	PollInterval         time.Duration
	MaxAttempts          int
	MaxConsecutiveErrors int
	BackoffMultiplier    int
}

func (o Options) withDefaults() Options {
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.MaxConsecutiveErrors <= 0 {
		o.MaxConsecutiveErrors = DefaultMaxConsecutiveErrors
	}
	if o.BackoffMultiplier <= 0 {
		o.BackoffMultiplier = DefaultBackoffMultiplier
	}
	return o
}

// Session drives one job's monitoring lifecycle: it polls the status
// endpoint on a single timeline (never more than one request in flight),
// feeds each snapshot to the progress callback in arrival order, rides out
// transient fetch errors with a bounded backoff streak, and resolves to
// exactly one PollOutcome.
//
// Two independent counters bound the session: attempts caps wall-clock
// duration (checked only after successful fetches, so a flaky network
// cannot convert into a spurious timeout), and consecutiveErrors caps
// failure streaks and resets on any success.
//
// Sessions are single-use. Multiple sessions are independent and share no
// state.
type Session struct {
	fetcher    StatusFetcher
	jobID      string
	sessionID  string
	opts       Options
	onSnapshot func(*models.StatusSnapshot)
	logger     arbor.ILogger

	done     chan models.PollOutcome
	stop     chan struct{}
	stopOnce sync.Once
	resolve  sync.Once
}

// NewSession creates a monitoring session for jobID. onSnapshot may be nil;
// when set it is invoked synchronously inside the tick that received the
// snapshot and must not block.
func NewSession(fetcher StatusFetcher, jobID string, onSnapshot func(*models.StatusSnapshot), opts Options) *Session {
	return &Session{
		fetcher:    fetcher,
		jobID:      jobID,
		sessionID:  uuid.New().String(),
		opts:       opts.withDefaults(),
		onSnapshot: onSnapshot,
		logger:     common.GetLogger().WithCorrelationId(jobID),
		done:       make(chan models.PollOutcome, 1),
		stop:       make(chan struct{}),
	}
}

// Start begins polling in a new goroutine and returns the outcome channel.
// Exactly one outcome is delivered unless the session is stopped or the
// context is cancelled first, in which case the channel is closed without a
// value and no further callbacks are invoked.
func (s *Session) Start(ctx context.Context) <-chan models.PollOutcome {
	go s.run(ctx)
	return s.done
}

// Stop abandons the session: no further ticks, callbacks, or outcome.
// Safe to call more than once and after resolution.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Wait blocks until the session resolves. ok is false when the session was
// stopped or cancelled before reaching a terminal outcome.
func (s *Session) Wait() (models.PollOutcome, bool) {
	outcome, ok := <-s.done
	return outcome, ok
}

func (s *Session) run(ctx context.Context) {
	attempts := 0
	consecutiveErrors := 0

	s.logger.Debug().
		Str("session_id", s.sessionID).
		Int("max_attempts", s.opts.MaxAttempts).
		Dur("poll_interval", s.opts.PollInterval).
		Msg("Starting job monitor")

	// First poll fires immediately; subsequent ticks are rescheduled below.
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug().Msg("Job monitor cancelled")
			s.abandon()
			return

		case <-s.stop:
			s.logger.Debug().Msg("Job monitor stopped")
			s.abandon()
			return

		case <-timer.C:
		}

		attempts++
		snapshot, err := s.fetcher.JobStatus(ctx, s.jobID)
		if err != nil {
			consecutiveErrors++
			// The streak tolerates MaxConsecutiveErrors failures; only the
			// failure after that gives up, so the reason cites the number of
			// retries actually performed.
			if consecutiveErrors > s.opts.MaxConsecutiveErrors {
				reason := fmt.Sprintf("connection lost after %d retries: %v", s.opts.MaxConsecutiveErrors, err)
				s.logger.Warn().Err(err).Int("retries", consecutiveErrors).Msg("Status endpoint unreachable, giving up")
				s.deliver(models.Failed(reason))
				return
			}
			// Back off instead of retrying immediately; errors alone never
			// trip the attempt budget.
			backoff := s.opts.PollInterval * time.Duration(s.opts.BackoffMultiplier)
			s.logger.Warn().Err(err).
				Int("consecutive_errors", consecutiveErrors).
				Dur("backoff", backoff).
				Msg("Transient error fetching job status, retrying")
			timer.Reset(backoff)
			continue
		}

		consecutiveErrors = 0
		if !s.emit(snapshot) {
			return
		}

		switch snapshot.Lifecycle {
		case models.LifecycleCompleted:
			s.logger.Info().Int("attempts", attempts).Msg("Job completed")
			s.deliver(models.Succeeded(snapshot.Result))
			return

		case models.LifecycleFailed:
			s.logger.Info().Int("attempts", attempts).Str("error", snapshot.Error).Msg("Job failed remotely")
			s.deliver(models.Failed(snapshot.Error))
			return
		}

		if attempts >= s.opts.MaxAttempts {
			s.logger.Warn().Int("attempts", attempts).Msg("Job monitor exhausted attempt budget")
			s.deliver(models.TimedOut())
			return
		}

		timer.Reset(s.opts.PollInterval)
	}
}

// emit invokes the progress callback unless the session has been stopped in
// the meantime. Returns false when the session should exit without an
// outcome.
func (s *Session) emit(snapshot *models.StatusSnapshot) bool {
	select {
	case <-s.stop:
		s.abandon()
		return false
	default:
	}
	if s.onSnapshot != nil {
		s.onSnapshot(snapshot)
	}
	return true
}

func (s *Session) deliver(outcome models.PollOutcome) {
	s.resolve.Do(func() {
		s.done <- outcome
		close(s.done)
	})
}

func (s *Session) abandon() {
	s.resolve.Do(func() { close(s.done) })
}
