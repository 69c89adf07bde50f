// Package auth holds the process-wide API credential for the client.
// The credential is acquired once and reused for every request; it is
// passed into collaborators explicitly rather than read from ambient state
// so the monitor and submission paths stay testable without a real key.
package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"
)

// KeyIssuer issues a new API key from the service. Implemented by the API
// client; tests substitute fakes.
type KeyIssuer interface {
	IssueKey(ctx context.Context, name, email string) (string, error)
}

// Store is the process-wide credential holder. Acquire resolves the key at
// most once per process: a preconfigured key wins, otherwise a new key is
// issued and cached for the process lifetime.
type Store struct {
	mu     sync.Mutex
	key    string
	name   string
	email  string
	logger arbor.ILogger
}

// NewStore creates a credential store. configuredKey may be empty, in which
// case the first Acquire call issues a fresh key under the given name.
func NewStore(configuredKey, name, email string, logger arbor.ILogger) *Store {
	return &Store{
		key:    configuredKey,
		name:   name,
		email:  email,
		logger: logger,
	}
}

// Acquire returns the stored credential, issuing a new one from the service
// if none is held yet. Concurrent callers share a single issuance.
func (s *Store) Acquire(ctx context.Context, issuer KeyIssuer) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != "" {
		return s.key, nil
	}

	if issuer == nil {
		return "", fmt.Errorf("no API key configured and no issuer available")
	}

	key, err := issuer.IssueKey(ctx, s.name, s.email)
	if err != nil {
		return "", fmt.Errorf("failed to issue API key: %w", err)
	}

	if s.logger != nil {
		s.logger.Info().Str("name", s.name).Msg("Issued new API key for this session")
	}

	s.key = key
	return key, nil
}

// Key returns the currently held credential without acquiring one.
func (s *Store) Key() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}
