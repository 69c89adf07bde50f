// Package badger holds the local job history database.
package badger

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ummeaymen499/xebot/internal/common"
)

// HistoryDB manages the Badger database connection
type HistoryDB struct {
	store  *badgerhold.Store
	logger arbor.ILogger
	config *common.BadgerConfig
}

// NewHistoryDB creates a new Badger database connection
func NewHistoryDB(logger arbor.ILogger, config *common.BadgerConfig) (*HistoryDB, error) {
	dir := filepath.Dir(config.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	logger.Debug().Str("path", config.Path).Msg("Opening job history database")

	options := badgerhold.DefaultOptions
	options.Dir = config.Path
	options.ValueDir = config.Path
	options.Logger = nil // Disable default badger logger to use arbor

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	return &HistoryDB{
		store:  store,
		logger: logger,
		config: config,
	}, nil
}

// Store returns the underlying badgerhold store
func (h *HistoryDB) Store() *badgerhold.Store {
	return h.store
}

// Close closes the database connection
func (h *HistoryDB) Close() error {
	if h.store != nil {
		return h.store.Close()
	}
	return nil
}
