package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"learncoach/internal/domain"
	"learncoach/internal/observability"
)

// SettingsStore persists user preferences under their own blob key, separate
// from the conversation collection.
type SettingsStore struct {
	mu       sync.RWMutex
	blobs    BlobStore
	logger   observability.Logger
	settings domain.Settings
}

// NewSettingsStore loads settings from the blob store, falling back to
// defaults when the blob is missing or corrupt.
func NewSettingsStore(ctx context.Context, blobs BlobStore, logger observability.Logger) (*SettingsStore, error) {
	if logger == nil {
		logger = observability.NewLogger(observability.DefaultConfig())
	}
	s := &SettingsStore{
		blobs:    blobs,
		logger:   logger.WithComponent("settings"),
		settings: domain.DefaultSettings(),
	}

	raw, ok, err := blobs.Get(ctx, SettingsKey)
	if err != nil {
		return nil, fmt.Errorf("%w: read settings blob: %v", ErrUnavailable, err)
	}
	if ok {
		var loaded domain.Settings
		if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
			s.logger.WarnContext(ctx, "settings blob corrupt; using defaults", "error", err)
		} else {
			s.settings = loaded
		}
	}
	return s, nil
}

// Get returns the current settings.
func (s *SettingsStore) Get(_ context.Context) domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Update replaces the settings and persists them.
func (s *SettingsStore) Update(ctx context.Context, settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := s.blobs.Set(ctx, SettingsKey, string(raw)); err != nil {
		return fmt.Errorf("%w: write settings blob: %v", ErrUnavailable, err)
	}
	s.settings = settings
	return nil
}
