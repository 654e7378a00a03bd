//go:build !sqlite && !postgres

package main

import (
	"os"

	"learncoach/internal/observability"
	"learncoach/internal/storage"
)

// selectBlobStore returns the in-memory store when built without storage
// tags. If a persistent DSN is set, log a hint to rebuild with the tag.
func selectBlobStore(logger observability.Logger) storage.BlobStore {
	if logger == nil {
		logger = observability.NewLogger(observability.DefaultConfig())
	}
	if os.Getenv("LEARNCOACH_SQLITE_DSN") != "" {
		logger.Warn("LEARNCOACH_SQLITE_DSN set, but binary not built with -tags sqlite; using in-memory store")
	}
	if os.Getenv("DATABASE_URL") != "" {
		logger.Warn("DATABASE_URL set, but binary not built with -tags postgres; using in-memory store")
	}
	logger.Info("using in-memory store")
	return storage.NewMemoryBlobStore()
}
