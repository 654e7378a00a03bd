//go:build sqlite && !postgres

package main

import (
	"os"

	"learncoach/internal/observability"
	"learncoach/internal/storage"
	sqlitestore "learncoach/internal/storage/sqlite"
)

func sqliteDSN() string {
	dsn := os.Getenv("LEARNCOACH_SQLITE_DSN")
	if dsn == "" {
		dsn = "file:learncoach.db?cache=shared"
	}
	return dsn
}

// selectBlobStore returns a SQLite-backed store when built with the 'sqlite'
// tag. Configure with LEARNCOACH_SQLITE_DSN.
func selectBlobStore(logger observability.Logger) storage.BlobStore {
	if logger == nil {
		logger = observability.NewLogger(observability.DefaultConfig())
	}
	dsn := sqliteDSN()
	st, err := sqlitestore.New(dsn)
	if err != nil {
		logger.Error("sqlite init failed; falling back to memory store", "error", err)
		return storage.NewMemoryBlobStore()
	}
	logger.Info("using sqlite store", "dsn", dsn)
	return st
}
