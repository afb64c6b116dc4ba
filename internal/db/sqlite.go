// Package db provides SQLite connectivity and migration support for the run
// history store.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"
)

// SQLite DSN parameters. The run history sees one writer (the sync service)
// and a handful of readers (the API), so a single hardened pool is enough.
const (
	busyTimeoutMS = "5000"
	synchronous   = "NORMAL"
	journalMode   = "WAL"
)

// Open opens a *sql.DB pool for the given SQLite file path with WAL
// journaling, a 5s busy timeout, and foreign keys enforced. Writes are
// serialized through a single connection to avoid SQLITE_BUSY under load.
func Open(path string) (*sql.DB, error) {
	params := url.Values{}
	params.Set("_journal_mode", journalMode)
	params.Set("_busy_timeout", busyTimeoutMS)
	params.Set("_synchronous", synchronous)
	params.Set("_foreign_keys", "on")
	params.Set("_txlock", "immediate")

	db, err := sql.Open("sqlite3", path+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}
