// Package db opens the SQLite metastore and applies its schema migrations.
//
// The metastore holds dataset metadata, analysis reports, chat history, and
// the audit log. Raw dataset bytes live in the blob store, never here.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"
)

// SQLite allows one writer at a time, so the metastore is opened as a pair
// of pools: a single-connection writer taking immediate transactions, and a
// small read pool that serves listings concurrently.
const defaultReadConns = 4

// OpenSQLitePair opens the writer and reader pools for the metastore file.
// readConns sizes the read pool; 0 picks the default of 4.
func OpenSQLitePair(path string, readConns int) (writeDB, readDB *sql.DB, err error) {
	writeDB, err = openMetastore(path, true, 1)
	if err != nil {
		return nil, nil, fmt.Errorf("open metastore writer: %w", err)
	}

	if readConns <= 0 {
		readConns = defaultReadConns
	}
	readDB, err = openMetastore(path, false, readConns)
	if err != nil {
		_ = writeDB.Close()
		return nil, nil, fmt.Errorf("open metastore reader: %w", err)
	}
	return writeDB, readDB, nil
}

func openMetastore(path string, writer bool, maxConns int) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", metastoreDSN(path, writer))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// metastoreDSN hardens the connection: WAL so readers never block the
// writer, a 5s busy timeout instead of immediate SQLITE_BUSY errors, and
// enforced foreign keys so report and chat references stay consistent.
// The writer additionally takes the write lock up front (_txlock=immediate)
// to avoid deadlocks from lock upgrades mid-transaction.
func metastoreDSN(path string, writer bool) string {
	params := url.Values{}
	params.Set("_journal_mode", "WAL")
	params.Set("_busy_timeout", "5000")
	params.Set("_synchronous", "NORMAL")
	params.Set("_foreign_keys", "on")
	if writer {
		params.Set("_txlock", "immediate")
	}
	return path + "?" + params.Encode()
}
