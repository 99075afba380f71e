package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const MemoryPath = ":memory:"

// Options tunes connection behaviour. Zero values select the defaults.
type Options struct {
	BusyTimeout time.Duration
}

func (o Options) busyTimeoutMS() int64 {
	if o.BusyTimeout <= 0 {
		return 5000
	}
	return o.BusyTimeout.Milliseconds()
}

// OpenDB opens a SQLite database at the given path with default options.
func OpenDB(path string) (*sql.DB, error) {
	return Open(path, Options{})
}

// Open opens a SQLite database at the given path.
// If path is ":memory:", uses a single-connection in-memory database.
// File databases run in WAL mode with a busy timeout, and transactions take
// the write lock up front (BEGIN IMMEDIATE).
// Runs migrations automatically.
func Open(path string, opts Options) (*sql.DB, error) {
	var (
		db  *sql.DB
		err error
	)
	if path == MemoryPath {
		db, err = openMemory()
	} else {
		db, err = openFile(path, opts)
	}
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return db, nil
}

func openFile(path string, opts Options) (*sql.DB, error) {
	path = expandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", opts.busyTimeoutMS()))
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "foreign_keys(1)")
	q.Set("_txlock", "immediate")

	db, err := sql.Open("sqlite", "file:"+path+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return db, nil
}

func openMemory() (*sql.DB, error) {
	db, err := sql.Open("sqlite", MemoryPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	return db, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
