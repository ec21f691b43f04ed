package shared

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const memoryDSN = ":memory:"

// NewDatabase opens the SQLite file at path, or a private in-memory database for ":memory:".
// File databases wait up to five seconds on a lock held by another acervo process.
func NewDatabase(path string) (*sql.DB, error) {
	dsn := path
	if path != memoryDSN {
		dsn = "file:" + path + "?_busy_timeout=5000&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("session store: open %s: %w", path, err)
	}
	// each new :memory: connection would see an empty database
	if path == memoryDSN {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("session store: ping %s: %w", path, err)
	}
	return db, nil
}

// OpenSessionDatabase opens the session store at path, creating its directory, and runs
// pending migrations. Pool limits from cfg apply to file databases only.
func OpenSessionDatabase(path string, cfg DatabaseConfig) (*sql.DB, error) {
	if path != memoryDSN {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("session store: create directory: %w", err)
		}
	}

	db, err := NewDatabase(path)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 && path != memoryDSN {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(max(cfg.MaxIdleConns, 1))
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
