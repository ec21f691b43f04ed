package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Fixed keys of the session token table.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
)

// TokenRepository persists session tokens in the session_tokens table.
type TokenRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewTokenRepository creates a new [TokenRepository] with the given database connection
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db, now: time.Now}
}

// Get returns the value stored under key. A missing key yields "" and found == false.
func (r *TokenRepository) Get(key string) (value string, found bool, err error) {
	err = r.db.QueryRow(`SELECT value FROM session_tokens WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query token %s: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (r *TokenRepository) Set(key, value string) error {
	return withTx(r.db, func(tx *sql.Tx) error {
		return r.upsert(tx, key, value)
	})
}

// SetPair stores both tokens atomically.
func (r *TokenRepository) SetPair(access, refresh string) error {
	return withTx(r.db, func(tx *sql.Tx) error {
		if err := r.upsert(tx, KeyAccessToken, access); err != nil {
			return err
		}
		if refresh == "" {
			return r.delete(tx, KeyRefreshToken)
		}
		return r.upsert(tx, KeyRefreshToken, refresh)
	})
}

// Delete removes key. Deleting a missing key is not an error.
func (r *TokenRepository) Delete(key string) error {
	return withTx(r.db, func(tx *sql.Tx) error {
		return r.delete(tx, key)
	})
}

// Clear removes both tokens.
func (r *TokenRepository) Clear() error {
	return withTx(r.db, func(tx *sql.Tx) error {
		if err := r.delete(tx, KeyAccessToken); err != nil {
			return err
		}
		return r.delete(tx, KeyRefreshToken)
	})
}

// UpdatedAt returns when key was last written.
func (r *TokenRepository) UpdatedAt(key string) (time.Time, bool, error) {
	var at time.Time
	err := r.db.QueryRow(`SELECT updated_at FROM session_tokens WHERE key = ?`, key).Scan(&at)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to query token %s: %w", key, err)
	}
	return at, true, nil
}

func (r *TokenRepository) upsert(tx *sql.Tx, key, value string) error {
	query := `
		INSERT INTO session_tokens (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := tx.Exec(query, key, value, r.now().UTC()); err != nil {
		return fmt.Errorf("failed to store token %s: %w", key, err)
	}
	return nil
}

func (r *TokenRepository) delete(tx *sql.Tx, key string) error {
	if _, err := tx.Exec(`DELETE FROM session_tokens WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete token %s: %w", key, err)
	}
	return nil
}
