package repositories

import (
	"database/sql"
	"testing"
	"time"

	"github.com/acervomestre/acervo/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestTokenRepository(t *testing.T) {
	t.Run("Get Missing", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTokenRepository(db)
		value, found, err := repo.Get(KeyAccessToken)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if found || value != "" {
			t.Errorf("expected missing key, got %q", value)
		}
	})

	t.Run("Set And Get", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTokenRepository(db)
		if err := repo.Set(KeyAccessToken, "abc"); err != nil {
			t.Fatalf("failed to set token: %v", err)
		}

		value, found, err := repo.Get(KeyAccessToken)
		if err != nil || !found || value != "abc" {
			t.Errorf("expected abc, got %q found=%v err=%v", value, found, err)
		}
	})

	t.Run("Set Replaces", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTokenRepository(db)
		first := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
		repo.now = func() time.Time { return first }
		repo.Set(KeyAccessToken, "old")

		second := first.Add(time.Hour)
		repo.now = func() time.Time { return second }
		if err := repo.Set(KeyAccessToken, "new"); err != nil {
			t.Fatalf("failed to replace token: %v", err)
		}

		value, _, _ := repo.Get(KeyAccessToken)
		if value != "new" {
			t.Errorf("expected new, got %q", value)
		}

		at, found, err := repo.UpdatedAt(KeyAccessToken)
		if err != nil || !found {
			t.Fatalf("expected timestamp, got found=%v err=%v", found, err)
		}
		if !at.Equal(second) {
			t.Errorf("expected updated_at %v, got %v", second, at)
		}

		var count int
		db.QueryRow("SELECT COUNT(*) FROM session_tokens").Scan(&count)
		if count != 1 {
			t.Errorf("expected one row, got %d", count)
		}
	})

	t.Run("SetPair", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTokenRepository(db)
		if err := repo.SetPair("access", "refresh"); err != nil {
			t.Fatalf("failed to set pair: %v", err)
		}

		access, _, _ := repo.Get(KeyAccessToken)
		refresh, _, _ := repo.Get(KeyRefreshToken)
		if access != "access" || refresh != "refresh" {
			t.Errorf("unexpected pair %q %q", access, refresh)
		}

		t.Run("Empty Refresh Removes Stale Value", func(t *testing.T) {
			if err := repo.SetPair("access2", ""); err != nil {
				t.Fatalf("failed to set pair: %v", err)
			}
			if _, found, _ := repo.Get(KeyRefreshToken); found {
				t.Error("expected refresh token to be removed")
			}
		})
	})

	t.Run("Delete And Clear", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewTokenRepository(db)
		repo.SetPair("a", "r")

		if err := repo.Delete(KeyRefreshToken); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if err := repo.Delete("missing"); err != nil {
			t.Errorf("expected deleting a missing key to succeed, got %v", err)
		}
		if err := repo.Clear(); err != nil {
			t.Fatalf("failed to clear: %v", err)
		}
		if _, found, _ := repo.Get(KeyAccessToken); found {
			t.Error("expected access token cleared")
		}
	})

	t.Run("Closed Database", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewTokenRepository(db)
		db.Close()

		if _, _, err := repo.Get(KeyAccessToken); err == nil {
			t.Error("expected error on closed database")
		}
		if err := repo.Set(KeyAccessToken, "x"); err == nil {
			t.Error("expected error on closed database")
		}
	})

	t.Run("Persists Across Connections", func(t *testing.T) {
		path := t.TempDir() + "/session.db"
		db, err := shared.OpenSessionDatabase(path, shared.DatabaseConfig{MaxOpenConns: 1, MaxIdleConns: 1})
		if err != nil {
			t.Fatalf("failed to open: %v", err)
		}
		NewTokenRepository(db).SetPair("a", "r")
		db.Close()

		db, err = shared.OpenSessionDatabase(path, shared.DatabaseConfig{})
		if err != nil {
			t.Fatalf("failed to reopen: %v", err)
		}
		defer db.Close()

		value, found, _ := NewTokenRepository(db).Get(KeyAccessToken)
		if !found || value != "a" {
			t.Errorf("expected persisted token, got %q", value)
		}
	})
}
