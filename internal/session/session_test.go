package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/acervomestre/acervo/internal/models"
	"github.com/acervomestre/acervo/internal/repositories"
	"github.com/acervomestre/acervo/internal/shared"
	"github.com/golang-jwt/jwt/v5"
)

type fakeBackend struct {
	tokens   *models.TokenPair
	loginErr error
	user     *models.User
	meErr    error
	meCalls  int
}

func (f *fakeBackend) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	return f.tokens, f.loginErr
}

func (f *fakeBackend) Me(ctx context.Context) (*models.User, error) {
	f.meCalls++
	return f.user, f.meErr
}

func newRepo(t *testing.T) *repositories.TokenRepository {
	t.Helper()
	db, err := shared.OpenSessionDatabase(":memory:", shared.DatabaseConfig{})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return repositories.NewTokenRepository(db)
}

func signed(t *testing.T, sub, role string, exp time.Time) string {
	t.Helper()
	claims := tokenClaims{Role: role, RegisteredClaims: jwt.RegisteredClaims{
		Subject:   sub,
		IssuedAt:  jwt.NewNumericDate(exp.Add(-time.Hour)),
		ExpiresAt: jwt.NewNumericDate(exp),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("whatever"))
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Open Empty", func(t *testing.T) {
		s, err := Open(newRepo(t), nil)
		if err != nil {
			t.Fatal(err)
		}
		if s.Authenticated() {
			t.Error("expected unauthenticated session")
		}
		if _, err := s.Token(); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Open Restores Tokens", func(t *testing.T) {
		repo := newRepo(t)
		repo.SetPair("stored", "refresh")

		s, err := Open(repo, nil)
		if err != nil {
			t.Fatal(err)
		}
		tok, err := s.Token()
		if err != nil || tok.AccessToken != "stored" || tok.RefreshToken != "refresh" {
			t.Errorf("unexpected token %+v %v", tok, err)
		}
		if tok.Type() != "Bearer" {
			t.Errorf("expected Bearer type, got %s", tok.Type())
		}
	})

	t.Run("Login Persists And Loads Profile", func(t *testing.T) {
		repo := newRepo(t)
		s, _ := Open(repo, nil)
		b := &fakeBackend{
			tokens: &models.TokenPair{AccessToken: "a1", RefreshToken: "r1"},
			user:   &models.User{ID: 4, Name: "Ana", Role: models.RoleManager, Status: models.StatusActive},
		}

		u, err := s.Login(ctx, b, "ana@acervo.dev", "segredo")
		if err != nil {
			t.Fatal(err)
		}
		if u == nil || u.ID != 4 {
			t.Fatalf("unexpected user %+v", u)
		}
		if !s.Staff() {
			t.Error("expected manager to be staff")
		}

		stored, _, _ := repo.Get(repositories.KeyAccessToken)
		refresh, _, _ := repo.Get(repositories.KeyRefreshToken)
		if stored != "a1" || refresh != "r1" {
			t.Errorf("expected persisted pair, got %q %q", stored, refresh)
		}

		reopened, _ := Open(repo, nil)
		if !reopened.Authenticated() {
			t.Error("expected reopened session to be authenticated")
		}
	})

	t.Run("Login Validates Before Network", func(t *testing.T) {
		s, _ := Open(newRepo(t), nil)
		b := &fakeBackend{}
		_, err := s.Login(ctx, b, " ", "x")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		if b.meCalls != 0 {
			t.Error("expected no backend call")
		}
	})

	t.Run("Login Failure Keeps State", func(t *testing.T) {
		repo := newRepo(t)
		repo.SetPair("old", "")
		s, _ := Open(repo, nil)
		b := &fakeBackend{loginErr: shared.ErrAuthFailed}

		if _, err := s.Login(ctx, b, "a@b.co", "x"); !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
		tok, _ := s.Token()
		if tok.AccessToken != "old" {
			t.Errorf("expected previous token kept, got %q", tok.AccessToken)
		}
	})

	t.Run("Profile Failure Keeps Tokens", func(t *testing.T) {
		s, _ := Open(newRepo(t), nil)
		b := &fakeBackend{tokens: &models.TokenPair{AccessToken: "a"}, meErr: shared.ErrNetwork}

		u, err := s.Login(ctx, b, "a@b.co", "x")
		if err != nil || u != nil {
			t.Errorf("expected nil user and nil error, got %+v %v", u, err)
		}
		if !s.Authenticated() {
			t.Error("expected session to stay authenticated")
		}

		if _, err := s.LoadProfile(ctx, b); !errors.Is(err, shared.ErrNetwork) {
			t.Errorf("expected ErrNetwork, got %v", err)
		}
		if !s.Authenticated() {
			t.Error("expected tokens kept after profile failure")
		}
	})

	t.Run("LoadProfile Requires Token", func(t *testing.T) {
		s, _ := Open(newRepo(t), nil)
		b := &fakeBackend{user: &models.User{ID: 1}}
		if _, err := s.LoadProfile(ctx, b); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if b.meCalls != 0 {
			t.Error("expected no backend call without a token")
		}
	})

	t.Run("Logout", func(t *testing.T) {
		repo := newRepo(t)
		s, _ := Open(repo, nil)
		s.Login(ctx, &fakeBackend{tokens: &models.TokenPair{AccessToken: "a", RefreshToken: "r"}, user: &models.User{ID: 1}}, "a@b.co", "x")

		if err := s.Logout(); err != nil {
			t.Fatal(err)
		}
		if s.Authenticated() || s.User() != nil {
			t.Error("expected cleared session")
		}
		if _, found, _ := repo.Get(repositories.KeyRefreshToken); found {
			t.Error("expected refresh token removed")
		}
	})

	t.Run("User Returns Copy", func(t *testing.T) {
		s, _ := Open(newRepo(t), nil)
		s.SetUser(models.User{ID: 1, Name: "Ana"})
		u := s.User()
		u.Name = "Outra"
		if s.User().Name != "Ana" {
			t.Error("expected User to return a copy")
		}
	})
}

func TestClaims(t *testing.T) {
	t.Run("Decodes Without Verification", func(t *testing.T) {
		repo := newRepo(t)
		exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
		repo.SetPair(signed(t, "12", models.RoleTeacher, exp), "")
		s, _ := Open(repo, nil)

		c, err := s.Claims()
		if err != nil {
			t.Fatal(err)
		}
		if c.Subject != "12" || c.Role != models.RoleTeacher || !c.ExpiresAt.Equal(exp) {
			t.Errorf("unexpected claims %+v", c)
		}
		if c.Expired(exp.Add(-time.Minute)) || !c.Expired(exp.Add(time.Minute)) {
			t.Error("unexpected expiry evaluation")
		}
	})

	t.Run("Opaque Token", func(t *testing.T) {
		repo := newRepo(t)
		repo.SetPair("opaque", "")
		s, _ := Open(repo, nil)
		if _, err := s.Claims(); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("No Token", func(t *testing.T) {
		s, _ := Open(newRepo(t), nil)
		if _, err := s.Claims(); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("IsExpired", func(t *testing.T) {
		if !IsExpired(shared.ErrNotAuthenticated) || IsExpired(shared.ErrNetwork) {
			t.Error("unexpected IsExpired result")
		}
	})
}
