// Package session holds the authentication state of the client: the durable bearer token,
// the current user profile and the login and logout transitions.
//
// A [Session] is an [oauth2.TokenSource], so it plugs directly into the API client: every
// request asks the session for a token and sends the bearer header when one is stored.
// There is no refresh exchange and no client-side expiry check. An expired token is
// discovered when the backend answers 401.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/acervomestre/acervo/internal/models"
	"github.com/acervomestre/acervo/internal/repositories"
	"github.com/acervomestre/acervo/internal/shared"
	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// TokenStore is the durable storage of the token pair. [repositories.TokenRepository]
// implements it.
type TokenStore interface {
	Get(key string) (string, bool, error)
	SetPair(access, refresh string) error
	Clear() error
}

// Backend is the subset of the catalog the session talks to.
type Backend interface {
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
	Me(ctx context.Context) (*models.User, error)
}

// Session is safe for concurrent use.
type Session struct {
	mu      sync.RWMutex
	store   TokenStore
	logger  *log.Logger
	access  string
	refresh string
	user    *models.User
}

// Open restores a session from store. A stored access token makes the session authenticated.
func Open(store TokenStore, logger *log.Logger) (*Session, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Session{store: store, logger: logger}

	access, _, err := store.Get(repositories.KeyAccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	refresh, _, err := store.Get(repositories.KeyRefreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	s.access, s.refresh = access, refresh
	return s, nil
}

// Token implements [oauth2.TokenSource].
func (s *Session) Token() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.access == "" {
		return nil, shared.ErrNotAuthenticated
	}
	return &oauth2.Token{AccessToken: s.access, RefreshToken: s.refresh, TokenType: "Bearer"}, nil
}

// Authenticated reports whether an access token is stored.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.access != ""
}

// User returns a copy of the loaded profile, or nil before [Session.LoadProfile] succeeds.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// SetUser replaces the cached profile, e.g. after a profile edit.
func (s *Session) SetUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &u
}

// Staff reports whether the current user may use the admin and tag management flows.
func (s *Session) Staff() bool {
	u := s.User()
	return u != nil && (u.Role == models.RoleManager || u.Role == models.RoleCoordinator)
}

// LoadProfile fetches the current user. Failures are logged and returned but never clear
// the stored tokens.
func (s *Session) LoadProfile(ctx context.Context, b Backend) (*models.User, error) {
	if !s.Authenticated() {
		return nil, shared.ErrNotAuthenticated
	}

	u, err := b.Me(ctx)
	if err != nil {
		s.logger.Warn("failed to load profile", "error", err)
		return nil, err
	}

	s.SetUser(*u)
	return s.User(), nil
}

// Login exchanges credentials for a token pair, persists it and loads the profile. A profile
// failure after a successful login is logged and yields a nil user with a nil error; the
// session stays authenticated.
func (s *Session) Login(ctx context.Context, b Backend, email, password string) (*models.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, shared.NewValidationError("login", "Informe e-mail e senha.", shared.ErrMissingArgument)
	}

	tokens, err := b.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if err := s.store.SetPair(tokens.AccessToken, tokens.RefreshToken); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	s.mu.Lock()
	s.access, s.refresh, s.user = tokens.AccessToken, tokens.RefreshToken, nil
	s.mu.Unlock()

	s.logger.Info("logged in", "email", strings.TrimSpace(email))

	u, _ := s.LoadProfile(ctx, b)
	return u, nil
}

// Logout clears both tokens and the profile.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	s.access, s.refresh, s.user = "", "", nil
	return nil
}

// Claims is what the client can read from the access token without verifying it.
type Claims struct {
	Subject   string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token expiry has passed at now. For display only.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Claims decodes the stored access token without verifying its signature.
func (s *Session) Claims() (Claims, error) {
	s.mu.RLock()
	access := s.access
	s.mu.RUnlock()
	if access == "" {
		return Claims{}, shared.ErrNotAuthenticated
	}

	var tc tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(access, &tc); err != nil {
		return Claims{}, fmt.Errorf("%w: access token is not a JWT: %v", shared.ErrInvalidInput, err)
	}

	c := Claims{Subject: tc.Subject, Role: tc.Role}
	if tc.IssuedAt != nil {
		c.IssuedAt = tc.IssuedAt.Time
	}
	if tc.ExpiresAt != nil {
		c.ExpiresAt = tc.ExpiresAt.Time
	}
	return c, nil
}

// IsExpired reports whether err means the backend rejected the stored token.
func IsExpired(err error) bool {
	return errors.Is(err, shared.ErrNotAuthenticated)
}

var (
	_ oauth2.TokenSource = (*Session)(nil)
	_ TokenStore         = (*repositories.TokenRepository)(nil)
)
