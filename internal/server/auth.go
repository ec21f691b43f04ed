package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/acervomestre/acervo/internal/models"
	"github.com/acervomestre/acervo/internal/shared"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const userKey contextKey = "sandbox_user"

// Claims are the access token claims issued by the sandbox.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 access tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an [Issuer]. A zero ttl defaults to one hour.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed access token for u and an opaque refresh token.
func (i *Issuer) Issue(u models.User) (models.TokenPair, error) {
	now := i.now()
	claims := Claims{
		Role: u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(u.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			ID:        shared.GenerateID(),
			Issuer:    "acervo-sandbox",
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return models.TokenPair{AccessToken: signed, RefreshToken: shared.GenerateID(), TokenType: "bearer"}, nil
}

// Verify parses and validates a signed access token.
func (i *Issuer) Verify(token string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired(), jwt.WithTimeFunc(i.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, shared.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
	}
	return &claims, nil
}

// Authenticate is the bearer middleware. It resolves the token subject to a stored, active user.
func (s *Sandbox) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		claims, err := s.issuer.Verify(token)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		id, err := strconv.Atoi(claims.Subject)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		u, ok := s.store.User(id)
		if !ok || u.Status != models.StatusActive {
			writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
	})
}

// RequireStaff rejects users that are neither Gestor nor Coordenador.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isStaff(currentUser(r)) {
			writeDetail(w, http.StatusForbidden, "Acesso restrito a gestores e coordenadores")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func currentUser(r *http.Request) models.User {
	u, _ := r.Context().Value(userKey).(models.User)
	return u
}
