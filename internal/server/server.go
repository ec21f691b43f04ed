package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Options configures a [Sandbox].
type Options struct {
	Secret   string
	TokenTTL time.Duration
	Logger   *log.Logger
	Store    *Store // nil creates an empty store
}

// Sandbox serves the REST routes of the catalog backend from a [Store].
type Sandbox struct {
	store  *Store
	issuer *Issuer
	logger *log.Logger
	router chi.Router
}

// New builds a sandbox and its router.
func New(opts Options) *Sandbox {
	if opts.Store == nil {
		opts.Store = NewStore(0)
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Secret == "" {
		opts.Secret = "acervo-sandbox-secret"
	}

	s := &Sandbox{
		store:  opts.Store,
		issuer: NewIssuer(opts.Secret, opts.TokenTTL),
		logger: opts.Logger,
	}
	s.router = s.routes()
	return s
}

// Store returns the backing store.
func (s *Sandbox) Store() *Store { return s.store }

// Issuer returns the token issuer.
func (s *Sandbox) Issuer() *Issuer { return s.issuer }

// ServeHTTP implements [http.Handler].
func (s *Sandbox) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Sandbox) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.login)
		r.Post("/activate_account", s.activateAccount)
		r.Post("/forgot_password", s.forgotPassword)
		r.Post("/reset_password", s.resetPassword)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.Authenticate)

		r.Route("/users", func(r chi.Router) {
			r.Get("/me", s.me)
			r.Get("/get/{id}", s.getUser)
			r.Patch("/patch/{id}", s.patchUser)
			r.Put("/{id}/image", s.putUserImage)

			r.Group(func(r chi.Router) {
				r.Use(RequireStaff)
				r.Get("/get_all", s.listUsers)
				r.Post("/create", s.createUser)
				r.Patch("/restore/{id}", s.restoreUser)
				r.Delete("/delete/{id}", s.deleteUser)
			})
		})

		r.Route("/recursos", func(r chi.Router) {
			r.Get("/get_all", s.listResources)
			r.Get("/get/{id}", s.getResource)
			r.Post("/create", s.createResource)
			r.Post("/{id}/like", s.likeResource)
			r.Delete("/delete/{id}", s.deleteResource)
		})

		r.Route("/playlists", func(r chi.Router) {
			r.Get("/get_all", s.listPlaylists)
			r.Get("/get/{id}", s.getPlaylist)
			r.Post("/create", s.createPlaylist)
			r.Put("/update/{id}", s.updatePlaylist)
			r.Put("/update/{id}/reordenar", s.reorderPlaylist)
			r.Post("/add_recurso/{id}", s.addResource)
			r.Delete("/delete_recurso/{id}/{recursoID}", s.removeResource)
			r.Delete("/delete/{id}", s.deletePlaylist)
		})

		r.Route("/tags", func(r chi.Router) {
			r.Get("/get_all", s.listTags)
			r.With(RequireStaff).Post("/create", s.createTag)
			r.With(RequireStaff).Delete("/delete/{id}", s.deleteTag)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	return r
}

func (s *Sandbox) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("sandbox request", "method", r.Method, "path", r.URL.Path, "status", ww.Status(), "elapsed", time.Since(start))
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Sandbox) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("sandbox listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("sandbox server: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("sandbox shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("sandbox shutdown: %w", err)
	}
	return nil
}
