package main

import (
	"cmp"
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/acervomestre/acervo/internal/server"
)

// Sandbox serves a seeded in-memory backend until interrupted.
func (r *Runner) Sandbox(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Sandbox
	host := cmp.Or(cmd.String("host"), cfg.Host)
	port := cmp.Or(cmd.Int("port"), cfg.Port)
	seed := cmp.Or(cmd.Int("seed"), cfg.Seed)

	store := server.NewStore(0)
	if err := server.Seed(store, cmd.Int("resources"), int64(seed)); err != nil {
		return fmt.Errorf("failed to seed sandbox: %w", err)
	}

	sandbox := server.New(server.Options{
		Secret: cfg.Secret,
		Logger: r.logger,
		Store:  store,
	})

	addr := net.JoinHostPort(host, strconv.Itoa(port))
	r.writePlainHeader("Acervo sandbox")
	r.writePlain("Listening on http://%s\n\n", addr)
	r.writePlain("Gestor:    %s / %s\n", server.AdminEmail, server.AdminPassword)
	r.writePlain("Professor: %s / %s\n", server.TeacherEmail, server.TeacherPassword)
	if token := store.ActivationToken(server.PendingEmail); token != "" {
		r.writePlain("Pendente:  %s (acervo auth activate --token %s)\n", server.PendingEmail, token)
	}
	r.writePlain("\nPoint [api] base_url at http://%s and press Ctrl+C to stop.\n", addr)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return sandbox.ListenAndServe(ctx, addr)
}
