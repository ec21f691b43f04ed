package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/acervomestre/acervo/internal/models"
	"github.com/acervomestre/acervo/internal/shared"
	"github.com/acervomestre/acervo/internal/tasks"
)

// AuthLogin exchanges e-mail and password for a token pair and stores it.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	s, err := r.connect()
	if err != nil {
		return err
	}

	email := cmd.String("email")
	password := r.secret(cmd, "password", "Senha")

	r.logger.Info("logging in", "email", email, "backend", r.api.BaseURL())

	u, err := s.Login(ctx, r.catalog, email, password)
	if err != nil {
		return err
	}

	r.writePlain("✓ Login realizado com sucesso\n")
	if u == nil {
		r.logger.Warn("signed in but the profile could not be loaded")
		return nil
	}
	return r.writePlain("Bem-vindo(a), %s (%s)\n", u.Name, u.Role)
}

// AuthLogout clears the stored tokens.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	s, err := r.connect()
	if err != nil {
		return err
	}
	if err := s.Logout(); err != nil {
		return err
	}
	return r.writePlain("✓ Sessão encerrada\n")
}

type whoami struct {
	User      *models.User `json:"user"`
	Subject   string       `json:"subject,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
	Expired   bool         `json:"expired"`
}

// AuthWhoami prints the signed-in user and what the stored token claims.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	u, err := r.requireUser(ctx)
	if err != nil {
		return err
	}

	out := whoami{User: u}
	claims, err := r.session.Claims()
	if err != nil {
		r.logger.Debug("token claims unavailable", "error", err)
	} else {
		out.Subject = claims.Subject
		out.Expired = claims.Expired(time.Now())
		if !claims.ExpiresAt.IsZero() {
			out.ExpiresAt = &claims.ExpiresAt
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(out, cmd.Bool("pretty"))
	}

	r.writePlainHeader(u.Name)
	r.writePlain("E-mail: %s\n", u.Email)
	r.writePlain("Perfil: %s\n", u.Role)
	r.writePlain("Status: %s\n", u.Status)
	if r.session.Staff() {
		r.writePlain("Acesso: gestão de usuários e tags\n")
	}
	if out.ExpiresAt != nil {
		state := "válido"
		if out.Expired {
			state = "expirado"
		}
		r.writePlain("Token: %s até %s\n", state, out.ExpiresAt.Local().Format(time.DateTime))
	}
	return nil
}

func (r *Runner) passwordForm(cmd *cli.Command) models.PasswordForm {
	return models.PasswordForm{
		Password: r.secret(cmd, "password", "Nova senha"),
		Confirm:  r.secret(cmd, "confirm", "Confirme a senha"),
	}
}

// AuthActivate sets the first password of an invited account.
func (r *Runner) AuthActivate(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.client()
	if err != nil {
		return err
	}
	if err := tasks.ActivateAccount(ctx, catalog, cmd.String("token"), r.passwordForm(cmd)); err != nil {
		return err
	}
	return r.writePlain("✓ Conta ativada. Faça login com 'acervo auth login'.\n")
}

// AuthForgot asks the backend to send a password reset e-mail.
func (r *Runner) AuthForgot(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.client()
	if err != nil {
		return err
	}
	if err := tasks.ForgotPassword(ctx, catalog, cmd.String("email")); err != nil {
		return err
	}
	return r.writePlain("✓ Se o e-mail estiver cadastrado, você receberá um link de redefinição.\n")
}

// AuthReset sets a new password with a reset token.
func (r *Runner) AuthReset(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.client()
	if err != nil {
		return err
	}
	err = tasks.ResetPassword(ctx, catalog, cmd.String("token"), r.passwordForm(cmd))
	if errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("%w: reset token is invalid or expired", err)
	}
	if err != nil {
		return err
	}
	return r.writePlain("✓ Senha redefinida com sucesso.\n")
}
