package main

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/acervomestre/acervo/internal/models"
	"github.com/acervomestre/acervo/internal/shared"
	"github.com/acervomestre/acervo/internal/tasks"
)

func userForm(cmd *cli.Command) models.UserForm {
	form := models.UserForm{
		Name:      cmd.String("name"),
		Email:     cmd.String("email"),
		Role:      cmd.String("role"),
		BirthDate: cmd.String("birth-date"),
	}
	if cmd.IsSet("password") {
		form.Password = cmd.String("password")
	}
	return form
}

// UsersList lists every account, filtered by name or e-mail with --filter.
func (r *Runner) UsersList(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireStaff(ctx); err != nil {
		return err
	}

	users := tasks.NewUsers(r.catalog)
	if err := users.Load(ctx); err != nil {
		return err
	}
	matched := users.Filter(cmd.String("filter"))

	if cmd.Bool("json") {
		return r.writeJSON(matched, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Usuários (%d)", len(matched)))
	for _, u := range matched {
		r.writePlain("%5d  %-28s %-32s %-12s %s\n",
			u.ID, shared.Truncate(u.Name, 28), shared.Truncate(u.Email, 32), u.Role, u.Status)
	}
	return nil
}

// UsersShow prints one account.
func (r *Runner) UsersShow(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd, "user id")
	if err != nil {
		return err
	}
	if _, err := r.requireStaff(ctx); err != nil {
		return err
	}

	u, err := r.catalog.GetUser(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(u, cmd.Bool("pretty"))
	}

	r.writePlainHeader(u.Name)
	r.writePlain("E-mail: %s\n", u.Email)
	r.writePlain("Perfil: %s\n", u.Role)
	r.writePlain("Status: %s\n", u.Status)
	if u.BirthDate != "" {
		r.writePlain("Nascimento: %s\n", u.BirthDate)
	}
	if u.ImageURL != "" {
		r.writePlain("Foto: %s\n", u.ImageURL)
	}
	return nil
}

// UsersCreate creates an account. Without a password the backend sends an activation e-mail.
func (r *Runner) UsersCreate(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireStaff(ctx); err != nil {
		return err
	}

	created, err := tasks.NewUsers(r.catalog).Create(ctx, userForm(cmd))
	if err != nil {
		return err
	}
	return r.writePlain("✓ Usuário criado: %s <%s> (%d)\n", created.Name, created.Email, created.ID)
}

// UsersUpdate edits an account. Omitted flags keep current values.
func (r *Runner) UsersUpdate(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd, "user id")
	if err != nil {
		return err
	}
	if _, err := r.requireStaff(ctx); err != nil {
		return err
	}

	current, err := r.catalog.GetUser(ctx, id)
	if err != nil {
		return err
	}

	form := userForm(cmd)
	form.Name = cmp.Or(form.Name, current.Name)
	form.Email = cmp.Or(form.Email, current.Email)
	form.Role = cmp.Or(form.Role, current.Role)
	form.BirthDate = cmp.Or(form.BirthDate, current.BirthDate)

	updated, err := tasks.NewUsers(r.catalog).Update(ctx, id, form)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Usuário atualizado: %s\n", updated.Name)
}

// UsersToggle deactivates an active account or restores an inactive one.
func (r *Runner) UsersToggle(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd, "user id")
	if err != nil {
		return err
	}
	if _, err := r.requireStaff(ctx); err != nil {
		return err
	}

	u, err := r.catalog.GetUser(ctx, id)
	if err != nil {
		return err
	}

	users := tasks.NewUsers(r.catalog)
	if err := users.ToggleStatus(ctx, *u, r.confirmer(cmd)); err != nil {
		return err
	}

	status := u.Status
	for _, other := range users.All {
		if other.ID == id {
			status = other.Status
		}
	}
	return r.writePlain("✓ %s agora está %s\n", u.Name, status)
}

// UsersImage uploads a profile picture for an account.
func (r *Runner) UsersImage(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd, "user id")
	if err != nil {
		return err
	}
	path := cmd.Args().Get(1)
	if path == "" {
		return fmt.Errorf("%w: image file", shared.ErrMissingArgument)
	}
	if _, err := r.requireStaff(ctx); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	if err := r.catalog.UpdateUserImage(ctx, id, filepath.Base(path), f); err != nil {
		return err
	}
	return r.writePlain("✓ Foto atualizada.\n")
}
