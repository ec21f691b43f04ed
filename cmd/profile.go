package main

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/acervomestre/acervo/internal/models"
	"github.com/acervomestre/acervo/internal/tasks"
)

// ProfileShow lists the signed-in user's resources and playlists.
func (r *Runner) ProfileShow(ctx context.Context, cmd *cli.Command) error {
	u, err := r.requireUser(ctx)
	if err != nil {
		return err
	}

	profile := tasks.NewProfile(r.catalog, *u)
	if err := profile.Load(ctx); err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(profile, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("%s · %s", u.Name, u.Role))
	r.writePlain("Minhas playlists (%d)\n", len(profile.Playlists))
	for _, p := range profile.Playlists {
		r.writePlain("  pl-%-5d %s (%d recursos)\n", p.ID, p.Title, p.Count())
	}
	r.writePlain("\nMeus recursos (%d)\n", len(profile.Resources))
	for _, res := range profile.Resources {
		r.writePlain("  res-%-4d %-10s %s\n", res.ID, models.Classify(res.Structure, res.MimeType).Label, res.Title)
	}
	return nil
}

// ProfileUpdate changes the user's name, e-mail or picture. Omitted flags keep current values.
func (r *Runner) ProfileUpdate(ctx context.Context, cmd *cli.Command) error {
	u, err := r.requireUser(ctx)
	if err != nil {
		return err
	}

	form := models.UserForm{
		Name:  cmp.Or(cmd.String("name"), u.Name),
		Email: cmp.Or(cmd.String("email"), u.Email),
	}

	var image io.Reader
	var imageName string
	if path := cmd.String("image"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open image: %w", err)
		}
		defer f.Close()
		image, imageName = f, filepath.Base(path)
	}

	profile := tasks.NewProfile(r.catalog, *u)
	updated, err := profile.Save(ctx, form, imageName, image)
	if updated != nil {
		r.session.SetUser(*updated)
	}
	if err != nil {
		return err
	}
	return r.writePlain("✓ Perfil atualizado: %s <%s>\n", updated.Name, updated.Email)
}
