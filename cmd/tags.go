package main

import (
	"context"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/acervomestre/acervo/internal/tasks"
)

// TagsList lists the tag taxonomy.
func (r *Runner) TagsList(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.client()
	if err != nil {
		return err
	}

	tags, err := catalog.ListTags(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(tags, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Tags")
	for _, t := range tags {
		r.writePlain("%5d  %s\n", t.ID, t.Name)
	}
	return nil
}

// TagsCreate creates a tag unless one with the same name exists.
func (r *Runner) TagsCreate(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireStaff(ctx); err != nil {
		return err
	}

	tags := tasks.NewTags(r.catalog)
	if err := tags.Load(ctx); err != nil {
		return err
	}

	tag, err := tags.Add(ctx, strings.Join(cmd.Args().Slice(), " "))
	if err != nil {
		return err
	}
	return r.writePlain("✓ Tag \"%s\" criada (%d).\n", tag.Name, tag.ID)
}

// TagsDelete deletes a tag after confirmation.
func (r *Runner) TagsDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd, "tag id")
	if err != nil {
		return err
	}
	if _, err := r.requireStaff(ctx); err != nil {
		return err
	}

	if err := tasks.NewTags(r.catalog).Remove(ctx, id, r.confirmer(cmd)); err != nil {
		return err
	}
	return r.writePlain("✓ Tag excluída.\n")
}
