package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/acervomestre/acervo/internal/models"
	"github.com/acervomestre/acervo/internal/services"
	"github.com/acervomestre/acervo/internal/shared"
	"github.com/acervomestre/acervo/internal/tasks"
)

func listOptions(cmd *cli.Command) services.ListOptions {
	return services.ListOptions{Page: cmd.Int("page"), PerPage: cmd.Int("per-page")}
}

func (r *Runner) writeCards(cards []models.Card) {
	if len(cards) == 0 {
		r.writePlain("Nenhum recurso encontrado.\n")
		return
	}
	for _, c := range cards {
		r.writePlain("%-8s %-10s %s\n", c.ID, c.Descriptor.Label, c.Title)
		r.writePlain("         %s · %s · ♥ %d  👁 %d  ↓ %d\n", c.Author, c.Subject, c.Likes, c.Views, c.Downloads)
	}
}

// ResourcesList lists one page of resources.
func (r *Runner) ResourcesList(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.client()
	if err != nil {
		return err
	}

	resources, err := catalog.ListResources(ctx, listOptions(cmd))
	if err != nil {
		return err
	}
	r.logger.Debug("listed resources", "count", len(resources))

	if cmd.Bool("json") {
		return r.writeJSON(resources, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Recursos (%d)", len(resources)))
	r.writeCards(models.ResourceCards(resources))
	return nil
}

// ResourcesSearch filters the listing by query, or by tag with --tag.
func (r *Runner) ResourcesSearch(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.client()
	if err != nil {
		return err
	}

	query := strings.Join(cmd.Args().Slice(), " ")
	tag := cmd.String("tag")
	if strings.TrimSpace(query) == "" && tag == "" {
		return fmt.Errorf("%w: query or --tag", shared.ErrMissingArgument)
	}

	browser := tasks.NewBrowser(catalog, tasks.BrowserOptions{
		PageSize: r.config.API.PageSize,
		Logger:   r.logger,
	})
	if tag != "" {
		browser.SelectTag(tag)
	} else {
		browser.SetQuery(query)
	}
	if err := browser.Load(ctx); err != nil {
		return err
	}

	cards := browser.Cards(tasks.SectionResults)
	if cmd.Bool("json") {
		return r.writeJSON(cards, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Resultados para %q (%d)", browser.Query, len(cards)))
	r.writeCards(cards)
	return nil
}

// ResourcesShow prints one resource.
func (r *Runner) ResourcesShow(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd, "resource id")
	if err != nil {
		return err
	}
	catalog, err := r.client()
	if err != nil {
		return err
	}

	res, err := catalog.GetResource(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(res, cmd.Bool("pretty"))
	}

	card := models.ResourceCard(*res)
	r.writePlainHeader(res.Title)
	r.writePlain("Tipo: %s\n", card.Descriptor.LongLabel)
	r.writePlain("Autor: %s\n", card.Author)
	r.writePlain("Visibilidade: %s\n", card.Visibility)
	if len(card.Tags) > 0 {
		r.writePlain("Tags: %s\n", strings.Join(card.Tags, ", "))
	}
	r.writePlain("♥ %d curtidas · %d visualizações · %d downloads\n", res.Likes, res.Views, res.Downloads)
	if res.Description != "" {
		r.writePlainln("%s", res.Description)
	}
	if link := res.Link(); link != "" {
		r.writePlain("\nLink: %s\n", link)
	}
	if res.Structure == models.StructureNote && res.Content != "" {
		r.writePlainln("%s", res.Content)
	}
	return nil
}

// ResourcesCreate submits a resource in upload, url or note mode.
func (r *Runner) ResourcesCreate(ctx context.Context, cmd *cli.Command) error {
	mode, err := models.ParseStructure(cmd.String("type"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	tagIDs, err := models.ParseIDs(cmd.StringSlice("tag"))
	if err != nil {
		return err
	}

	form := models.ResourceForm{
		Mode:        mode,
		Title:       cmd.String("title"),
		Description: cmd.String("description"),
		Visibility:  models.VisibilityPublic,
		Featured:    cmd.Bool("featured"),
		TagIDs:      tagIDs,
		URL:         cmd.String("url"),
		Content:     cmd.String("content"),
	}
	if cmd.Bool("private") {
		form.Visibility = models.VisibilityPrivate
	}

	if path, ok := strings.CutPrefix(form.Content, "@"); ok {
		data, err := shared.VerifyAndReadFile(path)
		if err != nil {
			return err
		}
		form.Content = string(data)
	}

	if path := cmd.String("file"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open file: %w", err)
		}
		defer f.Close()
		form.File = f
		form.FileName = filepath.Base(path)
	}

	if _, err := r.requireUser(ctx); err != nil {
		return err
	}

	res, err := tasks.SubmitResource(ctx, r.catalog, form)
	if err != nil {
		return err
	}

	r.logger.Info("resource created", "id", res.ID, "structure", res.Structure)
	return r.writePlain("✓ Recurso criado: %s (res-%d)\n", res.Title, res.ID)
}

// ResourcesLike likes a resource once.
func (r *Runner) ResourcesLike(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd, "resource id")
	if err != nil {
		return err
	}
	catalog, err := r.client()
	if err != nil {
		return err
	}

	res, err := catalog.GetResource(ctx, id)
	if err != nil {
		return err
	}

	like := tasks.NewLike(*res)
	if err := like.Do(ctx, catalog); err != nil {
		return err
	}
	return r.writePlain("♥ %s agora tem %d curtidas\n", res.Title, like.Likes)
}

// ResourcesDelete deletes a resource after confirmation.
func (r *Runner) ResourcesDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd, "resource id")
	if err != nil {
		return err
	}
	if _, err := r.requireUser(ctx); err != nil {
		return err
	}

	res, err := r.catalog.GetResource(ctx, id)
	if err != nil {
		return err
	}

	if confirm := r.confirmer(cmd); confirm != nil && !confirm(fmt.Sprintf("Tem certeza que deseja excluir o recurso \"%s\"?", res.Title)) {
		return shared.ErrCancelled
	}

	if err := r.catalog.DeleteResource(ctx, id); err != nil {
		return err
	}
	return r.writePlain("✓ Recurso removido.\n")
}

// ResourcesOpen opens the link of a resource in the default browser.
func (r *Runner) ResourcesOpen(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd, "resource id")
	if err != nil {
		return err
	}
	catalog, err := r.client()
	if err != nil {
		return err
	}

	res, err := catalog.GetResource(ctx, id)
	if err != nil {
		return err
	}

	link := res.Link()
	if link == "" {
		return fmt.Errorf("%w: resource %d has no link", shared.ErrInvalidArgument, id)
	}
	r.logger.Info("opening resource", "id", id, "url", link)
	return shared.OpenLink(r.api.BaseURL(), link)
}

// ResourcesExport writes one page of resources to a JSON file.
func (r *Runner) ResourcesExport(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.client()
	if err != nil {
		return err
	}

	resources, err := catalog.ListResources(ctx, listOptions(cmd))
	if err != nil {
		return err
	}

	data, err := shared.MarshalJSON(resources, true)
	if err != nil {
		return fmt.Errorf("failed to marshal resources: %w", err)
	}

	path := cmd.String("output")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}

	r.logger.Info("resources exported", "count", len(resources), "file", path)
	return r.writePlain("✓ %d recursos exportados para %s\n", len(resources), path)
}
