package main

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/acervomestre/acervo/internal/formatter"
	"github.com/acervomestre/acervo/internal/models"
	"github.com/acervomestre/acervo/internal/services"
	"github.com/acervomestre/acervo/internal/shared"
	"github.com/acervomestre/acervo/internal/tasks"
)

// PlaylistsList lists playlists, only the user's own with --mine.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.client()
	if err != nil {
		return err
	}

	opts := listOptions(cmd)
	if cmd.Bool("mine") {
		u, err := r.requireUser(ctx)
		if err != nil {
			return err
		}
		opts.AuthorID = u.ID
		opts.NoCache = true
	}

	playlists, err := catalog.ListPlaylists(ctx, opts)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Playlists (%d)", len(playlists)))
	if len(playlists) == 0 {
		return r.writePlain("Nenhuma playlist encontrada.\n")
	}
	for _, c := range models.PlaylistCards(playlists) {
		r.writePlain("%-7s %s\n", c.ID, c.Title)
		r.writePlain("        %s · %d recursos · %s\n", c.Author, c.ResourceCount, c.Visibility)
	}
	return nil
}

// PlaylistsShow prints a playlist with its items in order.
func (r *Runner) PlaylistsShow(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd, "playlist id")
	if err != nil {
		return err
	}
	catalog, err := r.client()
	if err != nil {
		return err
	}

	p, err := catalog.GetPlaylist(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		p.Items = formatter.OrderedItems(p)
		return r.writeJSON(p, cmd.Bool("pretty"))
	}

	text, err := formatter.ExportToText(p)
	if err != nil {
		return err
	}
	return r.writePlain("%s", text)
}

func playlistForm(cmd *cli.Command) models.PlaylistForm {
	return models.PlaylistForm{Title: cmd.String("title"), Description: cmd.String("description")}
}

// PlaylistsCreate creates a playlist owned by the signed-in user.
func (r *Runner) PlaylistsCreate(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.requireUser(ctx); err != nil {
		return err
	}

	p, err := tasks.SubmitPlaylist(ctx, r.catalog, 0, playlistForm(cmd))
	if err != nil {
		return err
	}
	return r.writePlain("✓ Playlist criada: %s (pl-%d)\n", p.Title, p.ID)
}

// PlaylistsUpdate edits a playlist. Omitted flags keep current values.
func (r *Runner) PlaylistsUpdate(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd, "playlist id")
	if err != nil {
		return err
	}
	if _, err := r.requireUser(ctx); err != nil {
		return err
	}

	current, err := r.catalog.GetPlaylist(ctx, id)
	if err != nil {
		return err
	}

	form := playlistForm(cmd)
	form.Title = cmp.Or(form.Title, current.Title)
	form.Description = cmp.Or(form.Description, current.Description)

	p, err := tasks.SubmitPlaylist(ctx, r.catalog, id, form)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Playlist atualizada: %s\n", p.Title)
}

// PlaylistsDelete deletes a playlist after confirmation.
func (r *Runner) PlaylistsDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID(cmd, "playlist id")
	if err != nil {
		return err
	}
	u, err := r.requireUser(ctx)
	if err != nil {
		return err
	}

	p, err := r.catalog.GetPlaylist(ctx, id)
	if err != nil {
		return err
	}

	profile := tasks.NewProfile(r.catalog, *u)
	if err := profile.DeletePlaylist(ctx, *p, r.confirmer(cmd)); err != nil {
		return err
	}
	return r.writePlain("✓ Playlist removida com sucesso!\n")
}

func (r *Runner) pairIDs(cmd *cli.Command) (int, int, error) {
	if cmd.Args().Len() < 2 {
		return 0, 0, fmt.Errorf("%w: playlist id and resource id", shared.ErrMissingArgument)
	}
	ids, err := models.ParseIDs(cmd.Args().Slice()[:2])
	if err != nil {
		return 0, 0, err
	}
	return ids[0], ids[1], nil
}

// PlaylistsAdd appends a resource to a playlist.
func (r *Runner) PlaylistsAdd(ctx context.Context, cmd *cli.Command) error {
	playlistID, resourceID, err := r.pairIDs(cmd)
	if err != nil {
		return err
	}
	if _, err := r.requireUser(ctx); err != nil {
		return err
	}

	if err := tasks.AddToPlaylist(ctx, r.catalog, playlistID, resourceID); err != nil {
		return err
	}
	return r.writePlain("✓ Recurso adicionado à playlist!\n")
}

// PlaylistsRemove takes a resource out of a playlist after confirmation.
func (r *Runner) PlaylistsRemove(ctx context.Context, cmd *cli.Command) error {
	playlistID, resourceID, err := r.pairIDs(cmd)
	if err != nil {
		return err
	}
	if _, err := r.requireUser(ctx); err != nil {
		return err
	}

	reorder := tasks.NewReorder(r.catalog, playlistID)
	if err := reorder.Load(ctx); err != nil {
		return err
	}

	title := fmt.Sprintf("res-%d", resourceID)
	for _, item := range reorder.Items {
		if item.Resource.ID == resourceID {
			title = item.Resource.Title
		}
	}
	if confirm := r.confirmer(cmd); confirm != nil && !confirm(fmt.Sprintf("Remover \"%s\" desta playlist?", title)) {
		return shared.ErrCancelled
	}

	if err := reorder.Remove(ctx, resourceID); err != nil {
		return err
	}
	return r.writePlain("✓ Recurso removido da playlist com sucesso! (%d restantes)\n", len(reorder.Items))
}

// PlaylistsReorder stores a new item order. The ids must be a permutation of the current items.
func (r *Runner) PlaylistsReorder(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args().Slice()
	if len(args) < 2 {
		return fmt.Errorf("%w: playlist id and the resource ids in order", shared.ErrMissingArgument)
	}
	ids, err := models.ParseIDs(args)
	if err != nil {
		return err
	}
	playlistID, order := ids[0], ids[1:]

	if _, err := r.requireUser(ctx); err != nil {
		return err
	}

	reorder := tasks.NewReorder(r.catalog, playlistID)
	if err := reorder.Load(ctx); err != nil {
		return err
	}

	current := slices.Sorted(slices.Values(reorder.Order()))
	wanted := slices.Sorted(slices.Values(order))
	if !slices.Equal(current, wanted) {
		return fmt.Errorf("%w: expected every resource of the playlist once, got %v for %v",
			shared.ErrInvalidArgument, order, reorder.Order())
	}

	p, err := tasks.SaveOrder(ctx, r.catalog, playlistID, order)
	if err != nil {
		return err
	}
	reorder.EndSave(p)

	r.writePlain("✓ Nova ordem salva com sucesso!\n")
	for i, item := range reorder.Items {
		r.writePlain("%3d. %s\n", i+1, item.Resource.Title)
	}
	return nil
}

// PlaylistsExport writes playlists to disk with a manifest. Without ids it exports --mine.
func (r *Runner) PlaylistsExport(ctx context.Context, cmd *cli.Command) error {
	catalog, err := r.client()
	if err != nil {
		return err
	}

	ids, err := models.ParseIDs(cmd.Args().Slice())
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		if !cmd.Bool("mine") {
			return fmt.Errorf("%w: playlist ids or --mine", shared.ErrMissingArgument)
		}
		u, err := r.requireUser(ctx)
		if err != nil {
			return err
		}
		mine, err := catalog.ListPlaylists(ctx, services.ListOptions{AuthorID: u.ID, NoCache: true})
		if err != nil {
			return err
		}
		for _, p := range mine {
			ids = append(ids, p.ID)
		}
		if len(ids) == 0 {
			return r.writePlain("Você ainda não tem playlists.\n")
		}
	}

	opts := tasks.BulkExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("output"),
		NumWorkers: cmp.Or(cmd.Int("workers"), r.config.Export.Workers),
		RateLimit:  cmp.Or(cmd.Float("rate"), r.config.Export.RateLimit),
	}

	r.logger.Info("starting bulk export", "playlists", len(ids), "format", opts.Format)
	start := time.Now()

	progress := make(chan tasks.ProgressUpdate, 16)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for update := range progress {
			r.logger.Debug("export progress", "phase", update.Phase, "step", update.Step, "total", update.Total)
			r.writePlain("[%s %d/%d] %s\n", update.Phase, update.Step, update.Total, update.Message)
		}
	}()

	result, err := tasks.NewExporter(catalog).BulkExport(ctx, progress, ids, opts)
	close(progress)
	<-drained
	if err != nil {
		return err
	}

	r.writePlainHeader("Export summary")
	r.writePlain("Playlists: %d · exported: %d · failed: %d\n",
		result.TotalPlaylists, result.SuccessfulExports, result.FailedExports)
	for _, res := range result.Results {
		if !res.Success {
			r.writePlain("  ✗ pl-%d %s: %s\n", res.PlaylistID, res.Title, shared.UserMessage(res.Error))
		}
	}
	r.writePlain("Output: %s\n", result.OutputDirectory)
	r.writePlain("Manifest: %s\n", result.ManifestPath)

	r.logger.Info("bulk export finished", "duration", time.Since(start).Round(time.Millisecond), "failed", result.FailedExports)
	return nil
}
