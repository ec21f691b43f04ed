package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/acervomestre/acervo/internal/shared"
	"github.com/acervomestre/acervo/internal/tasks"
	"github.com/acervomestre/acervo/internal/ui"
)

// TUI launches the interactive catalog browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Logs go to a file so they do not tear the alternate screen.
	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	s, err := r.connect()
	if err != nil {
		return err
	}
	if s.Authenticated() {
		if _, err := s.LoadProfile(ctx, r.catalog); err != nil {
			r.logger.Warn("profile unavailable, continuing signed out", "error", err)
		}
	}

	model := ui.NewModel(ctx, ui.Options{
		Catalog:  r.catalog,
		Identity: s,
		BaseURL:  r.api.BaseURL(),
		Logger:   r.logger,
		Browser: tasks.BrowserOptions{
			PageSize:      r.config.API.PageSize,
			HomePlaylists: r.config.API.HomePlaylists,
			WindowSize:    r.config.UI.WindowSize,
		},
		CacheSize: r.config.UI.DetailCacheSize,
		CacheTTL:  r.config.UI.DetailCacheTTL.Duration,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
