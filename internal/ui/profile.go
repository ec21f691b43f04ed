package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/acervomestre/acervo/internal/models"
	"github.com/acervomestre/acervo/internal/tasks"
)

// profileEntry is one row of the profile view: a playlist or a resource.
type profileEntry struct {
	playlist *models.Playlist
	resource *models.Resource
}

func (m *Model) onProfileLoaded(d profileLoaded) {
	if d.profile != nil {
		m.profile = d.profile
	}
	m.setErr(d.err)
	m.profileCursor = min(m.profileCursor, max(len(m.profileEntries())-1, 0))
}

// profileEntries lists playlists first, then resources.
func (m *Model) profileEntries() []profileEntry {
	if m.profile == nil {
		return nil
	}
	entries := make([]profileEntry, 0, len(m.profile.Playlists)+len(m.profile.Resources))
	for i := range m.profile.Playlists {
		entries = append(entries, profileEntry{playlist: &m.profile.Playlists[i]})
	}
	for i := range m.profile.Resources {
		entries = append(entries, profileEntry{resource: &m.profile.Resources[i]})
	}
	return entries
}

func (m *Model) profileKeys(msg tea.KeyMsg) tea.Cmd {
	entries := m.profileEntries()

	switch {
	case key.Matches(msg, m.keys.up):
		m.profileCursor = max(m.profileCursor-1, 0)
	case key.Matches(msg, m.keys.down):
		m.profileCursor = min(m.profileCursor+1, max(len(entries)-1, 0))
	case key.Matches(msg, m.keys.enter):
		if m.profileCursor >= len(entries) {
			return nil
		}
		e := entries[m.profileCursor]
		if e.playlist != nil {
			return m.openPlaylist(e.playlist.ID)
		}
		return m.openResource(e.resource.ID)
	case key.Matches(msg, m.keys.del):
		if m.profileCursor >= len(entries) || entries[m.profileCursor].playlist == nil {
			return nil
		}
		pl := *entries[m.profileCursor].playlist
		catalog := m.catalog
		m.ask(tasks.DeletePlaylistPrompt(pl), func() tea.Cmd {
			return m.run(done{notice: "Playlist removida com sucesso!", reload: true}, func(ctx context.Context) error {
				return catalog.DeletePlaylist(ctx, pl.ID)
			})
		})
	}
	return nil
}

func (m *Model) renderProfile() string {
	if m.profile == nil {
		if m.loading {
			return "Carregando perfil..."
		}
		return styles.help.Render("Entre com sua conta para ver o perfil.")
	}
	u := m.profile.User

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s · %s · %s\n\n", styles.ok.Render(u.Name), u.Email, u.Role,
		statusStyle(u.Status).Render(string(u.Status)))

	i := 0
	row := func(line string) {
		prefix := "  "
		if i == m.profileCursor {
			prefix = styles.cursor.Render("> ")
		}
		b.WriteString(prefix + line + "\n")
		i++
	}

	b.WriteString(styles.section.Render(fmt.Sprintf("Minhas playlists (%d)", len(m.profile.Playlists))) + "\n")
	if len(m.profile.Playlists) == 0 {
		b.WriteString(styles.help.Render("  Nenhuma playlist criada.") + "\n")
	}
	for _, p := range m.profile.Playlists {
		row(fmt.Sprintf("%s (%d recursos · %s)", p.Title, p.Count(), p.Visibility.Label()))
	}

	b.WriteString("\n" + styles.section.Render(fmt.Sprintf("Meus recursos (%d)", len(m.profile.Resources))) + "\n")
	if len(m.profile.Resources) == 0 {
		b.WriteString(styles.help.Render("  Nenhum recurso enviado.") + "\n")
	}
	for _, r := range m.profile.Resources {
		row(fmt.Sprintf("%s %s", badge(models.Classify(r.Structure, r.MimeType)), r.Title))
	}
	return b.String()
}
