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

func (m *Model) openPlaylist(id int) tea.Cmd {
	m.playlistID = id
	m.reorder = tasks.NewReorder(m.catalog, id)
	m.item = 0
	return m.open(PlaylistView)
}

func (m *Model) onPlaylistLoaded(d playlistLoaded) {
	if d.err != nil {
		m.setErr(d.err)
		return
	}
	m.reorder.Set(d.playlist)
	m.item = min(m.item, max(len(m.reorder.Items)-1, 0))
}

func (m *Model) onOrderSaved(d playlistLoaded) {
	m.reorder.EndSave(d.playlist)
	if d.err != nil {
		m.setErr(d.err)
		return
	}
	m.notice = "Nova ordem salva com sucesso!"
}

func (m *Model) playlistKeys(msg tea.KeyMsg) tea.Cmd {
	items := m.reorder.Items

	switch {
	case key.Matches(msg, m.keys.moveUp):
		m.item = m.reorder.MoveUp(m.item)
	case key.Matches(msg, m.keys.moveDown):
		m.item = m.reorder.MoveDown(m.item)
	case key.Matches(msg, m.keys.up):
		m.item = max(m.item-1, 0)
	case key.Matches(msg, m.keys.down):
		m.item = min(m.item+1, max(len(items)-1, 0))

	case key.Matches(msg, m.keys.save):
		order, err := m.reorder.BeginSave()
		if err != nil {
			return nil
		}
		ctx, token, catalog, id := m.ctx, m.token, m.catalog, m.playlistID
		return func() tea.Msg {
			p, err := tasks.SaveOrder(ctx, catalog, id, order)
			return playlistLoadedMsg(MsgOrderSaved, token, p, err)
		}

	case key.Matches(msg, m.keys.remove):
		if m.item >= len(items) {
			return nil
		}
		r := items[m.item].Resource
		catalog, id := m.catalog, m.playlistID
		m.ask(fmt.Sprintf("Remover \"%s\" desta playlist?", r.Title), func() tea.Cmd {
			return m.run(done{notice: "Recurso removido da playlist com sucesso!", reload: true}, func(ctx context.Context) error {
				return catalog.RemoveResource(ctx, id, r.ID)
			})
		})

	case key.Matches(msg, m.keys.enter):
		if m.item < len(items) {
			return m.openResource(items[m.item].Resource.ID)
		}
	}
	return nil
}

func (m *Model) renderPlaylist() string {
	p := m.reorder.Playlist
	if p == nil {
		if m.loading {
			return "Carregando playlist..."
		}
		return styles.help.Render("Playlist indisponível.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", styles.ok.Render(p.Title))
	if p.Description != "" {
		fmt.Fprintf(&b, "%s\n", p.Description)
	}
	fmt.Fprintf(&b, "%d recursos · %s\n\n", p.Count(), p.Visibility.Label())

	if len(m.reorder.Items) == 0 {
		b.WriteString(styles.help.Render("Esta playlist ainda não tem recursos."))
		return b.String()
	}

	for i, item := range m.reorder.Items {
		d := models.Classify(item.Resource.Structure, item.Resource.MimeType)
		line := fmt.Sprintf("%2d. %s %s", i+1, badge(d), item.Resource.Title)
		if i == m.item {
			line = styles.cursor.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}

	switch {
	case m.reorder.Saving:
		b.WriteString("\n" + styles.warn.Render("Salvando ordem..."))
	case m.reorder.Dirty():
		b.WriteString("\n" + styles.warn.Render("Ordem alterada. Pressione s para salvar."))
	}
	return b.String()
}
