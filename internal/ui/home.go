package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/acervomestre/acervo/internal/models"
	"github.com/acervomestre/acervo/internal/shared"
	"github.com/acervomestre/acervo/internal/tasks"
)

const cardWidth = 24

func (m *Model) loadHome() tea.Cmd {
	m.loading = true
	fetch := m.browser.Begin()
	m.fetch = fetch
	b, ctx, token, query := m.browser, m.ctx, m.token, m.browser.Query
	return func() tea.Msg {
		snap, err := b.Fetch(ctx, query)
		return homeLoadedMsg(token, fetch, snap, err)
	}
}

func (m *Model) onHomeLoaded(d homeLoaded) {
	if err := m.browser.Apply(d.fetch, d.snap, d.err); err != nil {
		if errors.Is(err, shared.ErrStaleResponse) {
			return
		}
		m.setErr(err)
	}
	m.clampHome()
}

func (m *Model) section() tasks.Section {
	sections := m.browser.Sections()
	if m.focus >= len(sections) {
		m.focus = 0
	}
	return sections[m.focus]
}

func (m *Model) clampHome() {
	visible := m.browser.Visible(m.section())
	m.cursor = min(m.cursor, max(len(visible)-1, 0))
}

func (m *Model) homeKeys(msg tea.KeyMsg) tea.Cmd {
	sections := m.browser.Sections()
	s := m.section()

	switch {
	case msg.String() == "tab":
		m.focus = (m.focus + 1) % len(sections)
		m.cursor = 0
	case msg.String() == "shift+tab":
		m.focus = (m.focus + len(sections) - 1) % len(sections)
		m.cursor = 0
	case key.Matches(msg, m.keys.prevPage):
		m.browser.Prev(s)
		m.cursor = 0
	case key.Matches(msg, m.keys.nextPage):
		m.browser.Next(s)
		m.cursor = 0
	case key.Matches(msg, m.keys.left):
		m.cursor = max(m.cursor-1, 0)
	case key.Matches(msg, m.keys.right):
		m.cursor++
		m.clampHome()
	case key.Matches(msg, m.keys.search):
		m.search.SetValue(m.browser.Query)
		return m.focusInput()
	case key.Matches(msg, m.keys.tags):
		m.picker = newPicker("Filtrar por tag", tagItems(m.browser.Tags, m.browser.Selected), m.width, m.height)
		m.picking = pickTag
	case key.Matches(msg, m.keys.enter):
		visible := m.browser.Visible(s)
		if m.cursor >= len(visible) {
			return nil
		}
		return m.openCard(visible[m.cursor])
	}
	return nil
}

func (m *Model) openCard(c models.Card) tea.Cmd {
	if c.IsPlaylist {
		return m.openPlaylist(c.RealID)
	}
	return m.openResource(c.RealID)
}

func (m *Model) renderHome() string {
	var b strings.Builder

	if m.typing {
		b.WriteString(m.search.View())
		b.WriteString("\n\n")
	} else if m.browser.Query != "" {
		label := "Busca"
		if m.browser.Selected != "" {
			label = "Tag"
		}
		fmt.Fprintf(&b, "%s: %s\n\n", label, styles.cursor.Render(m.browser.Query))
	}

	if m.picking == pickTag {
		b.WriteString(m.picker.View())
		return b.String()
	}

	for i, s := range m.browser.Sections() {
		b.WriteString(m.renderSection(s, i == m.focus))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderSection(s tasks.Section, focused bool) string {
	cards := m.browser.Cards(s)
	w := m.browser.Window(s)

	header := s.String()
	if focused {
		header = styles.focused.Render(header)
	} else {
		header = styles.section.Render(header)
	}

	nav := ""
	if len(cards) > 0 {
		end := min(w.Offset+w.Size, len(cards))
		nav = fmt.Sprintf(" %d-%d de %d", w.Offset+1, end, len(cards))
		if m.browser.CanPrev(s) {
			nav = " ‹" + nav
		}
		if m.browser.CanNext(s) {
			nav += " ›"
		}
	}

	visible := m.browser.Visible(s)
	if len(visible) == 0 {
		empty := "Nenhum recurso encontrado."
		if m.loading {
			empty = "Carregando..."
		}
		return header + "\n" + styles.help.Render(empty) + "\n"
	}

	boxes := make([]string, 0, len(visible))
	for i, c := range visible {
		boxes = append(boxes, renderCard(c, focused && i == m.cursor))
	}
	return header + styles.help.Render(nav) + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, boxes...) + "\n"
}

func renderCard(c models.Card, selected bool) string {
	style := styles.card
	if selected {
		style = styles.selected
	}

	lines := []string{
		badge(c.Descriptor),
		shared.Truncate(c.Title, cardWidth-2),
		styles.help.Render(shared.Truncate(c.Author, cardWidth-2)),
	}
	if c.IsPlaylist {
		lines = append(lines, fmt.Sprintf("%d recursos · %s", c.ResourceCount, c.Visibility))
	} else {
		lines = append(lines, fmt.Sprintf("♥ %d  👁 %d  ↓ %d", c.Likes, c.Views, c.Downloads))
		lines = append(lines, styles.help.Render(c.Subject))
	}
	return style.Render(strings.Join(lines, "\n"))
}
