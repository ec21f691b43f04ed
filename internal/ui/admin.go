package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/acervomestre/acervo/internal/models"
	"github.com/acervomestre/acervo/internal/shared"
	"github.com/acervomestre/acervo/internal/tasks"
)

func (m *Model) onUsersLoaded(d usersLoaded) {
	if d.id != 0 {
		m.users.EndToggle(d.id, d.users)
		m.setErr(d.err)
		return
	}
	if d.err != nil {
		m.setErr(d.err)
		return
	}
	m.users.All = d.users
	m.userCursor = min(m.userCursor, max(len(d.users)-1, 0))
}

func (m *Model) adminKeys(msg tea.KeyMsg) tea.Cmd {
	visible := m.users.Filter(m.filter.Value())

	switch {
	case key.Matches(msg, m.keys.up):
		m.userCursor = max(m.userCursor-1, 0)
	case key.Matches(msg, m.keys.down):
		m.userCursor = min(m.userCursor+1, max(len(visible)-1, 0))
	case key.Matches(msg, m.keys.search):
		return m.focusInput()
	case key.Matches(msg, m.keys.toggle):
		if m.userCursor >= len(visible) {
			return nil
		}
		user := visible[m.userCursor]
		if m.users.Processing(user.ID) {
			return nil
		}
		m.ask(tasks.TogglePrompt(user), func() tea.Cmd { return m.toggleUser(user) })
	}
	return nil
}

func (m *Model) toggleUser(user models.User) tea.Cmd {
	if err := m.users.BeginToggle(user.ID); err != nil {
		return nil
	}
	ctx, token, catalog := m.ctx, m.token, m.catalog
	return func() tea.Msg {
		users, err := tasks.Toggle(ctx, catalog, user)
		return usersLoadedMsg(MsgUserToggled, token, user.ID, users, err)
	}
}

func (m *Model) renderAdmin() string {
	var b strings.Builder
	if m.typing || m.filter.Value() != "" {
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
	}

	visible := m.users.Filter(m.filter.Value())
	if len(visible) == 0 {
		if m.loading {
			return b.String() + "Carregando usuários..."
		}
		return b.String() + styles.help.Render("Nenhum usuário encontrado.")
	}

	for i, u := range visible {
		prefix := "  "
		if i == m.userCursor {
			prefix = styles.cursor.Render("> ")
		}
		status := statusStyle(u.Status).Render(string(u.Status))
		if m.users.Processing(u.ID) {
			status = styles.warn.Render("processando...")
		}
		fmt.Fprintf(&b, "%s%-24s %-32s %-12s %s\n", prefix,
			shared.Truncate(u.Name, 24), shared.Truncate(u.Email, 32), u.Role, status)
	}
	return b.String()
}

func (m *Model) onTagsLoaded(d tagsLoaded) {
	if d.err != nil {
		m.setErr(d.err)
		return
	}
	m.tags.All = d.tags
	m.tagCursor = min(m.tagCursor, max(len(d.tags)-1, 0))
}

func (m *Model) onTagChanged(kind MsgKind, d tagChanged) {
	if d.err != nil {
		m.setErr(d.err)
		return
	}
	switch kind {
	case MsgTagCreated:
		m.tags.Append(*d.tag)
		m.notice = fmt.Sprintf("Tag \"%s\" criada.", d.tag.Name)
	case MsgTagDeleted:
		m.tags.Drop(d.id)
		m.tagCursor = min(m.tagCursor, max(len(m.tags.All)-1, 0))
		m.notice = "Tag excluída."
	}
}

// addTag validates against the loaded list before anything reaches the catalog.
func (m *Model) addTag(value string) tea.Cmd {
	name, err := m.tags.Check(value)
	if err != nil {
		m.err = err
		return nil
	}
	m.tagInput.Reset()
	ctx, token, catalog := m.ctx, m.token, m.catalog
	return func() tea.Msg {
		tag, err := catalog.CreateTag(ctx, name)
		return tagChangedMsg(MsgTagCreated, token, tag, 0, err)
	}
}

func (m *Model) tagsKeys(msg tea.KeyMsg) tea.Cmd {
	all := m.tags.All

	switch {
	case key.Matches(msg, m.keys.up):
		m.tagCursor = max(m.tagCursor-1, 0)
	case key.Matches(msg, m.keys.down):
		m.tagCursor = min(m.tagCursor+1, max(len(all)-1, 0))
	case key.Matches(msg, m.keys.add):
		return m.focusInput()
	case key.Matches(msg, m.keys.del):
		if m.tagCursor >= len(all) {
			return nil
		}
		id := all[m.tagCursor].ID
		m.ask(tasks.DeleteTagPrompt, func() tea.Cmd {
			ctx, token, catalog := m.ctx, m.token, m.catalog
			return func() tea.Msg {
				return tagChangedMsg(MsgTagDeleted, token, nil, id, catalog.DeleteTag(ctx, id))
			}
		})
	}
	return nil
}

func (m *Model) renderTags() string {
	var b strings.Builder
	if m.typing {
		b.WriteString(m.tagInput.View())
		b.WriteString("\n\n")
	}

	if len(m.tags.All) == 0 {
		if m.loading {
			return b.String() + "Carregando tags..."
		}
		return b.String() + styles.help.Render("Nenhuma tag cadastrada.")
	}

	for i, t := range m.tags.All {
		prefix := "  "
		if i == m.tagCursor {
			prefix = styles.cursor.Render("> ")
		}
		fmt.Fprintf(&b, "%s%s\n", prefix, t.Name)
	}
	return b.String()
}
