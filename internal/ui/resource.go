package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/acervomestre/acervo/internal/models"
	"github.com/acervomestre/acervo/internal/services"
	"github.com/acervomestre/acervo/internal/shared"
	"github.com/acervomestre/acervo/internal/tasks"
)

func (m *Model) openResource(id int) tea.Cmd {
	m.resourceID = id
	m.resource = nil
	m.like = nil
	return m.open(ResourceView)
}

func (m *Model) onResourceLoaded(d resourceLoaded) {
	if d.err != nil {
		m.setErr(d.err)
		return
	}
	m.resource = d.resource
	if m.like == nil || m.like.ResourceID != d.resource.ID {
		m.like = tasks.NewLike(*d.resource)
	}
}

func (m *Model) onLikeSettled(d likeSettled) {
	if m.like == nil {
		return
	}
	err := m.like.Settle(d.like, d.err)
	switch {
	case errors.Is(err, shared.ErrStaleResponse):
	case err != nil:
		m.setErr(err)
	default:
		m.cache.Invalidate(m.like.ResourceID)
	}
}

func (m *Model) onPickerLoaded(d pickerLoaded) {
	if d.err != nil {
		m.setErr(d.err)
		return
	}
	if len(d.playlists) == 0 {
		m.notice = "Você ainda não tem playlists."
		return
	}
	m.picker = newPicker("Adicionar à playlist", playlistItems(d.playlists), m.width, m.height)
	m.picking = pickPlaylist
}

func (m *Model) resourceKeys(msg tea.KeyMsg) tea.Cmd {
	if m.resource == nil {
		return nil
	}
	r := *m.resource

	switch {
	case key.Matches(msg, m.keys.like):
		return m.likeResource()

	case key.Matches(msg, m.keys.open):
		if link := r.Link(); link != "" {
			if err := shared.OpenLink(m.baseURL, link); err != nil {
				m.setErr(err)
			}
		}

	case key.Matches(msg, m.keys.pick):
		user := m.currentUser()
		if user == nil {
			m.err = shared.ErrNotAuthenticated
			return nil
		}
		m.loading = true
		ctx, token, catalog, authorID := m.ctx, m.token, m.catalog, user.ID
		return func() tea.Msg {
			playlists, err := catalog.ListPlaylists(ctx, services.ListOptions{Page: 1, PerPage: 100, AuthorID: authorID})
			return pickerLoadedMsg(token, playlists, err)
		}

	case key.Matches(msg, m.keys.del):
		catalog, cache := m.catalog, m.cache
		m.ask(fmt.Sprintf("Tem certeza que deseja excluir o recurso \"%s\"?", r.Title), func() tea.Cmd {
			return m.run(done{notice: "Recurso removido.", back: true}, func(ctx context.Context) error {
				if err := catalog.DeleteResource(ctx, r.ID); err != nil {
					return err
				}
				cache.Invalidate(r.ID)
				return nil
			})
		})
	}
	return nil
}

// likeResource increments the counter optimistically; a second press is ignored.
func (m *Model) likeResource() tea.Cmd {
	if m.like == nil {
		return nil
	}
	like, err := m.like.Begin()
	if err != nil {
		return nil
	}
	ctx, token, catalog, id := m.ctx, m.token, m.catalog, m.like.ResourceID
	return func() tea.Msg {
		return likeSettledMsg(token, like, catalog.LikeResource(ctx, id))
	}
}

func (m *Model) renderResource() string {
	if m.resource == nil {
		if m.loading {
			return "Carregando recurso..."
		}
		return styles.help.Render("Recurso indisponível.")
	}
	r := m.resource
	card := models.ResourceCard(*r)

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", badge(card.Descriptor), styles.ok.Render(r.Title))
	fmt.Fprintf(&b, "%s · %s · %s\n\n", card.Descriptor.LongLabel, card.Author, card.Visibility)

	if r.Description != "" {
		b.WriteString(r.Description)
		b.WriteString("\n\n")
	}
	if tags := r.TagNames(); len(tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n", strings.Join(tags, ", "))
	}

	likes, liked := r.Likes, false
	if m.like != nil {
		likes, liked = m.like.Likes, m.like.HasLiked
	}
	heart := "♡"
	if liked {
		heart = "♥"
	}
	fmt.Fprintf(&b, "%s %d curtidas · %d visualizações · %d downloads\n", heart, likes, r.Views, r.Downloads)

	if link := r.Link(); link != "" {
		fmt.Fprintf(&b, "\nLink: %s\n", link)
	}
	if r.Structure == models.StructureNote && r.Content != "" {
		b.WriteString("\n")
		b.WriteString(r.Content)
		b.WriteString("\n")
	}

	if m.picking == pickPlaylist {
		b.WriteString("\n")
		b.WriteString(m.picker.View())
	}
	return b.String()
}
