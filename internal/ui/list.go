package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/acervomestre/acervo/internal/models"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = tagItem{}
)

// playlistItem wraps [models.Playlist] to implement [list.Item].
type playlistItem struct {
	playlist models.Playlist
}

func (i playlistItem) FilterValue() string { return i.playlist.Title }
func (i playlistItem) Title() string       { return i.playlist.Title }
func (i playlistItem) Description() string {
	desc := fmt.Sprintf("%d recursos", i.playlist.Count())
	if i.playlist.Description != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.playlist.Description)
	}
	return desc
}

// tagItem wraps [models.Tag] to implement [list.Item].
type tagItem struct {
	tag      models.Tag
	selected bool
}

func (i tagItem) FilterValue() string { return i.tag.Name }
func (i tagItem) Title() string {
	if i.selected {
		return "● " + i.tag.Name
	}
	return i.tag.Name
}
func (i tagItem) Description() string {
	if i.selected {
		return "filtro ativo"
	}
	return ""
}

func newPicker(title string, items []list.Item, width, height int) list.Model {
	delegate := list.NewDefaultDelegate()
	l := list.New(items, delegate, max(width-4, 20), max(height-8, 10))
	l.Title = title
	l.SetShowHelp(false)
	return l
}

func tagItems(tags []models.Tag, selected string) []list.Item {
	items := make([]list.Item, len(tags))
	for i, t := range tags {
		items[i] = tagItem{tag: t, selected: t.Name == selected}
	}
	return items
}

func playlistItems(playlists []models.Playlist) []list.Item {
	items := make([]list.Item, len(playlists))
	for i, p := range playlists {
		items[i] = playlistItem{playlist: p}
	}
	return items
}
