package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/acervomestre/acervo/internal/models"
	"github.com/acervomestre/acervo/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
//
// token is the view token current when the command started; a message whose token no longer
// matches the model's is dropped.
type Msg struct {
	kind  MsgKind
	token tasks.Token
	data  any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgHomeLoaded MsgKind = iota
	MsgResourceLoaded
	MsgLikeSettled
	MsgPlaylistLoaded
	MsgOrderSaved
	MsgUsersLoaded
	MsgUserToggled
	MsgTagsLoaded
	MsgTagCreated
	MsgTagDeleted
	MsgProfileLoaded
	MsgPickerLoaded
	MsgDone
)

type homeLoaded struct {
	fetch tasks.Token
	snap  *tasks.Snapshot
	err   error
}

type resourceLoaded struct {
	resource *models.Resource
	err      error
}

type likeSettled struct {
	like tasks.Token
	err  error
}

type playlistLoaded struct {
	playlist *models.Playlist
	err      error
}

type usersLoaded struct {
	id    int // toggled user, zero for a plain load
	users []models.User
	err   error
}

type tagsLoaded struct {
	tags []models.Tag
	err  error
}

type tagChanged struct {
	tag *models.Tag
	id  int
	err error
}

type profileLoaded struct {
	profile *tasks.Profile
	err     error
}

type pickerLoaded struct {
	playlists []models.Playlist
	err       error
}

// done is the outcome of a mutation with no payload. back leaves the view on success.
type done struct {
	notice string
	back   bool
	reload bool
	err    error
}

// homeLoadedMsg is the constructor for [MsgHomeLoaded]
func homeLoadedMsg(token, fetch tasks.Token, snap *tasks.Snapshot, err error) Msg {
	return Msg{kind: MsgHomeLoaded, token: token, data: homeLoaded{fetch: fetch, snap: snap, err: err}}
}

// resourceLoadedMsg is the constructor for [MsgResourceLoaded]
func resourceLoadedMsg(token tasks.Token, r *models.Resource, err error) Msg {
	return Msg{kind: MsgResourceLoaded, token: token, data: resourceLoaded{resource: r, err: err}}
}

// likeSettledMsg is the constructor for [MsgLikeSettled]
func likeSettledMsg(token, like tasks.Token, err error) Msg {
	return Msg{kind: MsgLikeSettled, token: token, data: likeSettled{like: like, err: err}}
}

// playlistLoadedMsg is the constructor for [MsgPlaylistLoaded] and [MsgOrderSaved]
func playlistLoadedMsg(kind MsgKind, token tasks.Token, p *models.Playlist, err error) Msg {
	return Msg{kind: kind, token: token, data: playlistLoaded{playlist: p, err: err}}
}

// usersLoadedMsg is the constructor for [MsgUsersLoaded] and [MsgUserToggled]
func usersLoadedMsg(kind MsgKind, token tasks.Token, id int, users []models.User, err error) Msg {
	return Msg{kind: kind, token: token, data: usersLoaded{id: id, users: users, err: err}}
}

// tagsLoadedMsg is the constructor for [MsgTagsLoaded]
func tagsLoadedMsg(token tasks.Token, tags []models.Tag, err error) Msg {
	return Msg{kind: MsgTagsLoaded, token: token, data: tagsLoaded{tags: tags, err: err}}
}

// tagChangedMsg is the constructor for [MsgTagCreated] and [MsgTagDeleted]
func tagChangedMsg(kind MsgKind, token tasks.Token, tag *models.Tag, id int, err error) Msg {
	return Msg{kind: kind, token: token, data: tagChanged{tag: tag, id: id, err: err}}
}

// profileLoadedMsg is the constructor for [MsgProfileLoaded]
func profileLoadedMsg(token tasks.Token, p *tasks.Profile, err error) Msg {
	return Msg{kind: MsgProfileLoaded, token: token, data: profileLoaded{profile: p, err: err}}
}

// pickerLoadedMsg is the constructor for [MsgPickerLoaded]
func pickerLoadedMsg(token tasks.Token, playlists []models.Playlist, err error) Msg {
	return Msg{kind: MsgPickerLoaded, token: token, data: pickerLoaded{playlists: playlists, err: err}}
}

// doneMsg is the constructor for [MsgDone]
func doneMsg(token tasks.Token, d done) Msg {
	return Msg{kind: MsgDone, token: token, data: d}
}
