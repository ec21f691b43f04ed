package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	left     key.Binding
	right    key.Binding
	prevPage key.Binding
	nextPage key.Binding
	section  key.Binding
	search   key.Binding
	tags     key.Binding
	enter    key.Binding
	back     key.Binding
	reload   key.Binding
	like     key.Binding
	open     key.Binding
	pick     key.Binding
	moveUp   key.Binding
	moveDown key.Binding
	save     key.Binding
	remove   key.Binding
	toggle   key.Binding
	add      key.Binding
	del      key.Binding
	yes      key.Binding
	no       key.Binding
	home     key.Binding
	profile  key.Binding
	users    key.Binding
	tagAdmin key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		left:     key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "card")),
		right:    key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "card")),
		prevPage: key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "prev page")),
		nextPage: key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "next page")),
		section:  key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "section")),
		search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		tags:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "tags")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		like:     key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "like")),
		open:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open link")),
		pick:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "add to playlist")),
		moveUp:   key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "move up")),
		moveDown: key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "move down")),
		save:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save order")),
		remove:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "remove")),
		toggle:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle status")),
		add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		del:      key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		yes:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
		no:       key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
		home:     key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "home")),
		profile:  key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "profile")),
		users:    key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "users")),
		tagAdmin: key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "tags")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.back},
		{k.home, k.profile, k.users, k.tagAdmin},
		{k.reload, k.quit},
	}
}
