package ui

import (
	"github.com/acervomestre/acervo/internal/models"
	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette("#0F766E", "#04B575", "#E11D48", "#FFA500", "#626262")

// kindColors maps descriptor color names to terminal colors.
var kindColors = map[string]lipgloss.Color{
	"red":    lipgloss.Color("#F87171"),
	"gray":   lipgloss.Color("#9CA3AF"),
	"green":  lipgloss.Color("#4ADE80"),
	"purple": lipgloss.Color("#C084FC"),
	"blue":   lipgloss.Color("#60A5FA"),
	"teal":   lipgloss.Color("#2DD4BF"),
}

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title    lipgloss.Style
	ok       lipgloss.Style
	err      lipgloss.Style
	warn     lipgloss.Style
	help     lipgloss.Style
	section  lipgloss.Style
	focused  lipgloss.Style
	card     lipgloss.Style
	selected lipgloss.Style
	cursor   lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	border := lipgloss.RoundedBorder()
	card := lipgloss.NewStyle().Border(border).BorderForeground(lipgloss.Color(h)).Padding(0, 1).Width(cardWidth)
	return &Palette{
		title:    NewBold(t).MarginBottom(1),
		ok:       NewBold(s),
		err:      NewBold(e),
		warn:     NewStyle(w),
		help:     NewEm(h),
		section:  NewBold(h),
		focused:  NewBold(t).Underline(true),
		card:     card,
		selected: card.BorderForeground(lipgloss.Color(t)),
		cursor:   NewBold(t),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// badge renders the type label of d in its color.
func badge(d models.Descriptor) string {
	c, ok := kindColors[d.Color]
	if !ok {
		c = kindColors["blue"]
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true).Render(d.Label)
}

func statusStyle(s models.UserStatus) lipgloss.Style {
	switch s {
	case models.StatusActive:
		return styles.ok
	case models.StatusPending:
		return styles.warn
	default:
		return styles.err
	}
}
