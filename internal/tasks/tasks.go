package tasks

import (
	"strings"

	"github.com/acervomestre/acervo/internal/models"
	"github.com/google/uuid"
)

// DefaultWindowSize is the number of cards a carousel shows at once.
const DefaultWindowSize = 4

// Token identifies one in-flight request so that late results can be recognized and dropped.
type Token string

func newToken() Token { return Token(uuid.NewString()) }

// ConfirmFunc asks the user a yes/no question. A nil ConfirmFunc confirms everything.
type ConfirmFunc func(prompt string) bool

func confirmed(confirm ConfirmFunc, prompt string) bool {
	if confirm == nil {
		return true
	}
	return confirm(prompt)
}

// Window is a fixed-size view over an ordered list of cards.
type Window struct {
	Offset int
	Size   int
}

// NewWindow returns a window at offset zero. A non-positive size falls back to [DefaultWindowSize].
func NewWindow(size int) Window {
	if size <= 0 {
		size = DefaultWindowSize
	}
	return Window{Size: size}
}

func (w *Window) size() int {
	if w.Size <= 0 {
		w.Size = DefaultWindowSize
	}
	return w.Size
}

// Next advances by one page, clamped so the last page stays full.
func (w *Window) Next(total int) {
	size := w.size()
	w.Offset = min(w.Offset+size, max(0, total-size))
}

// Prev moves back by one page, never below zero.
func (w *Window) Prev() {
	w.Offset = max(w.Offset-w.size(), 0)
}

func (w *Window) CanNext(total int) bool { return w.Offset+w.size() < total }
func (w *Window) CanPrev() bool          { return w.Offset > 0 }
func (w *Window) Reset()                 { w.Offset = 0 }

// Visible returns the items inside the window.
func Visible[T any](w Window, items []T) []T {
	size := w.Size
	if size <= 0 {
		size = DefaultWindowSize
	}
	start := min(max(w.Offset, 0), len(items))
	end := min(start+size, len(items))
	return items[start:end]
}

// MatchCard reports whether card matches the search query.
//
// The title matches by case-insensitive substring; tag names and the type label must match
// exactly, ignoring case. The query is not trimmed. An empty query matches every card.
func MatchCard(card models.Card, query string) bool {
	q := strings.ToLower(query)
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(card.Title), q) {
		return true
	}
	for _, tag := range card.Tags {
		if strings.ToLower(tag) == q {
			return true
		}
	}
	return strings.ToLower(card.Descriptor.Label) == q
}

// FilterCards returns the cards matching query, preserving order.
func FilterCards(cards []models.Card, query string) []models.Card {
	out := make([]models.Card, 0, len(cards))
	for _, c := range cards {
		if MatchCard(c, query) {
			out = append(out, c)
		}
	}
	return out
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
		// Channel full, skip this update
	}
}
