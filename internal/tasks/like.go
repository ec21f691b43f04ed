package tasks

import (
	"context"

	"github.com/acervomestre/acervo/internal/models"
	"github.com/acervomestre/acervo/internal/services"
	"github.com/acervomestre/acervo/internal/shared"
)

// Like is the optimistic like button of one resource view.
//
// A resource can be liked once per Like; the latch is not persisted, so a new view starts
// unliked again.
type Like struct {
	ResourceID int
	Likes      int
	HasLiked   bool
	InFlight   bool

	pending Token
}

// NewLike starts a latch from the counters of r.
func NewLike(r models.Resource) *Like {
	return &Like{ResourceID: r.ID, Likes: r.Likes}
}

// Begin increments the counter and returns the token of the like request.
// It refuses with [shared.ErrBusy] while a request is in flight or after a like.
func (l *Like) Begin() (Token, error) {
	if l.InFlight || l.HasLiked {
		return "", shared.ErrBusy
	}
	l.InFlight = true
	l.HasLiked = true
	l.Likes++
	l.pending = newToken()
	return l.pending, nil
}

// Settle completes the request identified by token, rolling back the counter and the latch
// when err is non-nil. Unknown tokens are ignored with [shared.ErrStaleResponse].
func (l *Like) Settle(token Token, err error) error {
	if token == "" || token != l.pending {
		return shared.ErrStaleResponse
	}
	l.pending = ""
	l.InFlight = false
	if err != nil {
		l.Likes--
		l.HasLiked = false
		return err
	}
	return nil
}

// Do likes the resource through catalog.
func (l *Like) Do(ctx context.Context, catalog services.Catalog) error {
	token, err := l.Begin()
	if err != nil {
		return err
	}
	return l.Settle(token, catalog.LikeResource(ctx, l.ResourceID))
}
