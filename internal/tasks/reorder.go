package tasks

import (
	"context"
	"slices"

	"github.com/acervomestre/acervo/internal/formatter"
	"github.com/acervomestre/acervo/internal/models"
	"github.com/acervomestre/acervo/internal/services"
	"github.com/acervomestre/acervo/internal/shared"
)

// Reorder is the playlist detail view: the ordered items and the pending reorder.
type Reorder struct {
	catalog services.Catalog

	PlaylistID int
	Playlist   *models.Playlist
	Items      []models.PlaylistItem
	Saving     bool

	saved []int
}

// NewReorder creates the reorder state of playlist id.
func NewReorder(catalog services.Catalog, id int) *Reorder {
	return &Reorder{catalog: catalog, PlaylistID: id}
}

// Load fetches the playlist and resets the order to the stored one.
func (r *Reorder) Load(ctx context.Context) error {
	p, err := r.catalog.GetPlaylist(ctx, r.PlaylistID)
	if err != nil {
		return err
	}
	r.Set(p)
	return nil
}

// Set replaces the playlist, sorting its items by ordem.
func (r *Reorder) Set(p *models.Playlist) {
	r.Playlist = p
	r.Items = formatter.OrderedItems(p)
	r.saved = r.Order()
}

// Move takes the item at from out of the list and inserts it at to.
// Equal or out-of-range positions are a no-op.
func (r *Reorder) Move(from, to int) bool {
	n := len(r.Items)
	if from == to || from < 0 || to < 0 || from >= n || to >= n {
		return false
	}
	item := r.Items[from]
	r.Items = slices.Delete(r.Items, from, from+1)
	r.Items = slices.Insert(r.Items, to, item)
	return true
}

// MoveUp moves item i one position up and returns its new position.
func (r *Reorder) MoveUp(i int) int {
	if r.Move(i, i-1) {
		return i - 1
	}
	return i
}

// MoveDown moves item i one position down and returns its new position.
func (r *Reorder) MoveDown(i int) int {
	if r.Move(i, i+1) {
		return i + 1
	}
	return i
}

// Order returns the resource ids by position.
func (r *Reorder) Order() []int {
	ids := make([]int, 0, len(r.Items))
	for _, item := range r.Items {
		ids = append(ids, item.Resource.ID)
	}
	return ids
}

// Dirty reports moves that were not saved yet.
func (r *Reorder) Dirty() bool {
	return !slices.Equal(r.Order(), r.saved)
}

// BeginSave marks a save in progress and returns the order to send.
func (r *Reorder) BeginSave() ([]int, error) {
	if r.Saving {
		return nil, shared.ErrBusy
	}
	r.Saving = true
	return r.Order(), nil
}

// EndSave clears the saving flag and stores the reloaded playlist, if any.
func (r *Reorder) EndSave(p *models.Playlist) {
	r.Saving = false
	if p != nil {
		r.Set(p)
	}
}

// Save sends the current order and reloads the playlist on success.
func (r *Reorder) Save(ctx context.Context) error {
	order, err := r.BeginSave()
	if err != nil {
		return err
	}
	p, err := SaveOrder(ctx, r.catalog, r.PlaylistID, order)
	r.EndSave(p)
	return err
}

// SaveOrder stores order for playlist id and returns the reloaded playlist.
func SaveOrder(ctx context.Context, catalog services.Catalog, id int, order []int) (*models.Playlist, error) {
	if err := catalog.ReorderPlaylist(ctx, id, order); err != nil {
		return nil, err
	}
	return catalog.GetPlaylist(ctx, id)
}

// Remove takes a resource out of the playlist and reloads it.
func (r *Reorder) Remove(ctx context.Context, resourceID int) error {
	if err := r.catalog.RemoveResource(ctx, r.PlaylistID, resourceID); err != nil {
		return err
	}
	return r.Load(ctx)
}

// AddResource appends a resource to the playlist and reloads it.
func (r *Reorder) AddResource(ctx context.Context, resourceID int) error {
	if err := r.catalog.AddResource(ctx, r.PlaylistID, resourceID); err != nil {
		return err
	}
	return r.Load(ctx)
}
