package services

import (
	"context"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/acervomestre/acervo/internal/models"
)

// Catalog is the full set of backend operations used by the session, the state machines and
// the views. [AcervoService] implements it over HTTP.
type Catalog interface {
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
	ActivateAccount(ctx context.Context, token, newPassword string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error

	Me(ctx context.Context) (*models.User, error)
	ListUsers(ctx context.Context, opts UserListOptions) ([]models.User, error)
	GetUser(ctx context.Context, id int) (*models.User, error)
	CreateUser(ctx context.Context, form models.UserForm) (*models.User, error)
	UpdateUser(ctx context.Context, id int, form models.UserForm) (*models.User, error)
	RestoreUser(ctx context.Context, id int) error
	DeleteUser(ctx context.Context, id int) error
	UpdateUserImage(ctx context.Context, id int, fileName string, r io.Reader) error

	ListResources(ctx context.Context, opts ListOptions) ([]models.Resource, error)
	GetResource(ctx context.Context, id int) (*models.Resource, error)
	CreateResource(ctx context.Context, form models.ResourceForm) (*models.Resource, error)
	LikeResource(ctx context.Context, id int) error
	DeleteResource(ctx context.Context, id int) error

	ListPlaylists(ctx context.Context, opts ListOptions) ([]models.Playlist, error)
	GetPlaylist(ctx context.Context, id int) (*models.Playlist, error)
	CreatePlaylist(ctx context.Context, form models.PlaylistForm) (*models.Playlist, error)
	UpdatePlaylist(ctx context.Context, id int, form models.PlaylistForm) (*models.Playlist, error)
	ReorderPlaylist(ctx context.Context, id int, resourceIDs []int) error
	AddResource(ctx context.Context, playlistID, resourceID int) error
	RemoveResource(ctx context.Context, playlistID, resourceID int) error
	DeletePlaylist(ctx context.Context, id int) error

	ListTags(ctx context.Context) ([]models.Tag, error)
	CreateTag(ctx context.Context, name string) (*models.Tag, error)
	DeleteTag(ctx context.Context, id int) error
}

// ListOptions are the query parameters of the resource and playlist listings.
type ListOptions struct {
	Page     int
	PerPage  int
	AuthorID int  // sent as autor_id when non-zero
	NoCache  bool // appends a t=<unix millis> cache-buster
}

func (o ListOptions) values(now time.Time) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(max(o.Page, 1)))
	perPage := o.PerPage
	if perPage <= 0 {
		perPage = 100
	}
	q.Set("per_page", strconv.Itoa(perPage))
	if o.AuthorID != 0 {
		q.Set("autor_id", strconv.Itoa(o.AuthorID))
	}
	if o.NoCache {
		q.Set("t", strconv.FormatInt(now.UnixMilli(), 10))
	}
	return q
}

// UserListOptions are the query parameters of the user listing.
type UserListOptions struct {
	Page       int
	PerPage    int
	OnlyActive bool
}

func (o UserListOptions) values() url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(max(o.Page, 1)))
	perPage := o.PerPage
	if perPage <= 0 {
		perPage = 100
	}
	q.Set("per_page", strconv.Itoa(perPage))
	q.Set("somente_ativos", strconv.FormatBool(o.OnlyActive))
	return q
}
