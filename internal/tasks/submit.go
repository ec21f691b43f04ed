package tasks

import (
	"context"
	"io"
	"strings"

	"github.com/acervomestre/acervo/internal/models"
	"github.com/acervomestre/acervo/internal/services"
	"github.com/acervomestre/acervo/internal/shared"
	"golang.org/x/sync/errgroup"
)

// SubmitResource validates form and creates the resource.
// Callers keep their form on error and clear it only on success.
func SubmitResource(ctx context.Context, catalog services.Catalog, form models.ResourceForm) (*models.Resource, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	return catalog.CreateResource(ctx, form)
}

// SubmitPlaylist validates form and creates the playlist, or updates playlist id when id is non-zero.
func SubmitPlaylist(ctx context.Context, catalog services.Catalog, id int, form models.PlaylistForm) (*models.Playlist, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	form.Title = strings.TrimSpace(form.Title)
	if id == 0 {
		return catalog.CreatePlaylist(ctx, form)
	}
	return catalog.UpdatePlaylist(ctx, id, form)
}

// AddToPlaylist adds a resource to one of the playlists offered by the picker.
func AddToPlaylist(ctx context.Context, catalog services.Catalog, playlistID, resourceID int) error {
	if playlistID == 0 || resourceID == 0 {
		return shared.NewValidationError("playlist", "Selecione uma playlist.", shared.ErrMissingArgument)
	}
	return catalog.AddResource(ctx, playlistID, resourceID)
}

// ActivateAccount validates the new password and activates the invited account.
func ActivateAccount(ctx context.Context, catalog services.Catalog, token string, form models.PasswordForm) error {
	if err := form.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(token) == "" {
		return shared.NewValidationError("token", "Token de ativação ausente.", shared.ErrMissingArgument)
	}
	return catalog.ActivateAccount(ctx, token, form.Password)
}

// ResetPassword validates the new password and completes a password reset.
func ResetPassword(ctx context.Context, catalog services.Catalog, token string, form models.PasswordForm) error {
	if err := form.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(token) == "" {
		return shared.NewValidationError("token", "Token de recuperação ausente.", shared.ErrMissingArgument)
	}
	return catalog.ResetPassword(ctx, token, form.Password)
}

// ForgotPassword validates email and requests a reset link.
func ForgotPassword(ctx context.Context, catalog services.Catalog, email string) error {
	email = strings.TrimSpace(email)
	if !shared.ValidEmail(email) {
		return shared.ErrInvalidEmail
	}
	return catalog.ForgotPassword(ctx, email)
}

// Profile is the signed-in user's own resources and playlists.
type Profile struct {
	catalog services.Catalog

	User      models.User
	Resources []models.Resource
	Playlists []models.Playlist
}

// NewProfile creates the profile state of user.
func NewProfile(catalog services.Catalog, user models.User) *Profile {
	return &Profile{catalog: catalog, User: user}
}

// Load fetches the user's resources and playlists in parallel.
//
// The resource listing has no author filter, so it is filtered by autor_id here. A failure of
// one listing keeps the result of the other.
func (p *Profile) Load(ctx context.Context) error {
	var resources []models.Resource
	var playlists []models.Playlist

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		all, err := p.catalog.ListResources(gctx, services.ListOptions{Page: 1, PerPage: 100})
		if err != nil {
			return err
		}
		for _, r := range all {
			if r.OwnerID() == p.User.ID {
				resources = append(resources, r)
			}
		}
		p.Resources = resources
		return nil
	})
	g.Go(func() error {
		var err error
		playlists, err = p.catalog.ListPlaylists(gctx, services.ListOptions{Page: 1, PerPage: 100, AuthorID: p.User.ID})
		if err != nil {
			return err
		}
		p.Playlists = playlists
		return nil
	})
	return g.Wait()
}

// DeletePlaylistPrompt is the confirmation question of a playlist deletion.
func DeletePlaylistPrompt(pl models.Playlist) string {
	return "Tem certeza que deseja excluir a playlist \"" + pl.Title + "\"?"
}

// DeletePlaylist asks confirm, deletes the playlist and refetches the profile.
func (p *Profile) DeletePlaylist(ctx context.Context, pl models.Playlist, confirm ConfirmFunc) error {
	if !confirmed(confirm, DeletePlaylistPrompt(pl)) {
		return shared.ErrCancelled
	}
	if err := p.catalog.DeletePlaylist(ctx, pl.ID); err != nil {
		return err
	}
	return p.Load(ctx)
}

// Save updates the profile fields and, when image is non-nil, the profile picture.
func (p *Profile) Save(ctx context.Context, form models.UserForm, imageName string, image io.Reader) (*models.User, error) {
	if err := form.ValidateProfile(); err != nil {
		return nil, err
	}
	payload := models.UserForm{Name: strings.TrimSpace(form.Name), Email: strings.TrimSpace(form.Email)}
	updated, err := p.catalog.UpdateUser(ctx, p.User.ID, payload)
	if err != nil {
		return nil, err
	}
	if image != nil {
		if err := p.catalog.UpdateUserImage(ctx, p.User.ID, imageName, image); err != nil {
			return updated, err
		}
	}
	p.User = *updated
	return updated, nil
}
