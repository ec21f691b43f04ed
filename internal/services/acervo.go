package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/acervomestre/acervo/internal/models"
)

// AcervoService implements [Catalog] on top of [APIService].
type AcervoService struct {
	api *APIService
	now func() time.Time
}

// NewAcervoService wraps api with the typed endpoint methods.
func NewAcervoService(api *APIService) *AcervoService {
	return &AcervoService{api: api, now: time.Now}
}

// API returns the underlying raw client.
func (s *AcervoService) API() *APIService { return s.api }

// Auth

// Login exchanges credentials for a token pair.
func (s *AcervoService) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	body := map[string]string{"email": strings.TrimSpace(email), "password": password}

	var tokens models.TokenPair
	if err := s.api.doJSON(ctx, http.MethodPost, "/auth/login", nil, body, &tokens); err != nil {
		return nil, withStatusMessages(err, map[int]string{
			http.StatusUnauthorized:        "E-mail ou senha incorretos.",
			http.StatusForbidden:           "Usuário inativo ou pendente de ativação.",
			http.StatusUnprocessableEntity: "Dados inválidos. Verifique os campos.",
			0:                              "Erro de conexão com o servidor.",
		})
	}
	if tokens.AccessToken == "" {
		return nil, fmt.Errorf("login response without access token")
	}
	return &tokens, nil
}

// ActivateAccount sets the first password of an account using the e-mailed token.
func (s *AcervoService) ActivateAccount(ctx context.Context, token, newPassword string) error {
	body := map[string]string{"token": token, "new_password": newPassword}
	err := s.api.doJSON(ctx, http.MethodPost, "/auth/activate_account", nil, body, nil)
	return withFallback(withStatusMessages(err, map[int]string{
		http.StatusBadRequest: "Token inválido, expirado ou usuário já ativo.",
		http.StatusNotFound:   "Usuário não encontrado.",
	}), "Erro ao ativar conta.")
}

// ForgotPassword asks the backend to e-mail a reset token.
func (s *AcervoService) ForgotPassword(ctx context.Context, email string) error {
	body := map[string]string{"email": strings.TrimSpace(email)}
	err := s.api.doJSON(ctx, http.MethodPost, "/auth/forgot_password", nil, body, nil)
	return withFallback(err, "Erro ao solicitar recuperação. Verifique o e-mail.")
}

// ResetPassword sets a new password using the e-mailed token.
func (s *AcervoService) ResetPassword(ctx context.Context, token, newPassword string) error {
	body := map[string]string{"token": token, "new_password": newPassword}
	err := s.api.doJSON(ctx, http.MethodPost, "/auth/reset_password", nil, body, nil)
	return withFallback(err, "Token inválido ou expirado.")
}

// Users

// Me returns the authenticated user.
func (s *AcervoService) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if err := s.api.doJSON(ctx, http.MethodGet, "/users/me", nil, nil, &u); err != nil {
		return nil, withFallback(err, "Erro ao buscar dados do usuário")
	}
	return &u, nil
}

// ListUsers returns one page of the user directory.
func (s *AcervoService) ListUsers(ctx context.Context, opts UserListOptions) ([]models.User, error) {
	var raw []byte
	if err := s.api.doJSON(ctx, http.MethodGet, "/users/get_all", opts.values(), nil, &raw); err != nil {
		return nil, withFallback(err, "Não foi possível carregar a lista de usuários.")
	}
	return decodeList[models.User](raw)
}

// GetUser returns one user.
func (s *AcervoService) GetUser(ctx context.Context, id int) (*models.User, error) {
	var u models.User
	if err := s.api.doJSON(ctx, http.MethodGet, fmt.Sprintf("/users/get/%d", id), nil, nil, &u); err != nil {
		return nil, withFallback(err, "Não foi possível carregar os dados do usuário.")
	}
	return &u, nil
}

// CreateUser creates an account. A blank password is omitted so the backend sends an activation e-mail.
func (s *AcervoService) CreateUser(ctx context.Context, form models.UserForm) (*models.User, error) {
	var u models.User
	if err := s.api.doJSON(ctx, http.MethodPost, "/users/create", nil, form.Payload(), &u); err != nil {
		return nil, withFallback(err, "Erro ao criar usuário")
	}
	return &u, nil
}

// UpdateUser patches an account.
func (s *AcervoService) UpdateUser(ctx context.Context, id int, form models.UserForm) (*models.User, error) {
	var u models.User
	if err := s.api.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/users/patch/%d", id), nil, form.Payload(), &u); err != nil {
		return nil, withFallback(err, "Erro ao atualizar dados do usuário")
	}
	return &u, nil
}

// RestoreUser reactivates a soft-deleted account.
func (s *AcervoService) RestoreUser(ctx context.Context, id int) error {
	err := s.api.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/users/restore/%d", id), nil, struct{}{}, nil)
	return withFallback(err, "Erro ao ativar usuário")
}

// DeleteUser soft-deletes (deactivates) an account.
func (s *AcervoService) DeleteUser(ctx context.Context, id int) error {
	err := s.api.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/users/delete/%d", id), nil, nil, nil)
	return withFallback(err, "Erro ao desativar usuário")
}

// UpdateUserImage uploads a new profile image.
func (s *AcervoService) UpdateUserImage(ctx context.Context, id int, fileName string, r io.Reader) error {
	file := &FilePart{Field: "file", FileName: fileName, Reader: r}
	err := s.api.doMultipart(ctx, http.MethodPut, fmt.Sprintf("/users/%d/image", id), nil, file, nil)
	return withFallback(err, "Erro ao atualizar imagem de perfil")
}

// Resources

// ListResources returns one page of resources.
func (s *AcervoService) ListResources(ctx context.Context, opts ListOptions) ([]models.Resource, error) {
	var raw []byte
	if err := s.api.doJSON(ctx, http.MethodGet, "/recursos/get_all", opts.values(s.now()), nil, &raw); err != nil {
		return nil, withFallback(err, "Erro ao buscar recursos")
	}
	return decodeList[models.Resource](raw)
}

// GetResource returns one resource.
func (s *AcervoService) GetResource(ctx context.Context, id int) (*models.Resource, error) {
	var r models.Resource
	if err := s.api.doJSON(ctx, http.MethodGet, fmt.Sprintf("/recursos/get/%d", id), nil, nil, &r); err != nil {
		return nil, withFallback(err, "Erro ao carregar recurso")
	}
	return &r, nil
}

// CreateResource submits a resource as multipart/form-data. Callers validate the form first.
func (s *AcervoService) CreateResource(ctx context.Context, form models.ResourceForm) (*models.Resource, error) {
	var file *FilePart
	if form.Mode == models.StructureUpload && form.File != nil {
		file = &FilePart{Field: "file", FileName: form.FileName, Reader: form.File}
	}

	var r models.Resource
	if err := s.api.doMultipart(ctx, http.MethodPost, "/recursos/create", form.Fields(), file, &r); err != nil {
		return nil, withFallback(err, "Erro ao criar recurso")
	}
	return &r, nil
}

// LikeResource increments the like counter.
func (s *AcervoService) LikeResource(ctx context.Context, id int) error {
	err := s.api.doJSON(ctx, http.MethodPost, fmt.Sprintf("/recursos/%d/like", id), nil, nil, nil)
	return withFallback(err, "Erro ao curtir recurso")
}

// DeleteResource permanently removes a resource.
func (s *AcervoService) DeleteResource(ctx context.Context, id int) error {
	err := s.api.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/recursos/delete/%d", id), nil, nil, nil)
	return withFallback(err, "Erro ao remover recurso")
}

// Playlists

// ListPlaylists returns one page of playlists.
func (s *AcervoService) ListPlaylists(ctx context.Context, opts ListOptions) ([]models.Playlist, error) {
	var raw []byte
	if err := s.api.doJSON(ctx, http.MethodGet, "/playlists/get_all", opts.values(s.now()), nil, &raw); err != nil {
		return nil, withFallback(err, "Erro ao buscar playlists")
	}
	return decodeList[models.Playlist](raw)
}

// GetPlaylist returns a playlist with its items.
func (s *AcervoService) GetPlaylist(ctx context.Context, id int) (*models.Playlist, error) {
	var p models.Playlist
	if err := s.api.doJSON(ctx, http.MethodGet, fmt.Sprintf("/playlists/get/%d", id), nil, nil, &p); err != nil {
		return nil, withFallback(err, "Erro ao carregar playlist")
	}
	return &p, nil
}

// CreatePlaylist creates an empty playlist.
func (s *AcervoService) CreatePlaylist(ctx context.Context, form models.PlaylistForm) (*models.Playlist, error) {
	var p models.Playlist
	if err := s.api.doJSON(ctx, http.MethodPost, "/playlists/create", nil, form, &p); err != nil {
		return nil, withFallback(err, "Erro ao criar playlist")
	}
	return &p, nil
}

// UpdatePlaylist replaces title and description.
func (s *AcervoService) UpdatePlaylist(ctx context.Context, id int, form models.PlaylistForm) (*models.Playlist, error) {
	var p models.Playlist
	if err := s.api.doJSON(ctx, http.MethodPut, fmt.Sprintf("/playlists/update/%d", id), nil, form, &p); err != nil {
		return nil, withFallback(err, "Falha ao atualizar playlist")
	}
	return &p, nil
}

// ReorderPlaylist persists the full resource id sequence; positions become the new order.
func (s *AcervoService) ReorderPlaylist(ctx context.Context, id int, resourceIDs []int) error {
	if resourceIDs == nil {
		resourceIDs = []int{}
	}
	body := map[string][]int{"recurso_ids_ordem": resourceIDs}
	err := s.api.doJSON(ctx, http.MethodPut, fmt.Sprintf("/playlists/update/%d/reordenar", id), nil, body, nil)
	return withFallback(err, "Erro ao salvar ordem")
}

// AddResource appends a resource to a playlist.
func (s *AcervoService) AddResource(ctx context.Context, playlistID, resourceID int) error {
	body := map[string]int{"recurso_id": resourceID}
	err := s.api.doJSON(ctx, http.MethodPost, fmt.Sprintf("/playlists/add_recurso/%d", playlistID), nil, body, nil)
	return withFallback(err, "Erro ao adicionar recurso à playlist")
}

// RemoveResource removes a resource from a playlist.
func (s *AcervoService) RemoveResource(ctx context.Context, playlistID, resourceID int) error {
	err := s.api.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/playlists/delete_recurso/%d/%d", playlistID, resourceID), nil, nil, nil)
	return withFallback(err, "Erro ao remover recurso da playlist")
}

// DeletePlaylist removes a playlist.
func (s *AcervoService) DeletePlaylist(ctx context.Context, id int) error {
	err := s.api.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/playlists/delete/%d", id), nil, nil, nil)
	return withFallback(err, "Falha ao excluir playlist")
}

// Tags

// ListTags returns the whole taxonomy. The endpoint answers with a bare array or a page.
func (s *AcervoService) ListTags(ctx context.Context) ([]models.Tag, error) {
	var raw []byte
	if err := s.api.doJSON(ctx, http.MethodGet, "/tags/get_all", nil, nil, &raw); err != nil {
		return nil, withFallback(err, "Erro ao buscar tags")
	}
	return decodeList[models.Tag](raw)
}

// CreateTag creates a tag.
func (s *AcervoService) CreateTag(ctx context.Context, name string) (*models.Tag, error) {
	var t models.Tag
	if err := s.api.doJSON(ctx, http.MethodPost, "/tags/create", nil, map[string]string{"nome": name}, &t); err != nil {
		return nil, withFallback(err, "Erro ao criar tag")
	}
	if t.Name == "" {
		t.Name = name
	}
	return &t, nil
}

// DeleteTag removes a tag. The backend refuses tags still attached to resources.
func (s *AcervoService) DeleteTag(ctx context.Context, id int) error {
	err := s.api.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/tags/delete/%d", id), nil, nil, nil)
	return withFallback(err, "A tag pode estar em uso.")
}

func decodeList[T any](raw []byte) ([]T, error) {
	if len(raw) == 0 {
		return []T{}, nil
	}
	items, err := models.DecodeItems[T](raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return items, nil
}

var _ Catalog = (*AcervoService)(nil)
