package tasks

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/acervomestre/acervo/internal/models"
	"github.com/acervomestre/acervo/internal/services"
	"github.com/acervomestre/acervo/internal/shared"
)

// fakeCatalog is an in-memory [services.Catalog]. Methods not overridden here panic
// through the nil embedded interface.
type fakeCatalog struct {
	services.Catalog

	mu        sync.Mutex
	resources []models.Resource
	playlists []models.Playlist
	tags      []models.Tag
	users     []models.User
	errs      map[string]error
	calls     []string
	nextID    int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{errs: map[string]error{}, nextID: 100}
}

func (f *fakeCatalog) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.errs[name]
}

func (f *fakeCatalog) failOn(name string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[name] = err
}

func (f *fakeCatalog) called(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeCatalog) playlist(id int) *models.Playlist {
	for i := range f.playlists {
		if f.playlists[i].ID == id {
			return &f.playlists[i]
		}
	}
	return nil
}

func (f *fakeCatalog) ListTags(ctx context.Context) ([]models.Tag, error) {
	if err := f.record("ListTags"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.tags), nil
}

func (f *fakeCatalog) CreateTag(ctx context.Context, name string) (*models.Tag, error) {
	if err := f.record("CreateTag"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	tag := models.Tag{ID: f.nextID, Name: name}
	f.tags = append(f.tags, tag)
	return &tag, nil
}

func (f *fakeCatalog) DeleteTag(ctx context.Context, id int) error {
	return f.record("DeleteTag")
}

func (f *fakeCatalog) ListResources(ctx context.Context, opts services.ListOptions) ([]models.Resource, error) {
	if err := f.record("ListResources"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.resources), nil
}

func (f *fakeCatalog) GetResource(ctx context.Context, id int) (*models.Resource, error) {
	if err := f.record("GetResource"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.resources {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeCatalog) CreateResource(ctx context.Context, form models.ResourceForm) (*models.Resource, error) {
	if err := f.record("CreateResource"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	r := models.Resource{ID: f.nextID, Title: form.Title, Structure: form.Mode}
	f.resources = append(f.resources, r)
	return &r, nil
}

func (f *fakeCatalog) LikeResource(ctx context.Context, id int) error {
	return f.record("LikeResource")
}

func (f *fakeCatalog) ListPlaylists(ctx context.Context, opts services.ListOptions) ([]models.Playlist, error) {
	if err := f.record("ListPlaylists"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Playlist{}
	for _, p := range f.playlists {
		if opts.AuthorID == 0 || p.AuthorID == opts.AuthorID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetPlaylist(ctx context.Context, id int) (*models.Playlist, error) {
	if err := f.record("GetPlaylist"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.playlist(id)
	if p == nil {
		return nil, fmt.Errorf("playlist %d: %w", id, shared.ErrNotFound)
	}
	cp := *p
	cp.Items = slices.Clone(p.Items)
	return &cp, nil
}

func (f *fakeCatalog) CreatePlaylist(ctx context.Context, form models.PlaylistForm) (*models.Playlist, error) {
	if err := f.record("CreatePlaylist"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	p := models.Playlist{ID: f.nextID, Title: form.Title, Description: form.Description}
	f.playlists = append(f.playlists, p)
	return &p, nil
}

func (f *fakeCatalog) UpdatePlaylist(ctx context.Context, id int, form models.PlaylistForm) (*models.Playlist, error) {
	if err := f.record("UpdatePlaylist"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.playlist(id)
	if p == nil {
		return nil, shared.ErrNotFound
	}
	p.Title, p.Description = form.Title, form.Description
	cp := *p
	return &cp, nil
}

func (f *fakeCatalog) ReorderPlaylist(ctx context.Context, id int, resourceIDs []int) error {
	if err := f.record("ReorderPlaylist"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.playlist(id)
	for i := range p.Items {
		p.Items[i].Order = slices.Index(resourceIDs, p.Items[i].Resource.ID) + 1
	}
	return nil
}

func (f *fakeCatalog) AddResource(ctx context.Context, playlistID, resourceID int) error {
	if err := f.record("AddResource"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.playlist(playlistID)
	p.Items = append(p.Items, models.PlaylistItem{Order: len(p.Items) + 1, Resource: models.Resource{ID: resourceID}})
	return nil
}

func (f *fakeCatalog) RemoveResource(ctx context.Context, playlistID, resourceID int) error {
	if err := f.record("RemoveResource"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.playlist(playlistID)
	p.Items = slices.DeleteFunc(p.Items, func(it models.PlaylistItem) bool { return it.Resource.ID == resourceID })
	return nil
}

func (f *fakeCatalog) DeletePlaylist(ctx context.Context, id int) error {
	if err := f.record("DeletePlaylist"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.playlists = slices.DeleteFunc(f.playlists, func(p models.Playlist) bool { return p.ID == id })
	return nil
}

func (f *fakeCatalog) ListUsers(ctx context.Context, opts services.UserListOptions) ([]models.User, error) {
	if err := f.record("ListUsers"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.users), nil
}

func (f *fakeCatalog) setStatus(id int, status models.UserStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.users {
		if f.users[i].ID == id {
			f.users[i].Status = status
		}
	}
}

func (f *fakeCatalog) DeleteUser(ctx context.Context, id int) error {
	if err := f.record("DeleteUser"); err != nil {
		return err
	}
	f.setStatus(id, models.StatusInactive)
	return nil
}

func (f *fakeCatalog) RestoreUser(ctx context.Context, id int) error {
	if err := f.record("RestoreUser"); err != nil {
		return err
	}
	f.setStatus(id, models.StatusActive)
	return nil
}

func (f *fakeCatalog) CreateUser(ctx context.Context, form models.UserForm) (*models.User, error) {
	if err := f.record("CreateUser"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u := models.User{ID: f.nextID, Name: form.Name, Email: form.Email, Role: form.Role, Status: models.StatusPending}
	f.users = append(f.users, u)
	return &u, nil
}

func (f *fakeCatalog) UpdateUser(ctx context.Context, id int, form models.UserForm) (*models.User, error) {
	if err := f.record("UpdateUser"); err != nil {
		return nil, err
	}
	return &models.User{ID: id, Name: form.Name, Email: form.Email, Role: form.Role}, nil
}

func (f *fakeCatalog) UpdateUserImage(ctx context.Context, id int, fileName string, r io.Reader) error {
	return f.record("UpdateUserImage")
}

func (f *fakeCatalog) ActivateAccount(ctx context.Context, token, newPassword string) error {
	return f.record("ActivateAccount")
}

func (f *fakeCatalog) ResetPassword(ctx context.Context, token, newPassword string) error {
	return f.record("ResetPassword")
}

func (f *fakeCatalog) ForgotPassword(ctx context.Context, email string) error {
	return f.record("ForgotPassword")
}

func sampleResources() []models.Resource {
	return []models.Resource{
		{ID: 1, Title: "Apostila de Álgebra", Structure: models.StructureUpload, MimeType: "application/pdf", Likes: 5,
			Tags: []models.Tag{{ID: 1, Name: "Matemática"}}, AuthorID: 7},
		{ID: 3, Title: "Videoaula de Óptica", Structure: models.StructureUpload, MimeType: "video/mp4", Likes: 9, Featured: true,
			Tags: []models.Tag{{ID: 2, Name: "Física"}}},
		{ID: 2, Title: "Site da biblioteca", Structure: models.StructureURL, Likes: 5, AuthorID: 7},
		{ID: 4, Title: "Resumo de Química", Structure: models.StructureNote, Likes: 1, Featured: true,
			Tags: []models.Tag{{ID: 3, Name: "Química"}}},
		{ID: 5, Title: "Lista de exercícios", Structure: models.StructureUpload, MimeType: "application/msword", Likes: 0},
	}
}

func seededCatalog() *fakeCatalog {
	f := newFakeCatalog()
	f.resources = sampleResources()
	f.tags = []models.Tag{{ID: 1, Name: "Matemática"}, {ID: 2, Name: "Física"}, {ID: 3, Name: "Química"}}
	f.playlists = []models.Playlist{
		{ID: 10, Title: "Revisão", AuthorID: 7, Items: []models.PlaylistItem{
			{Order: 3, Resource: models.Resource{ID: 4, Title: "Resumo de Química"}},
			{Order: 1, Resource: models.Resource{ID: 1, Title: "Apostila de Álgebra"}},
			{Order: 2, Resource: models.Resource{ID: 2, Title: "Site da biblioteca"}},
		}},
		{ID: 11, Title: "Ciências", AuthorID: 8, ResourceCount: 2},
	}
	f.users = []models.User{
		{ID: 7, Name: "Ana Souza", Email: "ana@escola.br", Role: models.RoleTeacher, Status: models.StatusActive},
		{ID: 8, Name: "Bruno Lima", Email: "bruno@escola.br", Role: models.RoleStudent, Status: models.StatusInactive},
		{ID: 9, Name: "Carla Dias", Email: "carla@escola.br", Role: models.RoleManager, Status: models.StatusPending},
	}
	return f
}
