package tasks

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/acervomestre/acervo/internal/models"
	"github.com/acervomestre/acervo/internal/services"
	"github.com/acervomestre/acervo/internal/shared"
)

// Users is the admin user directory.
type Users struct {
	catalog services.Catalog

	All        []models.User
	processing map[int]bool
}

// NewUsers creates an empty directory.
func NewUsers(catalog services.Catalog) *Users {
	return &Users{catalog: catalog, processing: map[int]bool{}}
}

// FetchUsers lists every user, active or not.
func FetchUsers(ctx context.Context, catalog services.Catalog) ([]models.User, error) {
	return catalog.ListUsers(ctx, services.UserListOptions{Page: 1, PerPage: 100, OnlyActive: false})
}

// Load replaces the directory with a fresh listing.
func (u *Users) Load(ctx context.Context) error {
	users, err := FetchUsers(ctx, u.catalog)
	if err != nil {
		return err
	}
	u.All = users
	return nil
}

// Filter returns the users whose name or email contains query, ignoring case.
func (u *Users) Filter(query string) []models.User {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return slices.Clone(u.All)
	}
	out := []models.User{}
	for _, user := range u.All {
		if strings.Contains(strings.ToLower(user.Name), q) || strings.Contains(strings.ToLower(user.Email), q) {
			out = append(out, user)
		}
	}
	return out
}

// Processing reports a toggle in flight for user id.
func (u *Users) Processing(id int) bool { return u.processing[id] }

// ToggleAction is the verb used for the status toggle of user.
func ToggleAction(user models.User) string {
	if user.Status == models.StatusActive {
		return "desativar"
	}
	return "ativar"
}

// TogglePrompt is the confirmation question of the status toggle of user.
func TogglePrompt(user models.User) string {
	return fmt.Sprintf("Tem certeza que deseja %s o usuário %s?", ToggleAction(user), user.Name)
}

// BeginToggle claims the processing guard of user id.
func (u *Users) BeginToggle(id int) error {
	if u.processing[id] {
		return shared.ErrBusy
	}
	u.processing[id] = true
	return nil
}

// EndToggle releases the guard of user id and stores the refetched listing, if any.
func (u *Users) EndToggle(id int, users []models.User) {
	delete(u.processing, id)
	if users != nil {
		u.All = users
	}
}

// Toggle deactivates an active user or restores any other, then refetches the directory.
func Toggle(ctx context.Context, catalog services.Catalog, user models.User) ([]models.User, error) {
	var err error
	if user.Status == models.StatusActive {
		err = catalog.DeleteUser(ctx, user.ID)
	} else {
		err = catalog.RestoreUser(ctx, user.ID)
	}
	if err != nil {
		return nil, err
	}
	return FetchUsers(ctx, catalog)
}

// ToggleStatus asks confirm and toggles the status of user.
func (u *Users) ToggleStatus(ctx context.Context, user models.User, confirm ConfirmFunc) error {
	if u.processing[user.ID] {
		return shared.ErrBusy
	}
	if !confirmed(confirm, TogglePrompt(user)) {
		return shared.ErrCancelled
	}
	if err := u.BeginToggle(user.ID); err != nil {
		return err
	}
	users, err := Toggle(ctx, u.catalog, user)
	u.EndToggle(user.ID, users)
	return err
}

// Create validates form, creates the user and refetches the directory.
func (u *Users) Create(ctx context.Context, form models.UserForm) (*models.User, error) {
	if err := form.ValidateCreate(); err != nil {
		return nil, err
	}
	created, err := u.catalog.CreateUser(ctx, form.Payload())
	if err != nil {
		return nil, err
	}
	return created, u.Load(ctx)
}

// Update validates form, updates user id and refetches the directory.
func (u *Users) Update(ctx context.Context, id int, form models.UserForm) (*models.User, error) {
	if err := form.ValidateUpdate(); err != nil {
		return nil, err
	}
	updated, err := u.catalog.UpdateUser(ctx, id, form.Payload())
	if err != nil {
		return nil, err
	}
	return updated, u.Load(ctx)
}

// Tags is the tag management view.
type Tags struct {
	catalog services.Catalog
	All     []models.Tag
}

// NewTags creates an empty tag list.
func NewTags(catalog services.Catalog) *Tags {
	return &Tags{catalog: catalog}
}

// Load replaces the list with a fresh listing.
func (t *Tags) Load(ctx context.Context) error {
	tags, err := t.catalog.ListTags(ctx)
	if err != nil {
		return err
	}
	t.All = tags
	return nil
}

// Check trims name and rejects blanks and case-insensitive duplicates.
func (t *Tags) Check(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", shared.NewValidationError("nome", "O nome da tag é obrigatório.", shared.ErrMissingArgument)
	}
	for _, tag := range t.All {
		if strings.EqualFold(tag.Name, name) {
			return "", fmt.Errorf("%q: %w", name, shared.ErrDuplicateTag)
		}
	}
	return name, nil
}

// Add creates a tag, appending it on success. Duplicates never reach the catalog.
func (t *Tags) Add(ctx context.Context, name string) (*models.Tag, error) {
	name, err := t.Check(name)
	if err != nil {
		return nil, err
	}
	tag, err := t.catalog.CreateTag(ctx, name)
	if err != nil {
		return nil, err
	}
	t.Append(*tag)
	return tag, nil
}

// Append adds a created tag to the list.
func (t *Tags) Append(tag models.Tag) { t.All = append(t.All, tag) }

// Drop removes tag id from the list.
func (t *Tags) Drop(id int) {
	t.All = slices.DeleteFunc(t.All, func(tag models.Tag) bool { return tag.ID == id })
}

// DeleteTagPrompt is the confirmation question of a tag deletion.
const DeleteTagPrompt = "Tem certeza que deseja excluir esta tag?"

// Remove asks confirm and deletes tag id. The list changes only after the catalog accepts.
func (t *Tags) Remove(ctx context.Context, id int, confirm ConfirmFunc) error {
	if !confirmed(confirm, DeleteTagPrompt) {
		return shared.ErrCancelled
	}
	if err := t.catalog.DeleteTag(ctx, id); err != nil {
		return err
	}
	t.Drop(id)
	return nil
}
