package server

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/acervomestre/acervo/internal/models"
	"github.com/acervomestre/acervo/internal/shared"
	"golang.org/x/crypto/bcrypt"
)

type account struct {
	models.User
	hash []byte
}

type playlistEntry struct {
	models.Playlist
	resourceIDs []int // position is the order
}

// Store is the in-memory state of the sandbox. All methods are safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	users     map[int]*account
	resources map[int]*models.Resource
	playlists map[int]*playlistEntry
	tags      map[int]*models.Tag

	// pending activation and reset tokens, token -> user id
	activation map[string]int
	reset      map[string]int
	refresh    map[string]int

	nextUser, nextResource, nextPlaylist, nextTag int

	cost int
}

// NewStore returns an empty store. cost is the bcrypt cost; zero uses [bcrypt.MinCost].
func NewStore(cost int) *Store {
	if cost == 0 {
		cost = bcrypt.MinCost
	}
	return &Store{
		users:      make(map[int]*account),
		resources:  make(map[int]*models.Resource),
		playlists:  make(map[int]*playlistEntry),
		tags:       make(map[int]*models.Tag),
		activation: make(map[string]int),
		reset:      make(map[string]int),
		refresh:    make(map[string]int),
		cost:       cost,
	}
}

// Users

// AddUser creates an account. An empty password leaves the account awaiting activation and
// returns the activation token.
func (s *Store) AddUser(form models.UserForm) (models.User, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(strings.TrimSpace(form.Email))
	for _, a := range s.users {
		if strings.EqualFold(a.Email, email) {
			return models.User{}, "", fmt.Errorf("%w: e-mail já cadastrado", shared.ErrConflict)
		}
	}

	s.nextUser++
	a := &account{User: models.User{
		ID:        s.nextUser,
		Name:      strings.TrimSpace(form.Name),
		Email:     email,
		Role:      form.Role,
		BirthDate: form.BirthDate,
		Status:    models.StatusPending,
	}}

	var token string
	if form.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(form.Password), s.cost)
		if err != nil {
			return models.User{}, "", err
		}
		a.hash = hash
		a.Status = models.StatusActive
	} else {
		token = shared.GenerateID()
		s.activation[token] = a.ID
	}

	s.users[a.ID] = a
	return a.User, token, nil
}

// Authenticate checks credentials, returning the user or an error matching
// [shared.ErrAuthFailed] or [shared.ErrForbidden].
func (s *Store) Authenticate(email, password string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.users {
		if !strings.EqualFold(a.Email, strings.TrimSpace(email)) {
			continue
		}
		if a.hash == nil || bcrypt.CompareHashAndPassword(a.hash, []byte(password)) != nil {
			return models.User{}, shared.ErrAuthFailed
		}
		if a.Status != models.StatusActive {
			return models.User{}, shared.ErrForbidden
		}
		return a.User, nil
	}
	return models.User{}, shared.ErrAuthFailed
}

// User returns one account.
func (s *Store) User(id int) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.users[id]
	if !ok {
		return models.User{}, false
	}
	return a.User, true
}

// UserByEmail returns the account with email.
func (s *Store) UserByEmail(email string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.users {
		if strings.EqualFold(a.Email, strings.TrimSpace(email)) {
			return a.User, true
		}
	}
	return models.User{}, false
}

// Users lists accounts ordered by id.
func (s *Store) Users(onlyActive bool) []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]models.User, 0, len(s.users))
	for _, a := range s.users {
		if onlyActive && a.Status != models.StatusActive {
			continue
		}
		users = append(users, a.User)
	}
	slices.SortFunc(users, func(a, b models.User) int { return a.ID - b.ID })
	return users
}

// UserPatch holds the optional fields of a user update.
type UserPatch struct {
	Name      *string
	Email     *string
	Role      *string
	BirthDate *string
	Status    *models.UserStatus
}

// UpdateUser applies patch to the account.
func (s *Store) UpdateUser(id int, patch UserPatch) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.users[id]
	if !ok {
		return models.User{}, shared.ErrNotFound
	}
	if patch.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*patch.Email))
		for _, other := range s.users {
			if other.ID != id && strings.EqualFold(other.Email, email) {
				return models.User{}, fmt.Errorf("%w: e-mail já cadastrado", shared.ErrConflict)
			}
		}
		a.Email = email
	}
	if patch.Name != nil {
		a.Name = *patch.Name
	}
	if patch.Role != nil {
		a.Role = *patch.Role
	}
	if patch.BirthDate != nil {
		a.BirthDate = *patch.BirthDate
	}
	if patch.Status != nil {
		a.Status = *patch.Status
	}
	return a.User, nil
}

// SetUserImage records the profile image location.
func (s *Store) SetUserImage(id int, url string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.users[id]
	if !ok {
		return models.User{}, shared.ErrNotFound
	}
	a.ImageURL = url
	return a.User, nil
}

// Activate consumes an activation token and sets the first password.
func (s *Store) Activate(token, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.activation[token]
	if !ok {
		return shared.ErrInvalidInput
	}
	a, ok := s.users[id]
	if !ok {
		delete(s.activation, token)
		return shared.ErrNotFound
	}
	if a.Status == models.StatusActive {
		return shared.ErrInvalidInput
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return err
	}
	a.hash = hash
	a.Status = models.StatusActive
	delete(s.activation, token)
	return nil
}

// RequestReset issues a reset token for email. Unknown e-mails yield an empty token.
func (s *Store) RequestReset(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.users {
		if strings.EqualFold(a.Email, strings.TrimSpace(email)) {
			token := shared.GenerateID()
			s.reset[token] = a.ID
			return token
		}
	}
	return ""
}

// Reset consumes a reset token and replaces the password.
func (s *Store) Reset(token, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.reset[token]
	if !ok {
		return shared.ErrInvalidInput
	}
	a, ok := s.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return err
	}
	a.hash = hash
	delete(s.reset, token)
	return nil
}

// ActivationToken returns the pending activation token of the account with email.
func (s *Store) ActivationToken(email string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for token, id := range s.activation {
		if a, ok := s.users[id]; ok && strings.EqualFold(a.Email, email) {
			return token
		}
	}
	return ""
}

func (s *Store) rememberRefresh(token string, userID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh[token] = userID
}

// Tags

// AddTag creates a tag, rejecting case-insensitive duplicates.
func (s *Store) AddTag(name string) (models.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Tag{}, shared.ErrInvalidInput
	}
	for _, t := range s.tags {
		if strings.EqualFold(t.Name, name) {
			return models.Tag{}, shared.ErrDuplicateTag
		}
	}
	s.nextTag++
	t := &models.Tag{ID: s.nextTag, Name: name}
	s.tags[t.ID] = t
	return *t, nil
}

// Tags lists tags ordered by id.
func (s *Store) Tags() []models.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tagsLocked()
}

func (s *Store) tagsLocked() []models.Tag {
	tags := make([]models.Tag, 0, len(s.tags))
	for _, t := range s.tags {
		tags = append(tags, *t)
	}
	slices.SortFunc(tags, func(a, b models.Tag) int { return a.ID - b.ID })
	return tags
}

// DeleteTag removes an unused tag. It returns the number of resources using the tag when it
// is in use.
func (s *Store) DeleteTag(id int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tags[id]; !ok {
		return 0, shared.ErrNotFound
	}
	var uses int
	for _, r := range s.resources {
		for _, t := range r.Tags {
			if t.ID == id {
				uses++
			}
		}
	}
	if uses > 0 {
		return uses, shared.ErrConflict
	}
	delete(s.tags, id)
	return 0, nil
}

// Resources

// AddResource stores a resource authored by owner, resolving tag ids.
func (s *Store) AddResource(r models.Resource, tagIDs []int, owner models.User) (models.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r.Tags = []models.Tag{}
	for _, id := range tagIDs {
		t, ok := s.tags[id]
		if !ok {
			return models.Resource{}, fmt.Errorf("%w: tag %d", shared.ErrNotFound, id)
		}
		r.Tags = append(r.Tags, *t)
	}

	s.nextResource++
	r.ID = s.nextResource
	r.AuthorID = owner.ID
	r.AuthorName = owner.Name
	r.Author = &models.Author{ID: owner.ID, Name: owner.Name}
	if r.Visibility == "" {
		r.Visibility = models.VisibilityPublic
	}
	if r.Structure == models.StructureURL {
		r.AccessLink = r.ExternalURL
	}
	s.resources[r.ID] = &r
	return r, nil
}

// Resources lists resources visible to viewer, newest first, optionally filtered by author.
func (s *Store) Resources(viewer, authorID int) []models.Resource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Resource, 0, len(s.resources))
	for _, r := range s.resources {
		if authorID != 0 && r.AuthorID != authorID {
			continue
		}
		if r.Visibility == models.VisibilityPrivate && r.AuthorID != viewer {
			continue
		}
		out = append(out, *r)
	}
	slices.SortFunc(out, func(a, b models.Resource) int { return b.ID - a.ID })
	return out
}

// ViewResource returns a resource, counting the view.
func (s *Store) ViewResource(id int) (models.Resource, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.resources[id]
	if !ok {
		return models.Resource{}, false
	}
	r.Views++
	return *r, true
}

// Like increments the like counter and returns the new count.
func (s *Store) Like(id int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.resources[id]
	if !ok {
		return 0, shared.ErrNotFound
	}
	r.Likes++
	return r.Likes, nil
}

// DeleteResource removes a resource and drops it from every playlist.
func (s *Store) DeleteResource(id int, by models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.resources[id]
	if !ok {
		return shared.ErrNotFound
	}
	if r.AuthorID != by.ID && !isStaff(by) {
		return shared.ErrForbidden
	}
	delete(s.resources, id)
	for _, p := range s.playlists {
		p.resourceIDs = slices.DeleteFunc(p.resourceIDs, func(rid int) bool { return rid == id })
	}
	return nil
}

// Playlists

// AddPlaylist creates an empty playlist owned by owner.
func (s *Store) AddPlaylist(form models.PlaylistForm, owner models.User) models.Playlist {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPlaylist++
	p := &playlistEntry{Playlist: models.Playlist{
		ID:          s.nextPlaylist,
		Title:       strings.TrimSpace(form.Title),
		Description: form.Description,
		Visibility:  models.VisibilityPublic,
		AuthorID:    owner.ID,
		AuthorName:  owner.Name,
	}}
	s.playlists[p.ID] = p
	return s.renderLocked(p, false)
}

// Playlists lists playlist summaries, optionally filtered by author.
func (s *Store) Playlists(authorID int) []models.Playlist {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Playlist, 0, len(s.playlists))
	for _, p := range s.playlists {
		if authorID != 0 && p.AuthorID != authorID {
			continue
		}
		out = append(out, s.renderLocked(p, false))
	}
	slices.SortFunc(out, func(a, b models.Playlist) int { return b.ID - a.ID })
	return out
}

// Playlist returns a playlist with its ordered items.
func (s *Store) Playlist(id int) (models.Playlist, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.playlists[id]
	if !ok {
		return models.Playlist{}, false
	}
	return s.renderLocked(p, true), true
}

// UpdatePlaylist replaces title and description.
func (s *Store) UpdatePlaylist(id int, form models.PlaylistForm, by models.User) (models.Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.ownedLocked(id, by)
	if err != nil {
		return models.Playlist{}, err
	}
	p.Title = strings.TrimSpace(form.Title)
	p.Description = form.Description
	return s.renderLocked(p, true), nil
}

// Reorder replaces the item order. order must be a permutation of the current items.
func (s *Store) Reorder(id int, order []int, by models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.ownedLocked(id, by)
	if err != nil {
		return err
	}
	if len(order) != len(p.resourceIDs) {
		return fmt.Errorf("%w: expected %d ids, got %d", shared.ErrInvalidInput, len(p.resourceIDs), len(order))
	}
	current := slices.Clone(p.resourceIDs)
	proposed := slices.Clone(order)
	slices.Sort(current)
	slices.Sort(proposed)
	if !slices.Equal(current, proposed) {
		return fmt.Errorf("%w: ids do not match playlist items", shared.ErrInvalidInput)
	}
	p.resourceIDs = slices.Clone(order)
	return nil
}

// AppendResource adds a resource to the end of a playlist.
func (s *Store) AppendResource(id, resourceID int, by models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.ownedLocked(id, by)
	if err != nil {
		return err
	}
	if _, ok := s.resources[resourceID]; !ok {
		return fmt.Errorf("%w: recurso %d", shared.ErrNotFound, resourceID)
	}
	if slices.Contains(p.resourceIDs, resourceID) {
		return fmt.Errorf("%w: recurso já está na playlist", shared.ErrConflict)
	}
	p.resourceIDs = append(p.resourceIDs, resourceID)
	return nil
}

// DropResource removes a resource from a playlist.
func (s *Store) DropResource(id, resourceID int, by models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err := s.ownedLocked(id, by)
	if err != nil {
		return err
	}
	i := slices.Index(p.resourceIDs, resourceID)
	if i < 0 {
		return fmt.Errorf("%w: recurso %d não está na playlist", shared.ErrNotFound, resourceID)
	}
	p.resourceIDs = slices.Delete(p.resourceIDs, i, i+1)
	return nil
}

// DeletePlaylist removes a playlist.
func (s *Store) DeletePlaylist(id int, by models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.ownedLocked(id, by); err != nil {
		return err
	}
	delete(s.playlists, id)
	return nil
}

func (s *Store) ownedLocked(id int, by models.User) (*playlistEntry, error) {
	p, ok := s.playlists[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	if p.AuthorID != by.ID && !isStaff(by) {
		return nil, shared.ErrForbidden
	}
	return p, nil
}

// renderLocked builds the wire form; ordem is 1-based and dense.
func (s *Store) renderLocked(p *playlistEntry, withItems bool) models.Playlist {
	out := p.Playlist
	out.ResourceCount = len(p.resourceIDs)
	out.Items = nil
	if withItems {
		out.Items = make([]models.PlaylistItem, 0, len(p.resourceIDs))
		for i, rid := range p.resourceIDs {
			if r, ok := s.resources[rid]; ok {
				out.Items = append(out.Items, models.PlaylistItem{Order: i + 1, Resource: *r})
			}
		}
	}
	return out
}

func isStaff(u models.User) bool {
	return u.Role == models.RoleManager || u.Role == models.RoleCoordinator
}
