// package models defines the wire DTOs and view-models of the Acervo Mestre catalog client
package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Structure is the submission mode of a resource.
type Structure string

const (
	StructureUpload Structure = "UPLOAD"
	StructureURL    Structure = "URL"
	StructureNote   Structure = "NOTA"
)

// ParseStructure accepts the wire values case-insensitively plus a few CLI aliases.
func ParseStructure(s string) (Structure, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "UPLOAD", "FILE", "ARQUIVO":
		return StructureUpload, nil
	case "URL", "LINK":
		return StructureURL, nil
	case "NOTA", "NOTE":
		return StructureNote, nil
	}
	return "", fmt.Errorf("unknown structure %q", s)
}

// Visibility of a resource or playlist.
type Visibility string

const (
	VisibilityPublic  Visibility = "PUBLICO"
	VisibilityPrivate Visibility = "PRIVADO"
)

// Label returns the display text, defaulting to "Público".
func (v Visibility) Label() string {
	if v == VisibilityPrivate {
		return "Privado"
	}
	return "Público"
}

// UserStatus is the account state reported by the backend.
type UserStatus string

const (
	StatusActive   UserStatus = "Ativo"
	StatusInactive UserStatus = "Inativo"
	StatusPending  UserStatus = "AguardandoAtivacao"
)

// Roles offered by the user forms.
const (
	RoleManager     = "Gestor"
	RoleCoordinator = "Coordenador"
	RoleTeacher     = "Professor"
	RoleStudent     = "Aluno"
)

// Roles lists the selectable roles in form order.
var Roles = []string{RoleManager, RoleCoordinator, RoleTeacher, RoleStudent}

const (
	defaultRole   = "Indefinido"
	defaultName   = "Sem Nome"
	defaultAuthor = "Professor"
	defaultTopic  = "Geral"
)

// User is an account as returned by /users/*.
//
// The backend is inconsistent about the role field: it arrives as perfil.nome, as a bare perfil
// string or as role. Decoding folds all of them into Role.
type User struct {
	ID        int        `json:"id"`
	Name      string     `json:"nome"`
	Email     string     `json:"email"`
	Role      string     `json:"perfil"`
	ImageURL  string     `json:"url_perfil,omitempty"`
	BirthDate string     `json:"data_nascimento,omitempty"`
	Status    UserStatus `json:"status"`
}

// UnmarshalJSON implements [json.Unmarshaler].
func (u *User) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        int             `json:"id"`
		Nome      string          `json:"nome"`
		Name      string          `json:"name"`
		Email     string          `json:"email"`
		Perfil    json.RawMessage `json:"perfil"`
		Role      string          `json:"role"`
		URLPerfil string          `json:"url_perfil"`
		Birth     string          `json:"data_nascimento"`
		Status    UserStatus      `json:"status"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*u = User{
		ID:        raw.ID,
		Name:      firstNonEmpty(raw.Nome, raw.Name, defaultName),
		Email:     raw.Email,
		Role:      firstNonEmpty(roleName(raw.Perfil), raw.Role, defaultRole),
		ImageURL:  raw.URLPerfil,
		BirthDate: raw.Birth,
		Status:    raw.Status,
	}
	if u.Status == "" {
		u.Status = StatusInactive
	}
	return nil
}

// Active reports whether the account status is Ativo.
func (u User) Active() bool { return u.Status == StatusActive }

func roleName(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var obj struct {
		Nome string `json:"nome"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Nome != "" {
		return obj.Nome
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

// Tag is one entry of the tag taxonomy.
type Tag struct {
	ID   int    `json:"id"`
	Name string `json:"nome"`
}

// Author is the nested author reference some resource payloads carry.
type Author struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"nome"`
}

// Resource is a learning resource as returned by /recursos/*.
type Resource struct {
	ID          int        `json:"id"`
	Title       string     `json:"titulo"`
	Description string     `json:"descricao"`
	Structure   Structure  `json:"estrutura"`
	MimeType    string     `json:"mime_type,omitempty"`
	Tags        []Tag      `json:"tags"`
	Views       int        `json:"visualizacoes"`
	Downloads   int        `json:"downloads"`
	Likes       int        `json:"curtidas"`
	Featured    bool       `json:"is_destaque"`
	Visibility  Visibility `json:"visibilidade,omitempty"`
	Author      *Author    `json:"autor,omitempty"`
	AuthorName  string     `json:"autor_nome,omitempty"`
	AuthorID    int        `json:"autor_id,omitempty"`
	ExternalURL string     `json:"url_externa,omitempty"`
	Content     string     `json:"conteudo_markdown,omitempty"`
	AccessLink  string     `json:"link_acesso,omitempty"`
}

// Owner returns the author display name from whichever field the payload filled.
func (r Resource) Owner() string {
	if r.Author != nil && r.Author.Name != "" {
		return r.Author.Name
	}
	return r.AuthorName
}

// OwnerID returns the author id from autor_id or the nested autor object.
func (r Resource) OwnerID() int {
	if r.AuthorID != 0 {
		return r.AuthorID
	}
	if r.Author != nil {
		return r.Author.ID
	}
	return 0
}

// TagNames returns the names of the attached tags in order.
func (r Resource) TagNames() []string {
	names := make([]string, 0, len(r.Tags))
	for _, t := range r.Tags {
		names = append(names, t.Name)
	}
	return names
}

// Link returns the address that opens the resource: the access link, else the external url.
func (r Resource) Link() string {
	if r.AccessLink != "" {
		return r.AccessLink
	}
	return r.ExternalURL
}

// PlaylistItem pairs a resource with its position inside a playlist.
type PlaylistItem struct {
	Order    int      `json:"ordem"`
	Resource Resource `json:"recurso"`
}

// Playlist is an ordered collection of resources as returned by /playlists/*.
type Playlist struct {
	ID            int            `json:"id"`
	Title         string         `json:"titulo"`
	Description   string         `json:"descricao"`
	Visibility    Visibility     `json:"visibilidade,omitempty"`
	AuthorID      int            `json:"autor_id,omitempty"`
	AuthorName    string         `json:"autor_nome,omitempty"`
	ResourceCount int            `json:"quantidade_recursos"`
	Items         []PlaylistItem `json:"recursos,omitempty"`
}

// Count returns quantidade_recursos, falling back to the number of embedded items.
func (p Playlist) Count() int {
	if p.ResourceCount == 0 {
		return len(p.Items)
	}
	return p.ResourceCount
}

// TokenPair is the body of a successful login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"`
}

// Page is the paginated envelope of list endpoints.
type Page[T any] struct {
	Items   []T `json:"items"`
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

// DecodeItems decodes a list response that is either a bare JSON array or a [Page] envelope.
func DecodeItems[T any](data []byte) ([]T, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var page Page[T]
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, err
	}
	if page.Items == nil {
		return []T{}, nil
	}
	return page.Items, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
