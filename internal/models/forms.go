package models

import (
	"io"
	"strconv"
	"strings"

	"github.com/acervomestre/acervo/internal/shared"
)

// ResourceForm is the input of the resource submission flow.
// Only the field matching Mode is sent.
type ResourceForm struct {
	Title       string    `validate:"required"`
	Mode        Structure `validate:"oneof=UPLOAD URL NOTA"`
	Description string
	Visibility  Visibility `validate:"omitempty,oneof=PUBLICO PRIVADO"`
	Featured    bool
	TagIDs      []int
	FileName    string    `validate:"required_if=Mode UPLOAD"`
	File        io.Reader `validate:"-"`
	URL         string    `validate:"required_if=Mode URL"`
	Content     string    `validate:"required_if=Mode NOTA"`
}

var fileMissing = shared.Rule{Field: "file", Message: "Por favor, selecione um arquivo"}

var resourceRules = map[string]shared.Rule{
	"Title":      {Field: "titulo", Message: "Título é obrigatório"},
	"Mode":       {Field: "estrutura", Message: "Estrutura desconhecida: %q"},
	"Visibility": {Field: "visibilidade", Message: "Visibilidade desconhecida: %q"},
	"FileName":   fileMissing,
	"URL":        {Field: "url_externa", Message: "URL é obrigatória"},
	"Content":    {Field: "conteudo_markdown", Message: "Conteúdo é obrigatório"},
}

// Validate checks the required fields of the selected mode. Blank text counts as missing.
func (f ResourceForm) Validate() error {
	trimmed := f
	trimmed.Title = strings.TrimSpace(f.Title)
	trimmed.URL = strings.TrimSpace(f.URL)
	trimmed.Content = strings.TrimSpace(f.Content)
	if err := shared.CheckStruct(trimmed, resourceRules); err != nil {
		return err
	}
	if f.Mode == StructureUpload && f.File == nil {
		return shared.NewValidationError(fileMissing.Field, fileMissing.Message, nil)
	}
	return nil
}

// Fields returns the multipart text fields in submission order. The file part is not included.
func (f ResourceForm) Fields() [][2]string {
	visibility := f.Visibility
	if visibility == "" {
		visibility = VisibilityPublic
	}

	fields := [][2]string{
		{"titulo", strings.TrimSpace(f.Title)},
		{"descricao", f.Description},
		{"estrutura", string(f.Mode)},
		{"visibilidade", string(visibility)},
		{"is_destaque", strconv.FormatBool(f.Featured)},
	}
	for _, id := range f.TagIDs {
		fields = append(fields, [2]string{"tag_ids", strconv.Itoa(id)})
	}

	switch f.Mode {
	case StructureURL:
		fields = append(fields, [2]string{"url_externa", strings.TrimSpace(f.URL)})
	case StructureNote:
		fields = append(fields, [2]string{"conteudo_markdown", f.Content})
	}
	return fields
}

// PlaylistForm is the input of playlist create and update.
type PlaylistForm struct {
	Title       string `json:"titulo" validate:"required"`
	Description string `json:"descricao"`
}

var playlistRules = map[string]shared.Rule{
	"Title": {Field: "titulo", Message: "O Título da playlist é obrigatório."},
}

// Validate requires a title.
func (f PlaylistForm) Validate() error {
	f.Title = strings.TrimSpace(f.Title)
	return shared.CheckStruct(f, playlistRules)
}

// UserForm is the input of the admin user create and edit flows, and of profile edits.
type UserForm struct {
	Name      string `json:"nome" validate:"required"`
	Email     string `json:"email" validate:"required,acervo_email"`
	Role      string `json:"perfil,omitempty" validate:"required"`
	BirthDate string `json:"data_nascimento,omitempty" validate:"required"`
	Password  string `json:"senha,omitempty"`
}

// ValidateCreate requires name, email, role and birth date, and a well-formed email.
func (f UserForm) ValidateCreate() error {
	return f.check("Nome, E-mail, Perfil e Data de Nascimento são obrigatórios.", "Name", "Email", "Role", "BirthDate")
}

// ValidateUpdate requires name, email and role, and a well-formed email.
func (f UserForm) ValidateUpdate() error {
	return f.check("Nome, E-mail e Perfil são obrigatórios.", "Name", "Email", "Role")
}

// ValidateProfile requires name and email only; role changes are an admin action.
func (f UserForm) ValidateProfile() error {
	return f.check("Nome e E-mail são obrigatórios.", "Name", "Email")
}

func (f UserForm) check(missing string, fields ...string) error {
	rules := map[string]shared.Rule{
		"required":                  {Field: "usuario", Message: missing},
		"Email." + shared.EmailRule: {Field: "email", Err: shared.ErrInvalidEmail},
	}
	trimmed := UserForm{
		Name:      strings.TrimSpace(f.Name),
		Email:     strings.TrimSpace(f.Email),
		Role:      strings.TrimSpace(f.Role),
		BirthDate: strings.TrimSpace(f.BirthDate),
	}
	return shared.CheckStruct(trimmed, rules, fields...)
}

// Payload returns the trimmed form, dropping a blank password.
func (f UserForm) Payload() UserForm {
	p := UserForm{
		Name:      strings.TrimSpace(f.Name),
		Email:     strings.TrimSpace(f.Email),
		Role:      f.Role,
		BirthDate: f.BirthDate,
	}
	if strings.TrimSpace(f.Password) != "" {
		p.Password = f.Password
	}
	return p
}

// PasswordForm is the input of the activate and reset flows.
type PasswordForm struct {
	Password string `validate:"eqfield=Confirm,min=4"`
	Confirm  string
}

var passwordRules = map[string]shared.Rule{
	"Password.eqfield": {Field: "senha", Err: shared.ErrPasswordMismatch},
	"Password.min":     {Field: "senha", Err: shared.ErrPasswordTooShort},
}

// Validate requires matching passwords of at least four characters.
func (f PasswordForm) Validate() error {
	return shared.CheckStruct(f, passwordRules)
}
