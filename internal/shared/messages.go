package shared

import (
	"context"
	"errors"
)

// UserFacing is implemented by errors that carry a message meant for the end user.
type UserFacing interface {
	UserMessage() string
}

// Fallback messages shown when no better text is available.
const (
	MsgNetwork        = "Falha ao conectar com o servidor."
	MsgSessionExpired = "Sessão expirada. Por favor, faça login novamente."
	MsgUnexpected     = "Ocorreu um erro inesperado."
)

var validationMessages = []struct {
	err error
	msg string
}{
	{ErrPasswordMismatch, "As senhas não coincidem!"},
	{ErrPasswordTooShort, "A senha deve ter pelo menos 4 caracteres."},
	{ErrInvalidEmail, "O formato do e-mail inserido é inválido."},
	{ErrDuplicateTag, "Esta tag já existe."},
	{ErrBusy, "Aguarde a conclusão da operação."},
	{ErrCancelled, "Operação cancelada."},
}

// UserMessage turns any error into the single line shown to the user.
//
// Errors implementing [UserFacing] win; validation sentinels map to fixed texts; network
// failures and expired sessions get generic texts.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var uf UserFacing
	if errors.As(err, &uf) {
		if msg := uf.UserMessage(); msg != "" {
			return msg
		}
	}

	for _, vm := range validationMessages {
		if errors.Is(err, vm.err) {
			return vm.msg
		}
	}

	switch {
	case errors.Is(err, ErrNotAuthenticated):
		return MsgSessionExpired
	case errors.Is(err, ErrNetwork), errors.Is(err, context.DeadlineExceeded):
		return MsgNetwork
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrMissingArgument):
		return err.Error()
	}

	return MsgUnexpected
}

// ValidationError is a client-side validation failure with a localized message.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError builds a [ValidationError] wrapping [ErrInvalidInput] unless err is given.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrInvalidInput
	}
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string       { return e.Field + ": " + e.Message }
func (e *ValidationError) Unwrap() error       { return e.Err }
func (e *ValidationError) UserMessage() string { return e.Message }
