package shared

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

type facing struct{ msg string }

func (f facing) Error() string       { return "facing" }
func (f facing) UserMessage() string { return f.msg }

func TestValidEmail(t *testing.T) {
	tc := []struct {
		email string
		want  bool
	}{
		{"ana@escola.edu.br", true},
		{"a@b.c", true},
		{"sem-arroba.com", false},
		{"com espaco@x.com", false},
		{"a@semponto", false},
		{"", false},
	}

	for _, tt := range tc {
		t.Run(tt.email, func(t *testing.T) {
			if got := ValidEmail(tt.email); got != tt.want {
				t.Errorf("ValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tc := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"user facing wins", fmt.Errorf("wrapped: %w", facing{"Tag em uso"}), "Tag em uso"},
		{"empty user facing falls through", facing{""}, MsgUnexpected},
		{"password mismatch", fmt.Errorf("form: %w", ErrPasswordMismatch), "As senhas não coincidem!"},
		{"not authenticated", ErrNotAuthenticated, MsgSessionExpired},
		{"network", fmt.Errorf("%w: dial tcp", ErrNetwork), MsgNetwork},
		{"validation error", NewValidationError("titulo", "Título é obrigatório", nil), "Título é obrigatório"},
		{"unknown", errors.New("boom"), MsgUnexpected},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("senha", "As senhas não coincidem!", ErrPasswordMismatch)
	if !errors.Is(err, ErrPasswordMismatch) {
		t.Error("expected validation error to wrap ErrPasswordMismatch")
	}

	plain := NewValidationError("titulo", "Título é obrigatório", nil)
	if !errors.Is(plain, ErrInvalidInput) {
		t.Error("expected default validation error to wrap ErrInvalidInput")
	}
}

func TestParseLevel(t *testing.T) {
	if got := ParseLevel("DEBUG"); got != log.DebugLevel {
		t.Errorf("expected debug level, got %v", got)
	}
	if got := ParseLevel("nonsense"); got != log.InfoLevel {
		t.Errorf("expected info fallback, got %v", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("Álgebra Básica", 7); got != "Álgebr…" {
		t.Errorf("unexpected truncation %q", got)
	}
	if got := Truncate("curto", 10); got != "curto" {
		t.Errorf("short strings should be kept, got %q", got)
	}
}

func TestVerifyAndReadFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "nota.md")
	if err := os.WriteFile(p, []byte("# Nota"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	data, err := VerifyAndReadFile(p)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(data) != "# Nota" {
		t.Errorf("unexpected content %q", string(data))
	}

	if _, err := VerifyAndReadFile(dir); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for directory, got %v", err)
	}
	if _, err := VerifyAndReadFile(""); !errors.Is(err, ErrMissingArgument) {
		t.Errorf("expected ErrMissingArgument for empty path, got %v", err)
	}
}

func TestNewFileLogger(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "acervo.log")
	logger, err := NewFileLogger(p)
	if err != nil {
		t.Fatalf("failed to create file logger: %v", err)
	}
	logger.Info("hello")

	if _, err := os.Stat(p); err != nil {
		t.Errorf("expected log file to exist: %v", err)
	}
}

func TestResolveLink(t *testing.T) {
	tc := []struct {
		name, base, link, want string
		err                    error
	}{
		{"relative upload", "http://localhost:8080", "/static/recursos/3/arquivo", "http://localhost:8080/static/recursos/3/arquivo", nil},
		{"external", "http://localhost:8080", "https://www.youtube.com/watch?v=abc", "https://www.youtube.com/watch?v=abc", nil},
		{"empty", "http://localhost:8080", "", "", ErrInvalidArgument},
		{"bad scheme", "http://localhost:8080", "javascript:alert(1)", "", ErrInvalidArgument},
		{"relative without base", "", "/static/x", "", ErrInvalidConfig},
	}
	for _, c := range tc {
		t.Run(c.name, func(t *testing.T) {
			got, err := ResolveLink(c.base, c.link)
			if c.err != nil {
				if !errors.Is(err, c.err) {
					t.Fatalf("expected %v, got %v", c.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != c.want {
				t.Errorf("expected %q, got %q", c.want, got)
			}
		})
	}
}

func TestOpenLink(t *testing.T) {
	origRuntime, origOpen := getRuntime, openCommand
	t.Cleanup(func() { getRuntime, openCommand = origRuntime, origOpen })

	var gotName string
	var gotArgs []string
	openCommand = func(name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	}

	t.Run("linux", func(t *testing.T) {
		getRuntime = func() string { return "linux" }
		if err := OpenLink("http://localhost:8080", "/static/recursos/1/arquivo"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotName != "xdg-open" || len(gotArgs) != 1 || gotArgs[0] != "http://localhost:8080/static/recursos/1/arquivo" {
			t.Errorf("unexpected command %s %v", gotName, gotArgs)
		}
	})

	t.Run("unsupported platform", func(t *testing.T) {
		getRuntime = func() string { return "plan9" }
		if err := OpenLink("http://localhost:8080", "https://example.com"); err == nil {
			t.Error("expected error for unsupported platform")
		}
	})

	t.Run("opener failure", func(t *testing.T) {
		getRuntime = func() string { return "darwin" }
		openCommand = func(string, ...string) error { return fmt.Errorf("boom") }
		if err := OpenLink("", "https://example.com"); err == nil {
			t.Error("expected opener error")
		}
	})
}

func TestCheckStruct(t *testing.T) {
	type signup struct {
		Name  string `validate:"required"`
		Email string `validate:"required,acervo_email"`
		Age   int    `validate:"min=18"`
	}
	rules := map[string]Rule{
		"required":           {Field: "cadastro", Message: "Preencha todos os campos."},
		"Email." + EmailRule: {Field: "email", Err: ErrInvalidEmail},
		"Age":                {Field: "idade", Message: "Idade mínima: %v"},
	}

	t.Run("valid", func(t *testing.T) {
		if err := CheckStruct(signup{Name: "Ana", Email: "ana@x.com", Age: 30}, rules); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("required wins over format", func(t *testing.T) {
		err := CheckStruct(signup{Email: "ana@x", Age: 30}, rules)
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != "cadastro" {
			t.Fatalf("expected the required rule, got %v", err)
		}
		if !errors.Is(err, ErrInvalidInput) {
			t.Error("expected ErrInvalidInput by default")
		}
	})

	t.Run("bare sentinel", func(t *testing.T) {
		err := CheckStruct(signup{Name: "Ana", Email: "ana@x", Age: 30}, rules)
		if !errors.Is(err, ErrInvalidEmail) {
			t.Errorf("expected ErrInvalidEmail, got %v", err)
		}
	})

	t.Run("formatted value", func(t *testing.T) {
		err := CheckStruct(signup{Name: "Ana", Email: "ana@x.com", Age: 12}, rules)
		if UserMessage(err) != "Idade mínima: 12" {
			t.Errorf("unexpected message %q", UserMessage(err))
		}
	})

	t.Run("partial", func(t *testing.T) {
		if err := CheckStruct(signup{Name: "Ana", Age: 1}, rules, "Name"); err != nil {
			t.Errorf("only Name should be checked, got %v", err)
		}
	})

	t.Run("unknown rule", func(t *testing.T) {
		err := CheckStruct(signup{Name: "Ana", Email: "ana@x.com"}, map[string]Rule{})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}
