// Package testing holds fixtures and test doubles shared by the acervo packages.
package testing

import (
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"testing"

	"golang.org/x/oauth2"

	"github.com/acervomestre/acervo/internal/models"
)

// PlaylistOf builds a playlist whose items follow the order of resources, starting at 1.
func PlaylistOf(id int, title string, resources ...models.Resource) models.Playlist {
	p := models.Playlist{ID: id, Title: title, Visibility: models.VisibilityPublic}
	for i, r := range resources {
		p.Items = append(p.Items, models.PlaylistItem{Order: i + 1, Resource: r})
	}
	return p
}

// Upload is an uploaded PDF resource fixture.
func Upload(id int, title string) models.Resource {
	return models.Resource{ID: id, Title: title, Structure: models.StructureUpload, MimeType: "application/pdf"}
}

// Note is a markdown note resource fixture.
func Note(id int, title, content string) models.Resource {
	return models.Resource{ID: id, Title: title, Structure: models.StructureNote, Content: content}
}

// TokenSource is a static [oauth2.TokenSource] that can also fail.
type TokenSource struct {
	token string
	err   error
}

func NewTokenSource(token string, err error) *TokenSource {
	return &TokenSource{token: token, err: err}
}

func (s *TokenSource) Token() (*oauth2.Token, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &oauth2.Token{AccessToken: s.token, TokenType: "Bearer"}, nil
}

// ConfirmFunc answers every prompt with answer. Prompts are recorded when prompts is not nil.
func ConfirmFunc(answer bool, prompts *[]string) func(string) bool {
	return func(prompt string) bool {
		if prompts != nil {
			*prompts = append(*prompts, prompt)
		}
		return answer
	}
}

var (
	errWrite = errors.New("write failed")
	errRead  = errors.New("read failed")
)

// FWriter fails every write.
type FWriter struct{}

func (*FWriter) Write([]byte) (int, error) { return 0, errWrite }

// LimitedWriter forwards to target until maxWrites writes have happened.
type LimitedWriter struct {
	maxWrites, written int
	target             io.Writer
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func (l *LimitedWriter) Write(p []byte) (int, error) {
	if l.written >= l.maxWrites {
		return 0, errWrite
	}
	l.written++
	return l.target.Write(p)
}

// RoundTripper answers every request with a canned response or error.
type RoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *RoundTripper {
	return &RoundTripper{response: r, err: e}
}

func (m *RoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser is a response body whose reads fail.
type FCloser struct{}

func (*FCloser) Read([]byte) (int, error) { return 0, errRead }
func (*FCloser) Close() error             { return nil }

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected file %s to exist", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		t.Errorf("expected directory %s to exist", path)
	case err == nil && !info.IsDir():
		t.Errorf("expected %s to be a directory", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(content)
}
