package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/acervomestre/acervo/internal/shared"
	tu "github.com/acervomestre/acervo/internal/testing"
	"golang.org/x/oauth2"
)

func TestAPIService(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Custom BaseURL and Client", func(t *testing.T) {
			customClient := &http.Client{}
			srv := NewAPIService("http://example.com/", customClient)

			if srv.baseURL != "http://example.com" {
				t.Errorf("expected trailing slash trimmed, got %s", srv.baseURL)
			}
			if srv.httpClient != customClient {
				t.Error("expected custom client to be used")
			}
		})

		t.Run("With Empty BaseURL", func(t *testing.T) {
			srv := NewAPIService("", nil)

			if srv.BaseURL() != DefaultBaseURL {
				t.Errorf("expected default baseURL %s, got %s", DefaultBaseURL, srv.BaseURL())
			}
		})

		t.Run("With Nil Client", func(t *testing.T) {
			srv := NewAPIService("http://example.com", nil)

			if srv.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})
	})

	t.Run("newRequest", func(t *testing.T) {
		t.Run("Applies Bearer Token", func(t *testing.T) {
			srv := NewAPIService("http://example.com", nil).
				WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "abc"}))

			req, err := srv.newRequest(context.Background(), http.MethodGet, "/users/me", nil, nil, "")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := req.Header.Get("Authorization"); got != "Bearer abc" {
				t.Errorf("expected bearer header, got %q", got)
			}
		})

		t.Run("Skips Header Without Token", func(t *testing.T) {
			srv := NewAPIService("http://example.com", nil).WithTokenSource(tu.NewTokenSource("", shared.ErrNotAuthenticated))

			req, err := srv.newRequest(context.Background(), http.MethodGet, "/auth/login", nil, nil, "")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := req.Header.Get("Authorization"); got != "" {
				t.Errorf("expected no Authorization header, got %q", got)
			}
		})

		t.Run("Encodes Query", func(t *testing.T) {
			srv := NewAPIService("http://example.com", nil)
			opts := ListOptions{Page: 1, PerPage: 20, AuthorID: 7}

			req, err := srv.newRequest(context.Background(), http.MethodGet, "/playlists/get_all", opts.values(time.Now()), nil, "")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			q := req.URL.Query()
			if q.Get("per_page") != "20" || q.Get("autor_id") != "7" || q.Get("page") != "1" {
				t.Errorf("unexpected query %s", req.URL.RawQuery)
			}
			if q.Has("t") {
				t.Error("cache-buster should only be set when NoCache is on")
			}
		})
	})

	t.Run("do", func(t *testing.T) {
		t.Run("Decodes Detail String", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusConflict)
				w.Write([]byte(`{"detail":"Tag em uso por 3 recursos"}`))
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			err := srv.doJSON(context.Background(), http.MethodDelete, "/tags/delete/1", nil, nil, nil)

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %v", err)
			}
			if apiErr.Detail != "Tag em uso por 3 recursos" {
				t.Errorf("unexpected detail %q", apiErr.Detail)
			}
			if !errors.Is(err, shared.ErrConflict) || !errors.Is(err, shared.ErrAPIRequest) {
				t.Error("expected conflict and API request sentinels to match")
			}
			if shared.UserMessage(err) != "Tag em uso por 3 recursos" {
				t.Errorf("unexpected user message %q", shared.UserMessage(err))
			}
		})

		t.Run("Unauthorized Maps To Session Expired", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"detail":"Could not validate credentials"}`))
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			err := srv.doJSON(context.Background(), http.MethodGet, "/users/me", nil, nil, nil)

			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Fatalf("expected ErrNotAuthenticated, got %v", err)
			}
			if shared.UserMessage(err) != shared.MsgSessionExpired {
				t.Errorf("unexpected user message %q", shared.UserMessage(err))
			}
		})

		t.Run("Empty Body Leaves Result", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			var out map[string]any
			if err := srv.doJSON(context.Background(), http.MethodDelete, "/users/delete/1", nil, nil, &out); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if out != nil {
				t.Errorf("expected nil result, got %v", out)
			}
		})

		t.Run("Invalid JSON Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>"))
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			var out map[string]any
			err := srv.doJSON(context.Background(), http.MethodGet, "/x", nil, nil, &out)
			if err == nil || !strings.Contains(err.Error(), "failed to decode response") {
				t.Errorf("expected decode error, got %v", err)
			}
		})

		t.Run("Network Failure", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}
			srv := NewAPIService("http://example.com", client)

			err := srv.doJSON(context.Background(), http.MethodGet, "/tags/get_all", nil, nil, nil)
			if !errors.Is(err, shared.ErrNetwork) {
				t.Fatalf("expected ErrNetwork, got %v", err)
			}
			if shared.UserMessage(err) != shared.MsgNetwork {
				t.Errorf("unexpected user message %q", shared.UserMessage(err))
			}
		})

		t.Run("Failed Response Body Read", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     http.Header{},
				}, nil),
			}

			srv := NewAPIService("http://example.com", client)
			err := srv.doJSON(context.Background(), http.MethodGet, "/x", nil, nil, nil)
			if !errors.Is(err, shared.ErrNetwork) {
				t.Errorf("expected ErrNetwork, got %v", err)
			}
		})

		t.Run("Canceled Context", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			srv := NewAPIService(server.URL, nil)
			err := srv.doJSON(ctx, http.MethodGet, "/x", nil, nil, nil)
			if !errors.Is(err, shared.ErrCancelled) {
				t.Errorf("expected ErrCancelled, got %v", err)
			}
		})

		t.Run("Timeout", func(t *testing.T) {
			release := make(chan struct{})
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-release:
				case <-r.Context().Done():
				}
			}))
			defer server.Close()
			defer close(release)

			srv := NewAPIService(server.URL, &http.Client{Timeout: 50 * time.Millisecond})
			err := srv.doJSON(context.Background(), http.MethodGet, "/slow", nil, nil, nil)
			if !errors.Is(err, shared.ErrNetwork) {
				t.Errorf("expected timeout to surface as ErrNetwork, got %v", err)
			}
		})
	})

	t.Run("doMultipart", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Errorf("failed to parse multipart: %v", err)
			}
			if r.FormValue("titulo") != "Aula 1" {
				t.Errorf("expected titulo field, got %q", r.FormValue("titulo"))
			}
			if got := r.MultipartForm.Value["tag_ids"]; len(got) != 2 {
				t.Errorf("expected repeated tag_ids, got %v", got)
			}
			f, hdr, err := r.FormFile("file")
			if err != nil {
				t.Fatalf("expected file part: %v", err)
			}
			defer f.Close()
			data, _ := io.ReadAll(f)
			if hdr.Filename != "aula.pdf" || string(data) != "%PDF-1.4" {
				t.Errorf("unexpected file %s %q", hdr.Filename, data)
			}
			json.NewEncoder(w).Encode(map[string]any{"id": 1})
		}))
		defer server.Close()

		srv := NewAPIService(server.URL, nil)
		fields := [][2]string{{"titulo", "Aula 1"}, {"tag_ids", "1"}, {"tag_ids", "2"}}
		file := &FilePart{Field: "file", FileName: "aula.pdf", Reader: strings.NewReader("%PDF-1.4")}

		var out struct {
			ID int `json:"id"`
		}
		if err := srv.doMultipart(context.Background(), http.MethodPost, "/recursos/create", fields, file, &out); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if out.ID != 1 {
			t.Errorf("expected decoded id 1, got %d", out.ID)
		}
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("Successful Request With JSON Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET method, got %s", r.Method)
				}
				if r.URL.Path != "/test" {
					t.Errorf("expected path '/test', got %s", r.URL.Path)
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(map[string]string{"status": "success"})
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			resp, err := srv.Get(context.Background(), "/test")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.StatusCode != http.StatusOK {
				t.Errorf("expected status 200, got %d", resp.StatusCode)
			}
			if !resp.IsJSON {
				t.Error("expected response to be JSON")
			}
		})

		t.Run("Non-2xx Is Returned Raw", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte("plain text response"))
			}))
			defer server.Close()

			srv := NewAPIService(server.URL, nil)
			resp, err := srv.Get(context.Background(), "/test")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.IsJSON || resp.StatusCode != http.StatusNotFound {
				t.Errorf("unexpected response %+v", resp)
			}
		})

		t.Run("Failed Request Creation", func(t *testing.T) {
			srv := NewAPIService("http://example.com", nil)
			_, err := srv.Get(context.Background(), "/test\x00invalid")

			if err == nil || !strings.Contains(err.Error(), "failed to create request") {
				t.Errorf("expected 'failed to create request' error, got %v", err)
			}
		})

		t.Run("Failed Response Body Read", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     http.Header{},
				}, nil),
			}

			srv := NewAPIService("http://example.com", client)
			_, err := srv.Get(context.Background(), "/test")

			if err == nil || !strings.Contains(err.Error(), "failed to read response") {
				t.Errorf("expected 'failed to read response' error, got %v", err)
			}
		})
	})

	t.Run("Post", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Content-Type") != "application/json" {
				t.Errorf("expected Content-Type 'application/json', got %s", r.Header.Get("Content-Type"))
			}
			if r.Header.Get("Authorization") != "Bearer tok" {
				t.Errorf("expected bearer header, got %q", r.Header.Get("Authorization"))
			}

			body, _ := io.ReadAll(r.Body)
			var data map[string]string
			if err := json.Unmarshal(body, &data); err != nil {
				t.Errorf("failed to unmarshal request body: %v", err)
			}

			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]string{"id": "123"})
		}))
		defer server.Close()

		srv := NewAPIService(server.URL, nil).WithTokenSource(tu.NewTokenSource("tok", nil))
		resp, err := srv.Post(context.Background(), "/tags/create", []byte(`{"nome":"Math"}`))

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.StatusCode != http.StatusCreated || !resp.IsJSON {
			t.Errorf("unexpected response %+v", resp)
		}
	})
}

func TestDecodeDetail(t *testing.T) {
	tc := []struct {
		name string
		body string
		want string
	}{
		{"string", `{"detail":"Recurso não encontrado"}`, "Recurso não encontrado"},
		{"validation list", `{"detail":[{"loc":["body","email"],"msg":"field required"},{"loc":["body",0],"msg":"bad"}]}`, "email: field required; bad"},
		{"no detail", `{"message":"x"}`, ""},
		{"not json", `Internal Server Error`, ""},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := decodeDetail([]byte(tt.body)); got != tt.want {
				t.Errorf("decodeDetail() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAPIError(t *testing.T) {
	t.Run("Message Wins Over Detail", func(t *testing.T) {
		err := withStatusMessages(&APIError{StatusCode: 401, Detail: "Incorrect"}, map[int]string{401: "E-mail ou senha incorretos."})
		if shared.UserMessage(err) != "E-mail ou senha incorretos." {
			t.Errorf("unexpected message %q", shared.UserMessage(err))
		}
	})

	t.Run("Fallback Without Detail", func(t *testing.T) {
		err := withFallback(&APIError{StatusCode: 500}, "Erro ao salvar ordem")
		if shared.UserMessage(err) != "Erro ao salvar ordem" {
			t.Errorf("unexpected message %q", shared.UserMessage(err))
		}
		if StatusCode(err) != 500 {
			t.Errorf("expected status 500, got %d", StatusCode(err))
		}
	})

	t.Run("Nil Passes Through", func(t *testing.T) {
		if withFallback(nil, "x") != nil || withStatusMessages(nil, nil) != nil {
			t.Error("expected nil errors to pass through")
		}
	})

	t.Run("Sentinels", func(t *testing.T) {
		if !errors.Is(&APIError{StatusCode: 404}, shared.ErrNotFound) {
			t.Error("404 should match ErrNotFound")
		}
		if errors.Is(&APIError{StatusCode: 404}, shared.ErrNotAuthenticated) {
			t.Error("404 should not match ErrNotAuthenticated")
		}
		if !errors.Is(&APIError{StatusCode: 403}, shared.ErrForbidden) {
			t.Error("403 should match ErrForbidden")
		}
	})
}
