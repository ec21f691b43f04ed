// HTTP client for the Acervo Mestre REST backend
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/acervomestre/acervo/internal/shared"
	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
)

// DefaultBaseURL is the production backend.
const DefaultBaseURL = "https://acervomestrebackend.onrender.com"

// APIService performs HTTP requests against the backend.
//
// Every request is built by newRequest, which is the only place the Authorization header is set.
type APIService struct {
	baseURL    string
	httpClient *http.Client
	tokens     oauth2.TokenSource
	logger     *log.Logger
}

// NewAPIService creates a new API service instance.
func NewAPIService(baseURL string, client *http.Client) *APIService {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &APIService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		logger:     log.New(io.Discard),
	}
}

// WithTokenSource sets the source of bearer tokens. A source that fails yields
// unauthenticated requests.
func (a *APIService) WithTokenSource(ts oauth2.TokenSource) *APIService {
	a.tokens = ts
	return a
}

// WithLogger sets the request logger.
func (a *APIService) WithLogger(l *log.Logger) *APIService {
	if l != nil {
		a.logger = l
	}
	return a
}

// BaseURL returns the backend address requests are sent to.
func (a *APIService) BaseURL() string { return a.baseURL }

// APIResponse represents a raw API response with status and body.
type APIResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	IsJSON     bool
	JSONData   any
}

// Get performs an authenticated GET request to the specified path and returns the raw response.
func (a *APIService) Get(ctx context.Context, path string) (*APIResponse, error) {
	return a.raw(ctx, http.MethodGet, path, nil)
}

// Post performs an authenticated POST request with the given JSON data and returns the raw response.
func (a *APIService) Post(ctx context.Context, path string, data []byte) (*APIResponse, error) {
	return a.raw(ctx, http.MethodPost, path, data)
}

func (a *APIService) raw(ctx context.Context, method, path string, data []byte) (*APIResponse, error) {
	var body io.Reader
	contentType := ""
	if data != nil {
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := a.newRequest(ctx, method, path, nil, body, contentType)
	if err != nil {
		return nil, err
	}

	resp, err := a.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       respBody,
	}

	var jsonData any
	if err := json.Unmarshal(respBody, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// newRequest builds a request for path relative to the base URL, applying the bearer token
// when the token source yields one.
func (a *APIService) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Request, error) {
	fullURL := a.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	if a.tokens != nil {
		if tok, err := a.tokens.Token(); err == nil && tok != nil && tok.AccessToken != "" {
			tok.SetAuthHeader(req)
		}
	}

	return req, nil
}

// send executes req, mapping transport failures to [shared.ErrNetwork] and cancellation to
// the context error.
func (a *APIService) send(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := a.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			if errors.Is(ctxErr, context.Canceled) {
				return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, shared.ErrCancelled)
			}
			return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, ctxErr)
		}
		a.logger.Warn("request failed", "method", req.Method, "path", req.URL.Path, "error", err)
		return nil, fmt.Errorf("%w: %s %s: %v", shared.ErrNetwork, req.Method, req.URL.Path, err)
	}

	a.logger.Debug("api request", "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode, "elapsed", time.Since(start))
	return resp, nil
}

// do sends req and decodes a 2xx JSON body into result when result is non-nil.
// Non-2xx responses become [*APIError]. Empty bodies leave result untouched.
func (a *APIService) do(req *http.Request, result any) error {
	resp, err := a.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", shared.ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			Method:     req.Method,
			Path:       req.URL.Path,
			StatusCode: resp.StatusCode,
			Detail:     decodeDetail(body),
		}
		a.logger.Warn("api error", "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode, "detail", apiErr.Detail)
		return apiErr
	}

	if result == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if raw, ok := result.(*[]byte); ok {
		*raw = body
		return nil
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// doJSON sends payload (if non-nil) as a JSON body and decodes the response into result.
func (a *APIService) doJSON(ctx context.Context, method, path string, query url.Values, payload, result any) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := a.newRequest(ctx, method, path, query, body, contentType)
	if err != nil {
		return err
	}
	return a.do(req, result)
}

// FilePart is the file of a multipart request.
type FilePart struct {
	Field    string
	FileName string
	Reader   io.Reader
}

// doMultipart sends fields in order followed by file (if non-nil) as multipart/form-data.
func (a *APIService) doMultipart(ctx context.Context, method, path string, fields [][2]string, file *FilePart, result any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, kv := range fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return fmt.Errorf("failed to write field %s: %w", kv[0], err)
		}
	}

	if file != nil {
		part, err := w.CreateFormFile(file.Field, file.FileName)
		if err != nil {
			return fmt.Errorf("failed to create file part: %w", err)
		}
		if _, err := io.Copy(part, file.Reader); err != nil {
			return fmt.Errorf("failed to copy file: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := a.newRequest(ctx, method, path, nil, &buf, w.FormDataContentType())
	if err != nil {
		return err
	}
	return a.do(req, result)
}
