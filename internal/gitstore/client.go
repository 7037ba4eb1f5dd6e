package gitstore

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-gitcms/internal/logging"
	"github.com/goliatone/go-gitcms/pkg/interfaces"
)

const defaultEndpoint = "https://api.github.com"

var (
	ErrOwnerRequired     = errors.New("gitstore: repository owner is required")
	ErrRepoRequired      = errors.New("gitstore: repository name is required")
	ErrPathRequired      = errors.New("gitstore: file path is required")
	ErrMessageRequired   = errors.New("gitstore: commit message is required")
	ErrCommitterRequired = errors.New("gitstore: committer name and email are required")
)

// Config parameterises the contents-API client by repository identity,
// branch, and credentials.
type Config struct {
	Endpoint string
	Owner    string
	Repo     string
	Branch   string
	Token    string

	HTTPClient *http.Client
	Logger     interfaces.Logger
}

// Client implements interfaces.FileStore against the GitHub contents API.
// Reads return the blob SHA as the integrity token; writes send it back so
// the remote store can reject lost updates.
type Client struct {
	endpoint string
	owner    string
	repo     string
	branch   string
	token    string

	http   *http.Client
	logger interfaces.Logger
}

var _ interfaces.FileStore = (*Client)(nil)

// New validates the configuration and constructs a store client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Owner) == "" {
		return nil, ErrOwnerRequired
	}
	if strings.TrimSpace(cfg.Repo) == "" {
		return nil, ErrRepoRequired
	}

	endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}

	return &Client{
		endpoint: endpoint,
		owner:    strings.TrimSpace(cfg.Owner),
		repo:     strings.TrimSpace(cfg.Repo),
		branch:   strings.TrimSpace(cfg.Branch),
		token:    strings.TrimSpace(cfg.Token),
		http:     httpClient,
		logger:   logger,
	}, nil
}

type contentsResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
	SHA      string `json:"sha"`
}

type writeResponse struct {
	Content *contentsResponse `json:"content"`
}

type writeRequest struct {
	Message   string          `json:"message"`
	Content   string          `json:"content"`
	Branch    string          `json:"branch,omitempty"`
	SHA       string          `json:"sha,omitempty"`
	Committer committerFields `json:"committer"`
}

type committerFields struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Read fetches the full content of path at the configured branch together
// with its current integrity token.
func (c *Client) Read(ctx context.Context, path string) (interfaces.File, error) {
	if strings.TrimSpace(path) == "" {
		return interfaces.File{}, ErrPathRequired
	}

	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return interfaces.File{}, unavailableError(err, "build read request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return interfaces.File{}, unavailableError(err, "read transport failure")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return interfaces.File{}, notFoundError(path)
	case resp.StatusCode != http.StatusOK:
		return interfaces.File{}, unavailableError(nil, fmt.Sprintf("read %q: unexpected status %d", path, resp.StatusCode))
	}

	var payload contentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return interfaces.File{}, unavailableError(err, "decode read response")
	}

	content, err := decodeContent(payload)
	if err != nil {
		return interfaces.File{}, unavailableError(err, "decode file content")
	}

	c.logger.Debug("store.read", "path", path, "token", payload.SHA, "bytes", len(content))

	return interfaces.File{
		Path:    path,
		Content: content,
		Token:   payload.SHA,
	}, nil
}

// Write replaces the content of path as a single revision. A non-empty
// opts.Token makes the write conditional on the path still carrying that
// token; an empty token requests a fresh create. Every write records the
// commit message and committer identity.
func (c *Client) Write(ctx context.Context, path string, content []byte, opts interfaces.WriteOptions) (interfaces.File, error) {
	if strings.TrimSpace(path) == "" {
		return interfaces.File{}, ErrPathRequired
	}
	if strings.TrimSpace(opts.Message) == "" {
		return interfaces.File{}, ErrMessageRequired
	}
	if strings.TrimSpace(opts.Committer.Name) == "" || strings.TrimSpace(opts.Committer.Email) == "" {
		return interfaces.File{}, ErrCommitterRequired
	}

	body := writeRequest{
		Message: opts.Message,
		Content: base64.StdEncoding.EncodeToString(content),
		Branch:  c.branch,
		SHA:     opts.Token,
		Committer: committerFields{
			Name:  opts.Committer.Name,
			Email: opts.Committer.Email,
		},
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return interfaces.File{}, unavailableError(err, "encode write request")
	}

	req, err := c.newRequest(ctx, http.MethodPut, path, bytes.NewReader(encoded))
	if err != nil {
		return interfaces.File{}, unavailableError(err, "build write request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return interfaces.File{}, unavailableError(err, "write transport failure")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		// fallthrough to decode below
	case http.StatusConflict:
		return interfaces.File{}, conflictError(path)
	case http.StatusUnprocessableEntity:
		// The contents API answers 422 both for a stale token and for a
		// tokenless create against an existing path.
		if opts.Token == "" {
			return interfaces.File{}, alreadyExistsError(path)
		}
		return interfaces.File{}, conflictError(path)
	case http.StatusNotFound:
		return interfaces.File{}, unavailableError(nil, fmt.Sprintf("write %q: repository or branch not found", path))
	default:
		return interfaces.File{}, unavailableError(nil, fmt.Sprintf("write %q: unexpected status %d", path, resp.StatusCode))
	}

	var payload writeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return interfaces.File{}, unavailableError(err, "decode write response")
	}

	newToken := ""
	if payload.Content != nil {
		newToken = payload.Content.SHA
	}

	c.logger.Info("store.write", "path", path, "token", newToken, "bytes", len(content))

	return interfaces.File{
		Path:    path,
		Content: append([]byte(nil), content...),
		Token:   newToken,
	}, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	target := fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.endpoint, c.owner, c.repo, escapePath(path))
	if method == http.MethodGet && c.branch != "" {
		target += "?ref=" + url.QueryEscape(c.branch)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func escapePath(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

func decodeContent(payload contentsResponse) ([]byte, error) {
	if payload.Encoding != "" && payload.Encoding != "base64" {
		return nil, fmt.Errorf("unsupported content encoding %q", payload.Encoding)
	}
	// The API wraps base64 payloads with newlines.
	compact := strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r':
			return -1
		}
		return r
	}, payload.Content)
	return base64.StdEncoding.DecodeString(compact)
}
