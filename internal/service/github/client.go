package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	applog "github.com/janisto/devconnector-api/internal/platform/logging"
)

const (
	defaultBaseURL = "https://api.github.com"
	userAgent      = "devconnector-api"
	apiVersion     = "2022-11-28"
	acceptHeader   = "application/vnd.github+json"
	maxRepoLimit   = 100
)

// Client implements Service with the GitHub REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root, such as an httptest server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithToken authenticates requests, raising the rate limit.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func NewClient(httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	c := &Client{httpClient: httpClient, baseURL: defaultBaseURL}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type githubRepo struct {
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	Description string    `json:"description"`
	HTMLURL     string    `json:"html_url"`
	Language    string    `json:"language"`
	Stars       int       `json:"stargazers_count"`
	Watchers    int       `json:"watchers_count"`
	Forks       int       `json:"forks_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *Client) ListRecentRepos(ctx context.Context, username string, limit int) ([]Repo, error) {
	if limit <= 0 {
		limit = DefaultRepoLimit
	}
	limit = min(limit, maxRepoLimit)
	q := url.Values{
		"per_page":  {strconv.Itoa(limit)},
		"sort":      {"created"},
		"direction": {"desc"},
	}
	u := c.baseURL + "/users/" + url.PathEscape(username) + "/repos?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetching repos")
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkResponse(ctx, resp); err != nil {
		return nil, err
	}
	var gh []githubRepo
	if err := json.NewDecoder(resp.Body).Decode(&gh); err != nil {
		return nil, errors.Wrap(err, "decoding github response")
	}
	repos := make([]Repo, len(gh))
	for i, r := range gh {
		repos[i] = Repo(r)
	}
	return repos, nil
}

func checkResponse(ctx context.Context, resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return upstreamError(resp, ErrNotFound)
	case rateLimited(resp):
		applog.LogWarn(ctx, "github api rate limit exceeded",
			zap.Int("status", resp.StatusCode),
			zap.String("X-RateLimit-Reset", resp.Header.Get("X-RateLimit-Reset")),
			zap.String("Retry-After", resp.Header.Get("Retry-After")),
		)
		return upstreamError(resp, ErrRateLimited)
	case resp.StatusCode == http.StatusForbidden:
		applog.LogWarn(ctx, "github api access denied", zap.Int("status", resp.StatusCode))
		return upstreamError(resp, ErrForbidden)
	default:
		return upstreamError(resp, ErrUpstream)
	}
}

func rateLimited(resp *http.Response) bool {
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return true
	case http.StatusForbidden:
		return strings.TrimSpace(resp.Header.Get("X-RateLimit-Remaining")) == "0" ||
			strings.TrimSpace(resp.Header.Get("Retry-After")) != ""
	}
	return false
}

func upstreamError(resp *http.Response, cause error) *UpstreamError {
	return &UpstreamError{
		Status:         resp.StatusCode,
		RetryAfter:     strings.TrimSpace(resp.Header.Get("Retry-After")),
		RateLimitReset: strings.TrimSpace(resp.Header.Get("X-RateLimit-Reset")),
		cause:          cause,
	}
}

var _ Service = (*Client)(nil)
