// Package github fetches public repositories for the GitHub usernames listed
// on developer profiles.
package github

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
)

// DefaultRepoLimit is the number of repositories shown on a profile.
const DefaultRepoLimit = 5

var (
	ErrNotFound    = errors.New("github user not found")
	ErrForbidden   = errors.New("github access forbidden")
	ErrRateLimited = errors.New("github rate limit exceeded")
	ErrUpstream    = errors.New("github upstream error")
)

// UpstreamError carries the GitHub status and rate limit headers of a failed
// call. It unwraps to one of the sentinel errors above.
type UpstreamError struct {
	Status         int
	RetryAfter     string
	RateLimitReset string
	cause          error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("github status %d: %v", e.Status, e.cause)
}

func (e *UpstreamError) Unwrap() error { return e.cause }

// Repo is a public repository summary.
type Repo struct {
	Name        string
	FullName    string
	Description string
	HTMLURL     string
	Language    string
	Stars       int
	Watchers    int
	Forks       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Service lists a user's repositories, most recently created first.
type Service interface {
	ListRecentRepos(ctx context.Context, username string, limit int) ([]Repo, error)
}
