package github

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/danielgtaylor/huma/v2"

	applog "github.com/janisto/devconnector-api/internal/platform/logging"
	githubsvc "github.com/janisto/devconnector-api/internal/service/github"
)

const msgNoGitHubProfile = "No Github profile found"

// Register wires GitHub routes into the provided API router.
func Register(api huma.API, svc githubsvc.Service) {
	huma.Register(api, huma.Operation{
		OperationID: "list-github-repos",
		Method:      http.MethodGet,
		Path:        "/api/profile/github/{username}",
		Summary:     "List a GitHub user's recent repositories",
		Description: "Returns the five most recently created public repositories of the user.",
		Tags:        []string{"GitHub"},
	}, func(ctx context.Context, input *ReposListInput) (*ReposListOutput, error) {
		repos, err := svc.ListRecentRepos(ctx, input.Username, githubsvc.DefaultRepoLimit)
		if err != nil {
			return nil, mapServiceError(ctx, err)
		}
		return &ReposListOutput{Body: toHTTPRepos(repos)}, nil
	})
}

func mapServiceError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, githubsvc.ErrNotFound):
		return huma.Error404NotFound(msgNoGitHubProfile)
	case errors.Is(err, githubsvc.ErrRateLimited):
		rateLimitErr := huma.Error429TooManyRequests("rate limit exceeded")
		var upstreamErr *githubsvc.UpstreamError
		if !errors.As(err, &upstreamErr) {
			return rateLimitErr
		}
		headers := make(http.Header)
		if upstreamErr.RetryAfter != "" {
			headers.Set("Retry-After", upstreamErr.RetryAfter)
		}
		if upstreamErr.RateLimitReset != "" {
			headers.Set("X-RateLimit-Reset", upstreamErr.RateLimitReset)
		}
		if len(headers) > 0 {
			return huma.ErrorWithHeaders(rateLimitErr, headers)
		}
		return rateLimitErr
	case errors.Is(err, githubsvc.ErrForbidden):
		return huma.Error403Forbidden("access denied")
	default:
		applog.LogError(ctx, "github request failed", err)
		return huma.Error502BadGateway("upstream error")
	}
}
