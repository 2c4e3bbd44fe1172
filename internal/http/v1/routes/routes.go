package routes

import (
	"github.com/danielgtaylor/huma/v2"

	githubhandler "github.com/janisto/devconnector-api/internal/http/v1/github"
	"github.com/janisto/devconnector-api/internal/http/v1/profile"
	"github.com/janisto/devconnector-api/internal/platform/auth"
	githubsvc "github.com/janisto/devconnector-api/internal/service/github"
	profilesvc "github.com/janisto/devconnector-api/internal/service/profile"
)

// Register wires all HTTP routes into the provided API router.
func Register(
	api huma.API,
	verifier auth.Verifier,
	profileService profilesvc.Service,
	githubService githubsvc.Service,
) {
	// Apply auth middleware for protected endpoints
	api.UseMiddleware(auth.NewAuthMiddleware(api, verifier))

	profile.Register(api, profileService)
	githubhandler.Register(api, githubService)
}
