package github

// ReposListInput defines path parameters for listing a user's repositories.
type ReposListInput struct {
	Username string `path:"username" doc:"GitHub username" example:"octocat" pattern:"^[a-zA-Z0-9][a-zA-Z0-9\\-]{0,38}$"`
}
