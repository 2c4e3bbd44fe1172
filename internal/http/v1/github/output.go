package github

// ReposListOutput is the response wrapper for GET /api/profile/github/{username}.
type ReposListOutput struct {
	Body []Repo
}
