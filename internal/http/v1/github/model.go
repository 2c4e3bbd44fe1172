package github

import (
	"github.com/janisto/devconnector-api/internal/platform/timeutil"
	githubsvc "github.com/janisto/devconnector-api/internal/service/github"
)

// Repo is a public repository. Field names follow the GitHub REST API so
// clients can render them the same way as a direct GitHub response.
type Repo struct {
	Name            string        `json:"name"                  doc:"Repository name"       example:"hello-world"`
	FullName        string        `json:"full_name"             doc:"Owner and name"        example:"octocat/hello-world"`
	Description     string        `json:"description,omitempty" doc:"Repository description"`
	HTMLURL         string        `json:"html_url"              doc:"Repository page"       example:"https://github.com/octocat/hello-world"`
	Language        string        `json:"language,omitempty"    doc:"Primary language"      example:"Go"`
	StargazersCount int           `json:"stargazers_count"      doc:"Stars"                 example:"42"`
	WatchersCount   int           `json:"watchers_count"        doc:"Watchers"              example:"42"`
	ForksCount      int           `json:"forks_count"           doc:"Forks"                 example:"7"`
	CreatedAt       timeutil.Time `json:"created_at"            doc:"Creation timestamp"    example:"2024-01-15T10:30:00.000Z"`
	UpdatedAt       timeutil.Time `json:"updated_at"            doc:"Last update timestamp" example:"2024-01-15T10:30:00.000Z"`
}

func toHTTPRepos(repos []githubsvc.Repo) []Repo {
	out := make([]Repo, 0, len(repos))
	for _, r := range repos {
		out = append(out, Repo{
			Name:            r.Name,
			FullName:        r.FullName,
			Description:     r.Description,
			HTMLURL:         r.HTMLURL,
			Language:        r.Language,
			StargazersCount: r.Stars,
			WatchersCount:   r.Watchers,
			ForksCount:      r.Forks,
			CreatedAt:       timeutil.NewTime(r.CreatedAt),
			UpdatedAt:       timeutil.NewTime(r.UpdatedAt),
		})
	}
	return out
}
