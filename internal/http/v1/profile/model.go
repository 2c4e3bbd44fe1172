package profile

import (
	"time"

	"github.com/janisto/devconnector-api/internal/platform/timeutil"
	profilesvc "github.com/janisto/devconnector-api/internal/service/profile"
)

// Owner is the account a profile belongs to.
type Owner struct {
	ID     string `json:"id"               doc:"Owner identifier" example:"5c1a7e2f9b1d4a0012345678"`
	Name   string `json:"name,omitempty"   doc:"Display name"     example:"Jane Doe"`
	Avatar string `json:"avatar,omitempty" doc:"Avatar URL"       example:"//www.gravatar.com/avatar/abc?s=200&r=pg&d=mm"`
}

// Social holds the profile's social links. Absent links are omitted.
type Social struct {
	YouTube   *string `json:"youtube,omitempty"   doc:"YouTube channel URL"`
	Facebook  *string `json:"facebook,omitempty"  doc:"Facebook profile URL"`
	Twitter   *string `json:"twitter,omitempty"   doc:"Twitter profile URL"`
	Instagram *string `json:"instagram,omitempty" doc:"Instagram profile URL"`
	LinkedIn  *string `json:"linkedin,omitempty"  doc:"LinkedIn profile URL"`
}

// Experience is one job entry.
type Experience struct {
	ID          string         `json:"id"                    doc:"Entry identifier"`
	Title       string         `json:"title"                 doc:"Job title"              example:"Senior Developer"`
	Company     string         `json:"company"               doc:"Company name"           example:"Acme"`
	Location    string         `json:"location,omitempty"    doc:"Location"               example:"Helsinki"`
	From        timeutil.Time  `json:"from"                  doc:"Start date"             example:"2019-01-01T00:00:00.000Z"`
	To          *timeutil.Time `json:"to,omitempty"          doc:"End date"               example:"2021-06-30T00:00:00.000Z"`
	Current     bool           `json:"current"               doc:"Whether this is the current job"`
	Description string         `json:"description,omitempty" doc:"Free-form description"`
}

// Education is one school entry.
type Education struct {
	ID           string         `json:"id"                    doc:"Entry identifier"`
	School       string         `json:"school"                doc:"School name"            example:"University of Helsinki"`
	Degree       string         `json:"degree"                doc:"Degree"                 example:"MSc"`
	FieldOfStudy string         `json:"fieldofstudy"          doc:"Field of study"         example:"Computer Science"`
	From         timeutil.Time  `json:"from"                  doc:"Start date"             example:"2012-09-01T00:00:00.000Z"`
	To           *timeutil.Time `json:"to,omitempty"          doc:"End date"               example:"2017-05-31T00:00:00.000Z"`
	Current      bool           `json:"current"               doc:"Whether studies are ongoing"`
	Description  string         `json:"description,omitempty" doc:"Free-form description"`
}

// Profile represents a developer profile response.
type Profile struct {
	User           Owner         `json:"user"                     doc:"Profile owner"`
	Company        string        `json:"company,omitempty"        doc:"Company"                example:"Acme"`
	Website        string        `json:"website,omitempty"        doc:"Personal website"       example:"https://example.com"`
	Location       string        `json:"location,omitempty"       doc:"Location"               example:"Helsinki"`
	Bio            string        `json:"bio,omitempty"            doc:"Short biography"`
	Status         string        `json:"status,omitempty"         doc:"Professional status"    example:"Developer"`
	GitHubUsername string        `json:"githubusername,omitempty" doc:"GitHub username"        example:"octocat"`
	Skills         []string      `json:"skills"                   doc:"Skills"                 example:"[\"Go\",\"SQL\"]"`
	Social         Social        `json:"social"                   doc:"Social links"`
	Experience     []Experience  `json:"experience"               doc:"Work experience, newest first"`
	Education      []Education   `json:"education"                doc:"Education, newest first"`
	Date           timeutil.Time `json:"date"                     doc:"Creation date"          example:"2024-01-15T10:30:00.000Z"`
	CreatedAt      timeutil.Time `json:"createdAt"                doc:"Creation timestamp"     example:"2024-01-15T10:30:00.000Z"`
	UpdatedAt      timeutil.Time `json:"updatedAt"                doc:"Last update timestamp"  example:"2024-01-15T10:30:00.000Z"`
}

func optionalTime(p *time.Time) *timeutil.Time {
	if p == nil {
		return nil
	}
	t := timeutil.NewTime(*p)
	return &t
}

func toHTTPProfile(p *profilesvc.Profile) Profile {
	out := Profile{
		User: Owner{
			ID:     p.OwnerID,
			Name:   p.OwnerName,
			Avatar: p.OwnerAvatar,
		},
		Company:        p.Company,
		Website:        p.Website,
		Location:       p.Location,
		Bio:            p.Bio,
		Status:         p.Status,
		GitHubUsername: p.GitHubUsername,
		Skills:         p.Skills,
		Social: Social{
			YouTube:   p.Social.YouTube,
			Facebook:  p.Social.Facebook,
			Twitter:   p.Social.Twitter,
			Instagram: p.Social.Instagram,
			LinkedIn:  p.Social.LinkedIn,
		},
		Experience: make([]Experience, 0, len(p.Experience)),
		Education:  make([]Education, 0, len(p.Education)),
		Date:       timeutil.NewTime(p.Date),
		CreatedAt:  timeutil.NewTime(p.CreatedAt),
		UpdatedAt:  timeutil.NewTime(p.UpdatedAt),
	}
	if out.Skills == nil {
		out.Skills = []string{}
	}
	for _, e := range p.Experience {
		out.Experience = append(out.Experience, Experience{
			ID:          e.ID,
			Title:       e.Title,
			Company:     e.Company,
			Location:    e.Location,
			From:        timeutil.NewTime(e.From),
			To:          optionalTime(e.To),
			Current:     e.Current,
			Description: e.Description,
		})
	}
	for _, e := range p.Education {
		out.Education = append(out.Education, Education{
			ID:           e.ID,
			School:       e.School,
			Degree:       e.Degree,
			FieldOfStudy: e.FieldOfStudy,
			From:         timeutil.NewTime(e.From),
			To:           optionalTime(e.To),
			Current:      e.Current,
			Description:  e.Description,
		})
	}
	return out
}

func toHTTPProfiles(ps []profilesvc.Profile) []Profile {
	out := make([]Profile, 0, len(ps))
	for i := range ps {
		out = append(out, toHTTPProfile(&ps[i]))
	}
	return out
}
