package profile

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	applog "github.com/janisto/devconnector-api/internal/platform/logging"
)

const maxIDBytes = 128

var reservedID = regexp.MustCompile(`^__.*__$`)

func newOptions(opts []Option) options {
	o := options{newID: uuid.NewString, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ValidOwnerID reports whether id can be used as a document id: non-empty, at
// most 128 bytes, no '/', not "." or "..", and not of the reserved __x__ form.
func ValidOwnerID(id string) bool {
	switch {
	case id == "", id == ".", id == "..":
		return false
	case len(id) > maxIDBytes:
		return false
	case strings.Contains(id, "/"):
		return false
	case reservedID.MatchString(id):
		return false
	}
	return true
}

// ParseSkills splits raw on commas and trims each piece. Empty pieces are kept.
func ParseSkills(raw string) []string {
	parts := strings.Split(raw, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func optionalPtr(o Optional[string]) *string {
	if !o.Set {
		return nil
	}
	v := o.Value
	return &v
}

// buildSocial always returns a fresh value; it replaces the stored one.
func buildSocial(f Fields) Social {
	return Social{
		YouTube:   optionalPtr(f.YouTube),
		Facebook:  optionalPtr(f.Facebook),
		Twitter:   optionalPtr(f.Twitter),
		Instagram: optionalPtr(f.Instagram),
		LinkedIn:  optionalPtr(f.LinkedIn),
	}
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func (s Social) clone() Social {
	return Social{
		YouTube:   clonePtr(s.YouTube),
		Facebook:  clonePtr(s.Facebook),
		Twitter:   clonePtr(s.Twitter),
		Instagram: clonePtr(s.Instagram),
		LinkedIn:  clonePtr(s.LinkedIn),
	}
}

func setIf(dst *string, o Optional[string]) {
	if o.Set {
		*dst = o.Value
	}
}

// applyFields merges f into p: scalars only when Set, skills when Set, social
// always.
func applyFields(p *Profile, f Fields) {
	setIf(&p.Company, f.Company)
	setIf(&p.Website, f.Website)
	setIf(&p.Location, f.Location)
	setIf(&p.Bio, f.Bio)
	setIf(&p.Status, f.Status)
	setIf(&p.GitHubUsername, f.GitHubUsername)
	if f.Skills.Set {
		p.Skills = ParseSkills(f.Skills.Value)
	}
	p.Social = buildSocial(f)
}

// newProfile is the document created by the first upsert for ownerID.
func newProfile(ownerID string, now time.Time) *Profile {
	return &Profile{
		OwnerID:    ownerID,
		Skills:     []string{},
		Experience: []Experience{},
		Education:  []Education{},
		Date:       now,
		CreatedAt:  now,
	}
}

// prepend inserts item at index 0, or returns ErrMaxEntries leaving list as is.
func prepend[T any](list []T, item T) ([]T, error) {
	if len(list) >= MaxEntries {
		return list, ErrMaxEntries
	}
	out := make([]T, 0, len(list)+1)
	out = append(out, item)
	return append(out, list...), nil
}

// removeByID drops the single entry whose id matches, keeping the order of the
// rest. No match returns ErrEntryNotFound.
func removeByID[T any](list []T, id string, idOf func(T) string) ([]T, error) {
	for i, item := range list {
		if idOf(item) == id {
			out := make([]T, 0, len(list)-1)
			out = append(out, list[:i]...)
			return append(out, list[i+1:]...), nil
		}
	}
	return list, ErrEntryNotFound
}

func experienceID(e Experience) string { return e.ID }
func educationID(e Education) string   { return e.ID }

func addExperience(p *Profile, id string, in ExperienceInput) error {
	entry := Experience{
		ID:          id,
		Title:       in.Title,
		Company:     in.Company,
		Location:    in.Location,
		From:        in.From,
		To:          in.To,
		Current:     in.Current,
		Description: in.Description,
	}
	list, err := prepend(p.Experience, entry)
	if err != nil {
		return err
	}
	p.Experience = list
	return nil
}

func addEducation(p *Profile, id string, in EducationInput) error {
	entry := Education{
		ID:           id,
		School:       in.School,
		Degree:       in.Degree,
		FieldOfStudy: in.FieldOfStudy,
		From:         in.From,
		To:           in.To,
		Current:      in.Current,
		Description:  in.Description,
	}
	list, err := prepend(p.Education, entry)
	if err != nil {
		return err
	}
	p.Education = list
	return nil
}

func removeExperience(p *Profile, id string) error {
	list, err := removeByID(p.Experience, id, experienceID)
	if err != nil {
		return err
	}
	p.Experience = list
	return nil
}

func removeEducation(p *Profile, id string) error {
	list, err := removeByID(p.Education, id, educationID)
	if err != nil {
		return err
	}
	p.Education = list
	return nil
}

// lookupByOwnerID guards a public lookup: malformed ids never reach storage.
func lookupByOwnerID(ctx context.Context, rawID string, get func(context.Context, string) (*Profile, error)) (*Profile, error) {
	if !ValidOwnerID(rawID) {
		applog.LogWarn(ctx, "profile lookup rejected",
			zap.String("reason", "malformed_id"),
			zap.Int("id_length", len(rawID)),
		)
		return nil, ErrInvalidID
	}
	p, err := get(ctx, rawID)
	if errors.Is(err, ErrNotFound) {
		applog.LogInfo(ctx, "profile lookup missed",
			zap.String("reason", "not_found"),
			zap.String("owner_id", rawID),
		)
	}
	return p, err
}

// categorizeError converts errors to audit-safe categories.
func categorizeError(err error) string {
	switch {
	case errors.Is(err, ErrInvalidID):
		return "malformed_id"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrMaxEntries):
		return "max_entries"
	case errors.Is(err, ErrEntryNotFound):
		return "entry_not_found"
	default:
		return "internal_error"
	}
}

func audit(ctx context.Context, action, ownerID, resourceID string, err error) {
	ev := applog.AuditEvent{
		Action:       action,
		UserID:       ownerID,
		ResourceType: "profile",
		ResourceID:   resourceID,
		Result:       applog.AuditSuccess,
	}
	if err != nil {
		ev.Result = applog.AuditFailure
		ev.Details = map[string]any{"reason": categorizeError(err)}
		var step *StepError
		if errors.As(err, &step) {
			ev.Details["step"] = step.Step
		}
	}
	applog.LogAuditEvent(ctx, ev)
}

// StepError names the cascade step that failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return e.Step + ": " + e.Err.Error() }
func (e *StepError) Unwrap() error { return e.Err }

const (
	StepDeletePosts   = "delete posts"
	StepDeleteProfile = "delete profile"
	StepDeleteUser    = "delete user"
)
