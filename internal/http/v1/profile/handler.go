package profile

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/devconnector-api/internal/platform/auth"
	applog "github.com/janisto/devconnector-api/internal/platform/logging"
	"github.com/janisto/devconnector-api/internal/platform/respond"
	"github.com/janisto/devconnector-api/internal/platform/timeutil"
	"github.com/janisto/devconnector-api/internal/platform/validation"
	profilesvc "github.com/janisto/devconnector-api/internal/service/profile"
)

const basePath = "/api/profile"

const (
	msgNoProfile        = "There is no profile for this user"
	msgProfileNotFound  = "profile not found"
	msgUserDeleted      = "User deleted"
	msgExperienceAbsent = "experience not found"
	msgEducationAbsent  = "education not found"
)

var bearerAuth = []map[string][]string{{"bearerAuth": {}}}

// Register registers profile endpoints.
func Register(api huma.API, svc profilesvc.Service) {
	huma.Register(api, huma.Operation{
		OperationID: "get-my-profile",
		Method:      http.MethodGet,
		Path:        basePath + "/me",
		Summary:     "Get current user's profile",
		Description: "Returns the authenticated user's profile with their name and avatar.",
		Tags:        []string{"Profile"},
		Security:    bearerAuth,
	}, func(ctx context.Context, _ *struct{}) (*ProfileOutput, error) {
		user := auth.UserFromContext(ctx)

		profile, err := svc.GetByOwner(ctx, user.ID)
		if err != nil {
			return nil, mapServiceError(ctx, err, msgNoProfile)
		}
		return &ProfileOutput{Body: toHTTPProfile(profile)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "upsert-profile",
		Method:      http.MethodPost,
		Path:        basePath,
		Summary:     "Create or update current user's profile",
		Description: "Creates the profile on first call. Later calls update only the supplied fields; " +
			"skills and social links are replaced as a whole.",
		Tags:     []string{"Profile"},
		Security: bearerAuth,
	}, func(ctx context.Context, input *ProfileUpsertInput) (*ProfileOutput, error) {
		user := auth.UserFromContext(ctx)

		if err := validation.Check(&input.Body); err != nil {
			return nil, err
		}

		profile, err := svc.Upsert(ctx, user.ID, toFields(&input.Body))
		if err != nil {
			return nil, mapServiceError(ctx, err, msgNoProfile)
		}
		return &ProfileOutput{Body: toHTTPProfile(profile)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-profiles",
		Method:      http.MethodGet,
		Path:        basePath,
		Summary:     "List all profiles",
		Tags:        []string{"Profile"},
	}, func(ctx context.Context, _ *struct{}) (*ProfileListOutput, error) {
		profiles, err := svc.List(ctx)
		if err != nil {
			return nil, mapServiceError(ctx, err, msgProfileNotFound)
		}
		return &ProfileListOutput{Body: toHTTPProfiles(profiles)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-profile-by-user",
		Method:      http.MethodGet,
		Path:        basePath + "/user/{user_id}",
		Summary:     "Get a profile by owner id",
		Description: "Malformed and unknown ids both answer 400 profile not found.",
		Tags:        []string{"Profile"},
	}, func(ctx context.Context, input *ProfileByUserInput) (*ProfileOutput, error) {
		profile, err := svc.GetByOwnerID(ctx, input.UserID)
		if err != nil {
			return nil, mapServiceError(ctx, err, msgProfileNotFound)
		}
		return &ProfileOutput{Body: toHTTPProfile(profile)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-account",
		Method:      http.MethodDelete,
		Path:        basePath,
		Summary:     "Delete current user's account",
		Description: "Deletes the user's posts, then the profile, then the user record.",
		Tags:        []string{"Profile"},
		Security:    bearerAuth,
	}, func(ctx context.Context, _ *struct{}) (*DeleteOutput, error) {
		user := auth.UserFromContext(ctx)

		if err := svc.DeleteCascade(ctx, user.ID); err != nil {
			return nil, mapServiceError(ctx, err, msgNoProfile)
		}
		return &DeleteOutput{Body: MessageBody{Msg: msgUserDeleted}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "add-experience",
		Method:      http.MethodPut,
		Path:        basePath + "/experience",
		Summary:     "Add profile experience",
		Description: "Adds an entry at the top of the experience list. A profile holds at most two.",
		Tags:        []string{"Profile"},
		Security:    bearerAuth,
	}, func(ctx context.Context, input *ExperienceAddInput) (*ProfileOutput, error) {
		user := auth.UserFromContext(ctx)

		if err := validation.Check(&input.Body); err != nil {
			return nil, err
		}
		in, err := toExperienceInput(&input.Body)
		if err != nil {
			return nil, err
		}

		profile, err := svc.AddExperience(ctx, user.ID, in)
		if err != nil {
			return nil, mapServiceError(ctx, err, msgNoProfile)
		}
		return &ProfileOutput{Body: toHTTPProfile(profile)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-experience",
		Method:      http.MethodDelete,
		Path:        basePath + "/experience/{exp_id}",
		Summary:     "Delete profile experience",
		Tags:        []string{"Profile"},
		Security:    bearerAuth,
	}, func(ctx context.Context, input *ExperienceDeleteInput) (*ProfileOutput, error) {
		user := auth.UserFromContext(ctx)

		profile, err := svc.RemoveExperience(ctx, user.ID, input.ExpID)
		if err != nil {
			return nil, mapEntryError(ctx, err, msgExperienceAbsent)
		}
		return &ProfileOutput{Body: toHTTPProfile(profile)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "add-education",
		Method:      http.MethodPut,
		Path:        basePath + "/education",
		Summary:     "Add profile education",
		Description: "Adds an entry at the top of the education list. A profile holds at most two.",
		Tags:        []string{"Profile"},
		Security:    bearerAuth,
	}, func(ctx context.Context, input *EducationAddInput) (*ProfileOutput, error) {
		user := auth.UserFromContext(ctx)

		if err := validation.Check(&input.Body); err != nil {
			return nil, err
		}
		in, err := toEducationInput(&input.Body)
		if err != nil {
			return nil, err
		}

		profile, err := svc.AddEducation(ctx, user.ID, in)
		if err != nil {
			return nil, mapServiceError(ctx, err, msgNoProfile)
		}
		return &ProfileOutput{Body: toHTTPProfile(profile)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-education",
		Method:      http.MethodDelete,
		Path:        basePath + "/education/{edu_id}",
		Summary:     "Delete profile education",
		Tags:        []string{"Profile"},
		Security:    bearerAuth,
	}, func(ctx context.Context, input *EducationDeleteInput) (*ProfileOutput, error) {
		user := auth.UserFromContext(ctx)

		profile, err := svc.RemoveEducation(ctx, user.ID, input.EduID)
		if err != nil {
			return nil, mapEntryError(ctx, err, msgEducationAbsent)
		}
		return &ProfileOutput{Body: toHTTPProfile(profile)}, nil
	})
}

// mapServiceError turns service errors into problem responses. notFound is
// the detail used when the profile is missing.
func mapServiceError(ctx context.Context, err error, notFound string) error {
	switch {
	case errors.Is(err, profilesvc.ErrNotFound):
		return huma.Error400BadRequest(notFound)
	case errors.Is(err, profilesvc.ErrMaxEntries):
		return huma.Error400BadRequest(profilesvc.ErrMaxEntries.Error())
	default:
		applog.LogError(ctx, "profile request failed", err)
		return huma.Error500InternalServerError(respond.ServerErrorDetail)
	}
}

func mapEntryError(ctx context.Context, err error, entryNotFound string) error {
	if errors.Is(err, profilesvc.ErrEntryNotFound) {
		return huma.Error400BadRequest(entryNotFound)
	}
	return mapServiceError(ctx, err, msgNoProfile)
}

func toFields(b *ProfileUpsertBody) profilesvc.Fields {
	return profilesvc.Fields{
		Company:        profilesvc.FromPtr(b.Company),
		Website:        profilesvc.FromPtr(b.Website),
		Location:       profilesvc.FromPtr(b.Location),
		Bio:            profilesvc.FromPtr(b.Bio),
		Status:         profilesvc.FromPtr(b.Status),
		GitHubUsername: profilesvc.FromPtr(b.GitHubUsername),
		Skills:         profilesvc.FromPtr(b.Skills),
		YouTube:        profilesvc.FromPtr(b.YouTube),
		Facebook:       profilesvc.FromPtr(b.Facebook),
		Twitter:        profilesvc.FromPtr(b.Twitter),
		Instagram:      profilesvc.FromPtr(b.Instagram),
		LinkedIn:       profilesvc.FromPtr(b.LinkedIn),
	}
}

// dateRange parses validated from/to strings. An empty to means no end date.
func dateRange(from, to string) (time.Time, *time.Time, error) {
	start, err := timeutil.ParseDate(from)
	if err != nil {
		return time.Time{}, nil, huma.Error400BadRequest(validation.Message, &huma.ErrorDetail{
			Message: "from must be a valid date", Location: "body.from", Value: from,
		})
	}
	if to == "" {
		return start, nil, nil
	}
	end, err := timeutil.ParseDate(to)
	if err != nil {
		return time.Time{}, nil, huma.Error400BadRequest(validation.Message, &huma.ErrorDetail{
			Message: "to must be a valid date", Location: "body.to", Value: to,
		})
	}
	return start, &end, nil
}

func toExperienceInput(b *ExperienceBody) (profilesvc.ExperienceInput, error) {
	from, to, err := dateRange(b.From, b.To)
	if err != nil {
		return profilesvc.ExperienceInput{}, err
	}
	return profilesvc.ExperienceInput{
		Title:       b.Title,
		Company:     b.Company,
		Location:    b.Location,
		From:        from,
		To:          to,
		Current:     b.Current,
		Description: b.Description,
	}, nil
}

func toEducationInput(b *EducationBody) (profilesvc.EducationInput, error) {
	from, to, err := dateRange(b.From, b.To)
	if err != nil {
		return profilesvc.EducationInput{}, err
	}
	return profilesvc.EducationInput{
		School:       b.School,
		Degree:       b.Degree,
		FieldOfStudy: b.FieldOfStudy,
		From:         from,
		To:           to,
		Current:      b.Current,
		Description:  b.Description,
	}, nil
}
