package profile

// ProfileUpsertBody is the body of POST /api/profile. Pointer fields tell an
// omitted key apart from an empty one; only supplied keys are written.
type ProfileUpsertBody struct {
	Company        *string `json:"company,omitempty"        maxLength:"200"  doc:"Company"             example:"Acme"`
	Website        *string `json:"website,omitempty"        maxLength:"500"  doc:"Personal website"    example:"https://example.com"`
	Location       *string `json:"location,omitempty"       maxLength:"200"  doc:"Location"            example:"Helsinki"`
	Bio            *string `json:"bio,omitempty"            maxLength:"2000" doc:"Short biography"`
	Status         *string `json:"status,omitempty"         maxLength:"200"  doc:"Professional status" example:"Developer"          validate:"required,min=1" message:"Status is required"`
	GitHubUsername *string `json:"githubusername,omitempty" maxLength:"39"   doc:"GitHub username"     example:"octocat"`
	Skills         *string `json:"skills,omitempty"         maxLength:"1000" doc:"Comma-separated skills" example:"Go, SQL, Docker" validate:"required,min=1" message:"Skills is required"`
	YouTube        *string `json:"youtube,omitempty"        maxLength:"500"  doc:"YouTube channel URL"`
	Twitter        *string `json:"twitter,omitempty"        maxLength:"500"  doc:"Twitter profile URL"`
	Facebook       *string `json:"facebook,omitempty"       maxLength:"500"  doc:"Facebook profile URL"`
	LinkedIn       *string `json:"linkedin,omitempty"       maxLength:"500"  doc:"LinkedIn profile URL"`
	Instagram      *string `json:"instagram,omitempty"      maxLength:"500"  doc:"Instagram profile URL"`
}

// ProfileUpsertInput for POST /api/profile
type ProfileUpsertInput struct {
	Body ProfileUpsertBody
}

// ProfileByUserInput for GET /api/profile/user/{user_id}
type ProfileByUserInput struct {
	UserID string `path:"user_id" doc:"Owner identifier" example:"5c1a7e2f9b1d4a0012345678"`
}

// ExperienceBody is the body of PUT /api/profile/experience.
type ExperienceBody struct {
	Title       string `json:"title,omitempty"       maxLength:"200"  doc:"Job title"    example:"Senior Developer" validate:"required"      message:"Title is required"`
	Company     string `json:"company,omitempty"     maxLength:"200"  doc:"Company name" example:"Acme"             validate:"required"      message:"Company is required"`
	Location    string `json:"location,omitempty"    maxLength:"200"  doc:"Location"     example:"Helsinki"`
	From        string `json:"from,omitempty"                         doc:"Start date"   example:"2019-01-01"       validate:"required,date" message:"From is required"`
	To          string `json:"to,omitempty"                           doc:"End date"     example:"2021-06-30"       validate:"date"`
	Current     bool   `json:"current,omitempty"                      doc:"Whether this is the current job"`
	Description string `json:"description,omitempty" maxLength:"2000" doc:"Free-form description"`
}

// ExperienceAddInput for PUT /api/profile/experience
type ExperienceAddInput struct {
	Body ExperienceBody
}

// ExperienceDeleteInput for DELETE /api/profile/experience/{exp_id}
type ExperienceDeleteInput struct {
	ExpID string `path:"exp_id" doc:"Experience entry identifier"`
}

// EducationBody is the body of PUT /api/profile/education.
type EducationBody struct {
	School       string `json:"school,omitempty"       maxLength:"200"  doc:"School name"    example:"University of Helsinki" validate:"required"      message:"School is required"`
	Degree       string `json:"degree,omitempty"       maxLength:"200"  doc:"Degree"         example:"MSc"                    validate:"required"      message:"degree is required"`
	FieldOfStudy string `json:"fieldofstudy,omitempty" maxLength:"200"  doc:"Field of study" example:"Computer Science"       validate:"required"      message:"Field of study is required"`
	From         string `json:"from,omitempty"                          doc:"Start date"     example:"2012-09-01"             validate:"required,date" message:"From is required"`
	To           string `json:"to,omitempty"                            doc:"End date"       example:"2017-05-31"             validate:"date"`
	Current      bool   `json:"current,omitempty"                       doc:"Whether studies are ongoing"`
	Description  string `json:"description,omitempty"  maxLength:"2000" doc:"Free-form description"`
}

// EducationAddInput for PUT /api/profile/education
type EducationAddInput struct {
	Body EducationBody
}

// EducationDeleteInput for DELETE /api/profile/education/{edu_id}
type EducationDeleteInput struct {
	EduID string `path:"edu_id" doc:"Education entry identifier"`
}
