package profile

// ProfileOutput wraps a single profile.
type ProfileOutput struct {
	Body Profile
}

// ProfileListOutput for GET /api/profile
type ProfileListOutput struct {
	Body []Profile
}

// MessageBody is a plain acknowledgement.
type MessageBody struct {
	Msg string `json:"msg" doc:"Result message" example:"User deleted"`
}

// DeleteOutput for DELETE /api/profile
type DeleteOutput struct {
	Body MessageBody
}
