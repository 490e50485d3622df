package handler

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	ChangeID int64  `json:"change_id,omitempty"`
}

type ChangeResponse struct {
	ChangeID  int64   `json:"change_id"`
	Project   string  `json:"project"`
	Branch    string  `json:"branch"`
	OwnerID   string  `json:"owner_id"`
	Status    string  `json:"status"`
	Topic     string  `json:"topic,omitempty"`
	PatchSet  int     `json:"patch_set"`
	Revision  string  `json:"current_revision"`
	CreatedAt *string `json:"createdAt,omitempty"`
	UpdatedAt *string `json:"updatedAt,omitempty"`
}

type SubmittedTogetherResponse struct {
	Changes           []ChangeResponse `json:"changes"`
	NonVisibleChanges int              `json:"non_visible_changes"`
}

type SubmitResponse struct {
	Submitted []ChangeResponse `json:"submitted"`
	Projects  []string         `json:"projects"`
}

type SubmitActionResponse struct {
	Label   string `json:"label"`
	Title   string `json:"title"`
	Enabled bool   `json:"enabled"`
}

type SetTopicRequest struct {
	Topic string `json:"topic" validate:"max=255"`
}

type SetTopicResponse struct {
	Change ChangeResponse `json:"change"`
}
