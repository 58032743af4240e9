package models

import "encoding/json"

// TeamRequest is the body of optimize-team and synergy-winrate.
type TeamRequest struct {
	Team []string `json:"team" validate:"required,min=1,dive,required"`
}

// FeedbackRequest is the body of the feedback endpoint.
type FeedbackRequest struct {
	Team      []string `json:"team" validate:"required,min=1,dive,required"`
	Result    string   `json:"result" validate:"required,oneof=win loss"`
	Timestamp string   `json:"timestamp"` // RFC3339; empty means now
}

// SuggestRequest is the body of suggest-teammates.
type SuggestRequest struct {
	Team  []string `json:"team" validate:"required,min=1,dive,required"`
	Limit int      `json:"limit" validate:"omitempty,min=1,max=50"`
}

// UnmarshalJSON accepts string-encoded limits ("3") as well as numbers.
func (r *SuggestRequest) UnmarshalJSON(data []byte) error {
	type alias SuggestRequest
	return flexUnmarshal(data, (*alias)(r))
}

// FeedbackResponse reports how many rows were recorded.
type FeedbackResponse struct {
	Message string `json:"message"`
	Entries int    `json:"entries"`
}

// ErrorResponse is the JSON error payload.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Missing []string `json:"missing,omitempty"`
}

var _ json.Unmarshaler = (*SuggestRequest)(nil)
