package dto

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Error   string      `json:"error" example:"event has reached its maximum number of attendees"`
	Code    string      `json:"code" example:"EVENT_FULL"`
	Field   string      `json:"field,omitempty" example:"maxAttendees"`
	Details interface{} `json:"details,omitempty"`
}

// FieldError is one failed validation rule
type FieldError struct {
	Field   string `json:"field" example:"email"`
	Message string `json:"message" example:"email must be a valid email address"`
}
