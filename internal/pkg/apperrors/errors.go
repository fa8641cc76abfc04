package apperrors

import "errors"

// Error codes returned in the "code" field of API error bodies.
const (
	CodeValidationFailed      = "VALIDATION_FAILED"
	CodeInvalidID             = "INVALID_ID"
	CodeInvalidDateRange      = "INVALID_DATE_RANGE"
	CodeBadRequest            = "BAD_REQUEST"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeInvalidCredentials    = "INVALID_CREDENTIALS"
	CodeAccountDisabled       = "ACCOUNT_DISABLED"
	CodeInvalidToken          = "INVALID_TOKEN"
	CodeTokenExpired          = "TOKEN_EXPIRED"
	CodeForbidden             = "FORBIDDEN"
	CodeNotFound              = "NOT_FOUND"
	CodeConflict              = "CONFLICT"
	CodeEmailExists           = "EMAIL_EXISTS"
	CodeEventFull             = "EVENT_FULL"
	CodeAlreadyRegistered     = "ALREADY_REGISTERED"
	CodeRegistrationClosed    = "REGISTRATION_CLOSED"
	CodeCapacityBelowAttendee = "CAPACITY_BELOW_ATTENDEES"
	CodeNewsletterSent        = "NEWSLETTER_ALREADY_SENT"
	CodeCredentialVerified    = "CREDENTIAL_ALREADY_VERIFIED"
	CodeRateLimited           = "RATE_LIMITED"
	CodeInternal              = "INTERNAL_ERROR"
)

// Base errors. Every domain error unwraps to exactly one of these, which
// decides the HTTP status.
var (
	ErrResourceNotFound = errors.New("resource not found")
	ErrConflict         = errors.New("conflict")
	ErrPermissionDenied = errors.New("permission denied")
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrRateLimited      = errors.New("rate limited")
)

// Authentication errors
var (
	ErrInvalidCredentials = &CustomError{Err: ErrUnauthorized, Message: "invalid credentials", Code: CodeInvalidCredentials}
	ErrAccountDisabled    = &CustomError{Err: ErrUnauthorized, Message: "account is disabled", Code: CodeAccountDisabled}
	ErrTokenExpired       = &CustomError{Err: ErrUnauthorized, Message: "token expired", Code: CodeTokenExpired}
	ErrTokenInvalid       = &CustomError{Err: ErrUnauthorized, Message: "invalid token", Code: CodeInvalidToken}
	ErrTokenNotFound      = &CustomError{Err: ErrUnauthorized, Message: "token not found", Code: CodeInvalidToken}
	ErrTokenRevoked       = &CustomError{Err: ErrUnauthorized, Message: "token revoked", Code: CodeInvalidToken}
)

// User and tenant errors
var (
	ErrUserNotFound        = &CustomError{Err: ErrResourceNotFound, Message: "user not found", Code: CodeNotFound}
	ErrEmailAlreadyExists  = &CustomError{Err: ErrConflict, Message: "email already exists", Code: CodeEmailExists, Field: "email"}
	ErrUniversityNotFound  = &CustomError{Err: ErrResourceNotFound, Message: "university not found", Code: CodeNotFound}
	ErrUniversityExists    = &CustomError{Err: ErrConflict, Message: "university with this slug already exists", Code: CodeConflict, Field: "slug"}
	ErrEmailDomainMismatch = &CustomError{Err: ErrValidationFailed, Message: "email does not belong to the university domain", Code: CodeValidationFailed, Field: "email"}
)

// Event errors
var (
	ErrEventNotFound          = &CustomError{Err: ErrResourceNotFound, Message: "event not found", Code: CodeNotFound}
	ErrEventFull              = &CustomError{Err: ErrConflict, Message: "event has reached its maximum number of attendees", Code: CodeEventFull}
	ErrAlreadyRegistered      = &CustomError{Err: ErrConflict, Message: "already registered for this event", Code: CodeAlreadyRegistered}
	ErrNotRegistered          = &CustomError{Err: ErrResourceNotFound, Message: "registration not found", Code: CodeNotFound}
	ErrRegistrationClosed     = &CustomError{Err: ErrBadRequest, Message: "registration for this event is closed", Code: CodeRegistrationClosed}
	ErrInvalidDateRange       = &CustomError{Err: ErrValidationFailed, Message: "registration deadline must not be after the start time and the start time must be before the end time", Code: CodeInvalidDateRange}
	ErrCapacityBelowAttendees = &CustomError{Err: ErrConflict, Message: "maxAttendees cannot be lower than the current attendee count", Code: CodeCapacityBelowAttendee, Field: "maxAttendees"}
)

// Messaging, feed and notification errors
var (
	ErrConversationNotFound = &CustomError{Err: ErrResourceNotFound, Message: "conversation not found", Code: CodeNotFound}
	ErrPostNotFound         = &CustomError{Err: ErrResourceNotFound, Message: "post not found", Code: CodeNotFound}
	ErrNotificationNotFound = &CustomError{Err: ErrResourceNotFound, Message: "notification not found", Code: CodeNotFound}
)

// Newsletter, exam result and job errors
var (
	ErrNewsletterNotFound    = &CustomError{Err: ErrResourceNotFound, Message: "newsletter not found", Code: CodeNotFound}
	ErrNewsletterAlreadySent = &CustomError{Err: ErrConflict, Message: "newsletter has already been sent", Code: CodeNewsletterSent}
	ErrExamResultNotFound    = &CustomError{Err: ErrResourceNotFound, Message: "exam result not found", Code: CodeNotFound}
	ErrExamResultVerified    = &CustomError{Err: ErrConflict, Message: "exam result is already verified", Code: CodeCredentialVerified}
	ErrJobNotFound           = &CustomError{Err: ErrResourceNotFound, Message: "job not found", Code: CodeNotFound}
)

// NewResourceNotFoundError creates a not-found error with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{Err: ErrResourceNotFound, Message: message, Code: CodeNotFound}
}

// NewConflictError creates a conflict error with a message
func NewConflictError(message string) error {
	return &CustomError{Err: ErrConflict, Message: message, Code: CodeConflict}
}

// NewForbiddenError creates a permission-denied error with a message
func NewForbiddenError(message string) error {
	return &CustomError{Err: ErrPermissionDenied, Message: message, Code: CodeForbidden}
}

// NewBadRequestError creates a bad-request error with a message
func NewBadRequestError(message string) error {
	return &CustomError{Err: ErrBadRequest, Message: message, Code: CodeBadRequest}
}

// NewValidationError creates a validation error for a single field
func NewValidationError(field, message string) error {
	return &CustomError{Err: ErrValidationFailed, Message: message, Code: CodeValidationFailed, Field: field}
}

// Is reports whether err matches target or any of errList.
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}
	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
	Code    string
	Field   string
	Details map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{Err: err, Message: message}
}

// The With* helpers return a modified copy so the package-level errors
// above are never mutated. The copy still matches the original with errors.Is.

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	c := *e
	c.Details = details
	c.Err = &wrapped{orig: e}
	return &c
}

// WithCode overrides the error code
func (e *CustomError) WithCode(code string) *CustomError {
	c := *e
	c.Code = code
	c.Err = &wrapped{orig: e}
	return &c
}

// WithField sets the offending request field
func (e *CustomError) WithField(field string) *CustomError {
	c := *e
	c.Field = field
	c.Err = &wrapped{orig: e}
	return &c
}

// wrapped keeps the chain copy -> original -> base intact.
type wrapped struct {
	orig *CustomError
}

func (w *wrapped) Error() string { return w.orig.Error() }

func (w *wrapped) Unwrap() error { return w.orig }
