package dto

import "time"

// CreateEventRequest is the body of POST /events
type CreateEventRequest struct {
	Title                string     `json:"title" binding:"required,min=1,max=200" example:"Alumni Meetup"`
	Description          *string    `json:"description,omitempty" binding:"omitempty,max=10000"`
	Location             *string    `json:"location,omitempty" binding:"omitempty,max=255"`
	IsVirtual            bool       `json:"isVirtual"`
	StartTime            time.Time  `json:"startTime" binding:"required"`
	EndTime              time.Time  `json:"endTime" binding:"required"`
	RegistrationDeadline *time.Time `json:"registrationDeadline,omitempty"`
	MaxAttendees         int        `json:"maxAttendees" binding:"required,gte=1" example:"100"`
	Status               string     `json:"status,omitempty" binding:"omitempty,oneof=DRAFT PUBLISHED" example:"PUBLISHED"`
}

// UpdateEventRequest is a partial update of an event
type UpdateEventRequest struct {
	Title                *string    `json:"title,omitempty" binding:"omitempty,min=1,max=200"`
	Description          *string    `json:"description,omitempty" binding:"omitempty,max=10000"`
	Location             *string    `json:"location,omitempty" binding:"omitempty,max=255"`
	IsVirtual            *bool      `json:"isVirtual,omitempty"`
	StartTime            *time.Time `json:"startTime,omitempty"`
	EndTime              *time.Time `json:"endTime,omitempty"`
	RegistrationDeadline *time.Time `json:"registrationDeadline,omitempty"`
	MaxAttendees         *int       `json:"maxAttendees,omitempty" binding:"omitempty,gte=1"`
	Status               *string    `json:"status,omitempty" binding:"omitempty,oneof=DRAFT PUBLISHED"`
}

// UpdateRegistrationRequest marks a registrant's attendance
type UpdateRegistrationRequest struct {
	Status string `json:"status" binding:"required,oneof=ATTENDED REGISTERED" example:"ATTENDED"`
}
