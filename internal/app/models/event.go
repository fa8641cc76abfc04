package models

import "time"

// EventStatus is the lifecycle state of an event
type EventStatus string

const (
	EventStatusDraft     EventStatus = "DRAFT"
	EventStatusPublished EventStatus = "PUBLISHED"
	EventStatusCancelled EventStatus = "CANCELLED"
)

// IsValid reports whether s is a known status
func (s EventStatus) IsValid() bool {
	return s == EventStatusDraft || s == EventStatusPublished || s == EventStatusCancelled
}

// Event is a university-scoped gathering with limited capacity
type Event struct {
	ID                   int64       `json:"id" db:"id"`
	UniversityID         int64       `json:"universityId" db:"university_id"`
	OrganizerID          int64       `json:"organizerId" db:"organizer_id"`
	Title                string      `json:"title" db:"title"`
	Description          *string     `json:"description,omitempty" db:"description"`
	Location             *string     `json:"location,omitempty" db:"location"`
	IsVirtual            bool        `json:"isVirtual" db:"is_virtual"`
	StartTime            time.Time   `json:"startTime" db:"start_time"`
	EndTime              time.Time   `json:"endTime" db:"end_time"`
	RegistrationDeadline *time.Time  `json:"registrationDeadline,omitempty" db:"registration_deadline"`
	MaxAttendees         int         `json:"maxAttendees" db:"max_attendees"`
	AttendeeCount        int         `json:"attendeeCount" db:"attendee_count"`
	Status               EventStatus `json:"status" db:"status"`
	CreatedAt            time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time   `json:"updatedAt" db:"updated_at"`
}

// RegistrationClosesAt is the deadline, or the start time when none is set
func (e *Event) RegistrationClosesAt() time.Time {
	if e.RegistrationDeadline != nil {
		return *e.RegistrationDeadline
	}
	return e.StartTime
}

// IsFull reports whether no seat is left
func (e *Event) IsFull() bool {
	return e.AttendeeCount >= e.MaxAttendees
}

// RegistrationStatus is the state of a user's registration
type RegistrationStatus string

const (
	RegistrationRegistered RegistrationStatus = "REGISTERED"
	RegistrationAttended   RegistrationStatus = "ATTENDED"
	RegistrationCancelled  RegistrationStatus = "CANCELLED"
)

// EventRegistration links a user to an event
type EventRegistration struct {
	ID           int64              `json:"id" db:"id"`
	EventID      int64              `json:"eventId" db:"event_id"`
	UserID       int64              `json:"userId" db:"user_id"`
	Status       RegistrationStatus `json:"status" db:"status"`
	RegisteredAt time.Time          `json:"registeredAt" db:"registered_at"`
	UpdatedAt    time.Time          `json:"updatedAt" db:"updated_at"`
	FirstName    string             `json:"firstName,omitempty" db:"first_name"`
	LastName     string             `json:"lastName,omitempty" db:"last_name"`
	Email        string             `json:"email,omitempty" db:"email"`
}

// IsActive reports whether the registration holds a seat
func (r *EventRegistration) IsActive() bool {
	return r.Status == RegistrationRegistered || r.Status == RegistrationAttended
}

// EventFilter narrows event listings
type EventFilter struct {
	UniversityID  int64
	Status        EventStatus
	UpcomingOnly  bool
	OrganizerID   int64
	IncludeDrafts bool
	Now           time.Time
	Limit         int
	Offset        int
}
