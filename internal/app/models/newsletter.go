package models

import "time"

// NewsletterAudience selects the recipients of a newsletter
type NewsletterAudience string

const (
	AudienceAll      NewsletterAudience = "ALL"
	AudienceStudents NewsletterAudience = "STUDENT"
	AudienceAlumni   NewsletterAudience = "ALUMNI"
)

// IsValid reports whether a is a known audience
func (a NewsletterAudience) IsValid() bool {
	return a == AudienceAll || a == AudienceStudents || a == AudienceAlumni
}

// Role returns the role the audience is restricted to, or "" for everyone
func (a NewsletterAudience) Role() RoleType {
	switch a {
	case AudienceStudents:
		return RoleStudent
	case AudienceAlumni:
		return RoleAlumni
	}
	return ""
}

// NewsletterStatus is DRAFT until sent
type NewsletterStatus string

const (
	NewsletterDraft NewsletterStatus = "DRAFT"
	NewsletterSent  NewsletterStatus = "SENT"
)

// Newsletter is a mass email authored by a university admin
type Newsletter struct {
	ID             int64              `json:"id" db:"id"`
	UniversityID   int64              `json:"universityId" db:"university_id"`
	AuthorID       int64              `json:"authorId" db:"author_id"`
	Subject        string             `json:"subject" db:"subject"`
	Content        string             `json:"content" db:"content"`
	Audience       NewsletterAudience `json:"audience" db:"audience"`
	Status         NewsletterStatus   `json:"status" db:"status"`
	RecipientCount int                `json:"recipientCount" db:"recipient_count"`
	SentAt         *time.Time         `json:"sentAt,omitempty" db:"sent_at"`
	CreatedAt      time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time          `json:"updatedAt" db:"updated_at"`
}
