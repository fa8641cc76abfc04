package models

import "time"

// JobType is the employment kind of a job posting
type JobType string

const (
	JobFullTime   JobType = "FULL_TIME"
	JobPartTime   JobType = "PART_TIME"
	JobInternship JobType = "INTERNSHIP"
	JobContract   JobType = "CONTRACT"
	JobRemote     JobType = "REMOTE"
)

// IsValid reports whether t is a known job type
func (t JobType) IsValid() bool {
	switch t {
	case JobFullTime, JobPartTime, JobInternship, JobContract, JobRemote:
		return true
	}
	return false
}

// Job is a posting shared with a university's network
type Job struct {
	ID             int64     `json:"id" db:"id"`
	UniversityID   int64     `json:"universityId" db:"university_id"`
	PostedBy       int64     `json:"postedBy" db:"posted_by"`
	Title          string    `json:"title" db:"title"`
	Company        string    `json:"company" db:"company"`
	Location       *string   `json:"location,omitempty" db:"location"`
	JobType        JobType   `json:"jobType" db:"job_type"`
	RequiredSkills []string  `json:"requiredSkills" db:"required_skills"`
	Description    *string   `json:"description,omitempty" db:"description"`
	IsActive       bool      `json:"isActive" db:"is_active"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

// JobFilter narrows job listings
type JobFilter struct {
	UniversityID int64
	JobType      JobType
	Search       string
	ActiveOnly   bool
	Limit        int
	Offset       int
}
