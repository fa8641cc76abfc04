package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID           int64      `json:"id" db:"id" example:"1"`
	UniversityID int64      `json:"universityId" db:"university_id" example:"1"`
	Email        string     `json:"email" db:"email" example:"ada@uni.edu"`
	Password     string     `json:"-" db:"password"`
	FirstName    string     `json:"firstName" db:"first_name" example:"Ada"`
	LastName     string     `json:"lastName" db:"last_name" example:"Lovelace"`
	RoleType     RoleType   `json:"roleType" db:"role_type" example:"ALUMNI"`
	IsActive     bool       `json:"isActive" db:"is_active" example:"true"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

// FullName joins first and last name
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// IsAdmin reports whether the user administers their university
func (u *User) IsAdmin() bool {
	return u.RoleType == RoleUniversityAdmin
}

// Profile is the 1:1 extension of a user, row of 'profiles'
type Profile struct {
	UserID            int64     `json:"userId" db:"user_id"`
	Headline          *string   `json:"headline,omitempty" db:"headline"`
	Bio               *string   `json:"bio,omitempty" db:"bio"`
	GraduationYear    *int      `json:"graduationYear,omitempty" db:"graduation_year"`
	Degree            *string   `json:"degree,omitempty" db:"degree"`
	Major             *string   `json:"major,omitempty" db:"major"`
	CurrentCompany    *string   `json:"currentCompany,omitempty" db:"current_company"`
	CurrentPosition   *string   `json:"currentPosition,omitempty" db:"current_position"`
	Location          *string   `json:"location,omitempty" db:"location"`
	Skills            []string  `json:"skills" db:"skills"`
	Interests         []string  `json:"interests" db:"interests"`
	PreferredJobTypes []string  `json:"preferredJobTypes" db:"preferred_job_types"`
	IsMentor          bool      `json:"isMentor" db:"is_mentor"`
	LinkedInURL       *string   `json:"linkedinUrl,omitempty" db:"linkedin_url"`
	UpdatedAt         time.Time `json:"updatedAt" db:"updated_at"`
}

// UserProfile is a user joined with its profile
type UserProfile struct {
	User
	Profile Profile `json:"profile"`
}

// ProfileCard is the public view of a user shown to other members.
// It leaves out contact and account details.
type ProfileCard struct {
	ID           int64    `json:"id" example:"1"`
	UniversityID int64    `json:"universityId" example:"1"`
	FirstName    string   `json:"firstName" example:"Ada"`
	LastName     string   `json:"lastName" example:"Lovelace"`
	RoleType     RoleType `json:"roleType" example:"ALUMNI"`
	Profile      Profile  `json:"profile"`
}

// Card returns the public view of p
func (p *UserProfile) Card() ProfileCard {
	return ProfileCard{
		ID:           p.ID,
		UniversityID: p.UniversityID,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		RoleType:     p.RoleType,
		Profile:      p.Profile,
	}
}

// ProfileFilter narrows profile listings
type ProfileFilter struct {
	UniversityID int64
	Role         RoleType
	Search       string
	Skill        string
	MentorsOnly  bool
	ExcludeUser  int64
	Limit        int
	Offset       int
}
