package models

import "time"

// University is the tenant every user belongs to
type University struct {
	ID          int64     `json:"id" db:"id" example:"1"`
	Name        string    `json:"name" db:"name" example:"Example University"`
	Slug        string    `json:"slug" db:"slug" example:"example-university"`
	EmailDomain *string   `json:"emailDomain,omitempty" db:"email_domain" example:"uni.edu"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}
