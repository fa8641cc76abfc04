package dto

// CreateNewsletterRequest is the body of POST /newsletters
type CreateNewsletterRequest struct {
	Subject  string `json:"subject" binding:"required,min=1,max=255" example:"Spring update"`
	Content  string `json:"content" binding:"required,min=1" example:"<p>News from campus</p>"`
	Audience string `json:"audience,omitempty" binding:"omitempty,oneof=ALL STUDENT ALUMNI" example:"ALL"`
}

// UpdateNewsletterRequest is a partial update of a draft newsletter
type UpdateNewsletterRequest struct {
	Subject  *string `json:"subject,omitempty" binding:"omitempty,min=1,max=255"`
	Content  *string `json:"content,omitempty" binding:"omitempty,min=1"`
	Audience *string `json:"audience,omitempty" binding:"omitempty,oneof=ALL STUDENT ALUMNI"`
}
