package dto

// CreateUniversityRequest is the body of POST /universities
type CreateUniversityRequest struct {
	Name        string  `json:"name" binding:"required,min=2,max=200" example:"Example University"`
	Slug        string  `json:"slug" binding:"required,min=2,max=100,slug" example:"example-university"`
	EmailDomain *string `json:"emailDomain,omitempty" binding:"omitempty,fqdn" example:"uni.edu"`
}
