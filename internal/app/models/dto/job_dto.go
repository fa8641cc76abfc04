package dto

// CreateJobRequest is the body of POST /jobs
type CreateJobRequest struct {
	Title          string   `json:"title" binding:"required,min=1,max=200" example:"Backend Engineer"`
	Company        string   `json:"company" binding:"required,min=1,max=200" example:"Acme"`
	Location       *string  `json:"location,omitempty" binding:"omitempty,max=200" example:"Berlin"`
	JobType        string   `json:"jobType" binding:"required,oneof=FULL_TIME PART_TIME INTERNSHIP CONTRACT REMOTE" example:"FULL_TIME"`
	RequiredSkills []string `json:"requiredSkills" binding:"max=50,dive,min=1,max=50"`
	Description    *string  `json:"description,omitempty" binding:"omitempty,max=10000"`
}

// UpdateJobRequest is a partial update of a job
type UpdateJobRequest struct {
	Title          *string   `json:"title,omitempty" binding:"omitempty,min=1,max=200"`
	Company        *string   `json:"company,omitempty" binding:"omitempty,min=1,max=200"`
	Location       *string   `json:"location,omitempty" binding:"omitempty,max=200"`
	JobType        *string   `json:"jobType,omitempty" binding:"omitempty,oneof=FULL_TIME PART_TIME INTERNSHIP CONTRACT REMOTE"`
	RequiredSkills *[]string `json:"requiredSkills,omitempty" binding:"omitempty,max=50,dive,min=1,max=50"`
	Description    *string   `json:"description,omitempty" binding:"omitempty,max=10000"`
	IsActive       *bool     `json:"isActive,omitempty"`
}
