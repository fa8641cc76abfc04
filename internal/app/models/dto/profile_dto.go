package dto

// UpdateProfileRequest is a partial update; nil fields are left untouched
type UpdateProfileRequest struct {
	FirstName         *string   `json:"firstName,omitempty" binding:"omitempty,min=1,max=100"`
	LastName          *string   `json:"lastName,omitempty" binding:"omitempty,min=1,max=100"`
	Headline          *string   `json:"headline,omitempty" binding:"omitempty,max=200"`
	Bio               *string   `json:"bio,omitempty" binding:"omitempty,max=5000"`
	GraduationYear    *int      `json:"graduationYear,omitempty" binding:"omitempty,gte=1900"`
	Degree            *string   `json:"degree,omitempty" binding:"omitempty,max=100"`
	Major             *string   `json:"major,omitempty" binding:"omitempty,max=100"`
	CurrentCompany    *string   `json:"currentCompany,omitempty" binding:"omitempty,max=200"`
	CurrentPosition   *string   `json:"currentPosition,omitempty" binding:"omitempty,max=200"`
	Location          *string   `json:"location,omitempty" binding:"omitempty,max=200"`
	Skills            *[]string `json:"skills,omitempty" binding:"omitempty,max=50,dive,min=1,max=50"`
	Interests         *[]string `json:"interests,omitempty" binding:"omitempty,max=50,dive,min=1,max=50"`
	PreferredJobTypes *[]string `json:"preferredJobTypes,omitempty" binding:"omitempty,dive,oneof=FULL_TIME PART_TIME INTERNSHIP CONTRACT REMOTE"`
	IsMentor          *bool     `json:"isMentor,omitempty"`
	LinkedInURL       *string   `json:"linkedinUrl,omitempty" binding:"omitempty,url,max=500"`
}
