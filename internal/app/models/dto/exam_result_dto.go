package dto

import "time"

// CreateExamResultRequest is the body of POST /exam-results
type CreateExamResultRequest struct {
	ExamName string    `json:"examName" binding:"required,min=1,max=200" example:"GRE General"`
	ExamCode *string   `json:"examCode,omitempty" binding:"omitempty,max=50" example:"GRE"`
	Score    *float64  `json:"score" binding:"required,gte=0" example:"325"`
	MaxScore float64   `json:"maxScore" binding:"required,gt=0" example:"340"`
	Grade    *string   `json:"grade,omitempty" binding:"omitempty,max=10"`
	TakenAt  time.Time `json:"takenAt" binding:"required"`
}
