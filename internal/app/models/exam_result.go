package models

import "time"

// ExamResult is an exam credential record owned by a user
type ExamResult struct {
	ID           int64      `json:"id" db:"id"`
	UserID       int64      `json:"userId" db:"user_id"`
	UniversityID int64      `json:"universityId" db:"university_id"`
	ExamName     string     `json:"examName" db:"exam_name"`
	ExamCode     *string    `json:"examCode,omitempty" db:"exam_code"`
	Score        float64    `json:"score" db:"score"`
	MaxScore     float64    `json:"maxScore" db:"max_score"`
	Grade        *string    `json:"grade,omitempty" db:"grade"`
	TakenAt      time.Time  `json:"takenAt" db:"taken_at"`
	CredentialID string     `json:"credentialId" db:"credential_id"`
	IsVerified   bool       `json:"isVerified" db:"is_verified"`
	VerifiedBy   *int64     `json:"verifiedBy,omitempty" db:"verified_by"`
	VerifiedAt   *time.Time `json:"verifiedAt,omitempty" db:"verified_at"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
}

// Percentage is score relative to maxScore, 0..100
func (r *ExamResult) Percentage() float64 {
	if r.MaxScore <= 0 {
		return 0
	}
	return r.Score / r.MaxScore * 100
}

// Credential is the public view of a verified exam result
type Credential struct {
	CredentialID   string     `json:"credentialId" db:"credential_id"`
	ExamName       string     `json:"examName" db:"exam_name"`
	ExamCode       *string    `json:"examCode,omitempty" db:"exam_code"`
	HolderName     string     `json:"holderName" db:"holder_name"`
	UniversityName string     `json:"universityName" db:"university_name"`
	Score          float64    `json:"score" db:"score"`
	MaxScore       float64    `json:"maxScore" db:"max_score"`
	Grade          *string    `json:"grade,omitempty" db:"grade"`
	TakenAt        time.Time  `json:"takenAt" db:"taken_at"`
	IsVerified     bool       `json:"isVerified" db:"is_verified"`
	VerifiedAt     *time.Time `json:"verifiedAt,omitempty" db:"verified_at"`
}
