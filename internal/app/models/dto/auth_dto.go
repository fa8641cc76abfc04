package dto

import "github.com/yigit/unilink/internal/app/models"

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Email        string `json:"email" binding:"required,email,max=255" example:"ada@uni.edu"`
	Password     string `json:"password" binding:"required,min=8,max=72,strongpassword" example:"s3cretpass"`
	FirstName    string `json:"firstName" binding:"required,min=1,max=100" example:"Ada"`
	LastName     string `json:"lastName" binding:"required,min=1,max=100" example:"Lovelace"`
	RoleType     string `json:"roleType" binding:"required,oneof=STUDENT ALUMNI" example:"ALUMNI"`
	UniversityID int64  `json:"universityId" binding:"required,gt=0" example:"1"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"ada@uni.edu"`
	Password string `json:"password" binding:"required" example:"s3cretpass"`
}

// RefreshTokenRequest carries a refresh token for rotation or logout
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required,uuid" example:"2f1c6c1e-8d0a-4c3b-9d59-0b7e6b7d9a10"`
}

// TokenResponse is returned by register, login and refresh
type TokenResponse struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	TokenType        string `json:"tokenType" example:"Bearer"`
	ExpiresIn        int    `json:"expiresIn" example:"3600"`
	RefreshExpiresIn int    `json:"refreshExpiresIn" example:"2592000"`
}

// AuthResponse is a token pair with the authenticated user
type AuthResponse struct {
	TokenResponse
	User *models.User `json:"user"`
}
