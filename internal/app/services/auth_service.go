package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/app/repositories"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/auth"
	"github.com/yigit/unilink/internal/pkg/validation"
)

// TokenIssuer mints access/refresh token pairs
type TokenIssuer interface {
	GenerateTokenPair(user *models.User) (*auth.TokenPair, error)
}

// AuthService handles registration, login and refresh token rotation
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, userID int64) (*models.UserProfile, error)
}

type authServiceImpl struct {
	userRepo       repositories.IUserRepository
	universityRepo repositories.IUniversityRepository
	profileRepo    repositories.IProfileRepository
	tokenRepo      repositories.ITokenRepository
	tokens         TokenIssuer
	logger         zerolog.Logger
	now            func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.IUserRepository,
	universityRepo repositories.IUniversityRepository,
	profileRepo repositories.IProfileRepository,
	tokenRepo repositories.ITokenRepository,
	tokens TokenIssuer,
	logger zerolog.Logger,
) AuthService {
	return &authServiceImpl{
		userRepo:       userRepo,
		universityRepo: universityRepo,
		profileRepo:    profileRepo,
		tokenRepo:      tokenRepo,
		tokens:         tokens,
		logger:         logger,
		now:            clock,
	}
}

// Register creates a student or alumni account and logs it in
func (s *authServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	role, ok := models.ParseRoleType(req.RoleType)
	if !ok || !role.IsSelfAssignable() {
		return nil, apperrors.NewValidationError("roleType", "roleType must be one of STUDENT ALUMNI")
	}
	if !validation.IsStrongPassword(req.Password) {
		return nil, apperrors.NewValidationError("password", "password must be at least 8 characters and contain a letter and a digit")
	}

	university, err := s.universityRepo.GetByID(ctx, req.UniversityID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUniversityNotFound) {
			return nil, apperrors.NewValidationError("universityId", "university does not exist")
		}
		return nil, fmt.Errorf("error loading university: %w", err)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if university.EmailDomain != nil && *university.EmailDomain != "" &&
		!validation.EmailMatchesDomain(email, *university.EmailDomain) {
		return nil, apperrors.ErrEmailDomainMismatch
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		UniversityID: university.ID,
		Email:        email,
		Password:     hashed,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		RoleType:     role,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().
		Int64("userID", user.ID).
		Int64("universityID", user.UniversityID).
		Str("role", string(role)).
		Msg("User registered")

	return s.issue(ctx, user)
}

// Login exchanges credentials for a token pair
func (s *authServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		s.logger.Warn().Int64("userID", user.ID).Msg("Login failed: wrong password")
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	now := s.now()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		// Not fatal for the login itself
		s.logger.Warn().Err(err).Int64("userID", user.ID).Msg("Failed to update last login time")
	} else {
		user.LastLoginAt = &now
	}

	return s.issue(ctx, user)
}

// Refresh rotates a refresh token: the old one is revoked and a new pair issued
func (s *authServiceImpl) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResponse, error) {
	stored, err := s.tokenRepo.Get(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if stored.IsRevoked {
		s.logger.Warn().Int64("userID", stored.UserID).Msg("Revoked refresh token presented")
		return nil, apperrors.ErrTokenRevoked
	}
	if !stored.IsUsable(s.now()) {
		return nil, apperrors.ErrTokenExpired
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrTokenInvalid
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	if !user.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	pair, err := s.tokens.GenerateTokenPair(user)
	if err != nil {
		return nil, err
	}
	if err := s.tokenRepo.Rotate(ctx, refreshToken, pair.RefreshToken, user.ID, pair.RefreshExpiresAt); err != nil {
		return nil, err
	}

	resp := toTokenResponse(pair)
	return &resp, nil
}

// Logout revokes the refresh token
func (s *authServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	return s.tokenRepo.Revoke(ctx, refreshToken)
}

// Me returns the caller with their profile
func (s *authServiceImpl) Me(ctx context.Context, userID int64) (*models.UserProfile, error) {
	return s.profileRepo.GetByUserID(ctx, userID)
}

func (s *authServiceImpl) issue(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	pair, err := s.tokens.GenerateTokenPair(user)
	if err != nil {
		return nil, err
	}
	if err := s.tokenRepo.Create(ctx, pair.RefreshToken, user.ID, pair.RefreshExpiresAt); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}
	return &dto.AuthResponse{TokenResponse: toTokenResponse(pair), User: user}, nil
}

func toTokenResponse(pair *auth.TokenPair) dto.TokenResponse {
	return dto.TokenResponse{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		TokenType:        "Bearer",
		ExpiresIn:        pair.ExpiresIn,
		RefreshExpiresIn: pair.RefreshExpiresIn,
	}
}
