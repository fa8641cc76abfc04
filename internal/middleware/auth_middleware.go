package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	authz "github.com/yigit/unilink/internal/app/auth"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/auth"
)

// Context keys set by JWTAuth
const (
	UserIDKey       = "userID"
	EmailKey        = "email"
	RoleTypeKey     = "roleType"
	UniversityIDKey = "universityID"
)

// TokenValidator validates access tokens
type TokenValidator interface {
	ValidateAndExtractClaims(tokenString string) (*auth.Claims, error)
}

// AuthMiddleware for authentication and authorization
type AuthMiddleware struct {
	tokens TokenValidator
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(tokens TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// JWTAuth middleware for JWT token validation
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		// Browsers cannot set headers on websocket upgrades
		if authHeader == "" {
			authHeader = c.Query("token")
		}

		if strings.TrimSpace(authHeader) == "" {
			HandleAPIError(c, &apperrors.CustomError{
				Err:     apperrors.ErrUnauthorized,
				Message: "authentication required",
				Code:    apperrors.CodeUnauthorized,
			})
			return
		}

		tokenString, err := auth.ExtractBearerToken(authHeader)
		if err != nil {
			HandleAPIError(c, err)
			return
		}

		claims, err := m.tokens.ValidateAndExtractClaims(tokenString)
		if err != nil {
			HandleAPIError(c, err)
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(EmailKey, claims.Email)
		c.Set(RoleTypeKey, claims.RoleType)
		c.Set(UniversityIDKey, claims.UniversityID)

		c.Next()
	}
}

// RoleRequired middleware to check if user has one of the required roles
func (m *AuthMiddleware) RoleRequired(roles ...models.RoleType) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := CurrentActor(c)
		if err != nil {
			HandleAPIError(c, err)
			return
		}
		if err := authz.RequireRole(actor, roles...); err != nil {
			HandleAPIError(c, err)
			return
		}
		c.Next()
	}
}

// CurrentActor returns the caller identity stored by JWTAuth
func CurrentActor(c *gin.Context) (authz.Actor, error) {
	userID, ok := c.Get(UserIDKey)
	id, isInt := userID.(int64)
	if !ok || !isInt || id <= 0 {
		return authz.Actor{}, &apperrors.CustomError{
			Err:     apperrors.ErrUnauthorized,
			Message: "authentication required",
			Code:    apperrors.CodeUnauthorized,
		}
	}

	return authz.Actor{
		UserID:       id,
		UniversityID: c.GetInt64(UniversityIDKey),
		Role:         models.RoleType(c.GetString(RoleTypeKey)),
	}, nil
}
