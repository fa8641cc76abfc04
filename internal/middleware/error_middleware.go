package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/logger"
)

// statusFor maps the base error of err to an HTTP status and default code
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest, apperrors.CodeValidationFailed
	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, apperrors.CodeBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, apperrors.CodeUnauthorized
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, apperrors.CodeForbidden
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, apperrors.CodeNotFound
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, apperrors.CodeConflict
	case errors.Is(err, apperrors.ErrRateLimited):
		return http.StatusTooManyRequests, apperrors.CodeRateLimited
	default:
		return http.StatusInternalServerError, apperrors.CodeInternal
	}
}

// NewErrorResponse builds the error body and status for err
func NewErrorResponse(err error) (int, dto.ErrorResponse) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		return status, dto.ErrorResponse{Error: "internal server error", Code: code}
	}

	resp := dto.ErrorResponse{Error: err.Error(), Code: code}

	var custom *apperrors.CustomError
	if errors.As(err, &custom) {
		if custom.Code != "" {
			resp.Code = custom.Code
		}
		resp.Error = custom.Error()
		resp.Field = custom.Field
		if len(custom.Details) > 0 {
			resp.Details = custom.Details
		}
	}
	return status, resp
}

// HandleAPIError writes the error response for err and aborts the chain
func HandleAPIError(c *gin.Context, err error) {
	status, resp := NewErrorResponse(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Str("requestId", c.GetString(RequestIDKey)).
			Msg("Unhandled error")
	}
	c.AbortWithStatusJSON(status, resp)
}

// Recovery converts panics into a 500 response
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error().
			Interface("panic", recovered).
			Str("path", c.Request.URL.Path).
			Str("requestId", c.GetString(RequestIDKey)).
			Msg("Recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "internal server error",
			Code:  apperrors.CodeInternal,
		})
	})
}

// NotFound answers unknown routes with the standard error body
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "route not found", Code: apperrors.CodeNotFound})
	}
}
