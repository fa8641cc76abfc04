package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/pkg/apperrors"
)

// BindJSON decodes and validates the request body into obj. Failures come
// back as VALIDATION_FAILED errors naming the first offending field.
func BindJSON(c *gin.Context, obj interface{}) error {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return nil
	}
	return translateBindError(err)
}

// ParseIDParam reads a positive integer path parameter
func ParseIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, &apperrors.CustomError{
			Err:     apperrors.ErrValidationFailed,
			Message: fmt.Sprintf("%s must be a positive integer", name),
			Code:    apperrors.CodeInvalidID,
			Field:   name,
		}
	}
	return id, nil
}

func translateBindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fields := make([]dto.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, dto.FieldError{Field: fe.Field(), Message: formatValidationError(fe)})
		}
		return &apperrors.CustomError{
			Err:     apperrors.ErrValidationFailed,
			Message: fields[0].Message,
			Code:    apperrors.CodeValidationFailed,
			Field:   fields[0].Field,
			Details: map[string]interface{}{"fields": fields},
		}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperrors.NewValidationError(typeErr.Field, fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type.String()))
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return apperrors.NewValidationError("", "request body must be valid JSON")
	}

	return apperrors.NewValidationError("", err.Error())
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gte":
		return e.Field() + " must be greater than or equal to " + e.Param()
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "lte":
		return e.Field() + " must be less than or equal to " + e.Param()
	case "email":
		return e.Field() + " must be a valid email address"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "url":
		return e.Field() + " must be a valid URL"
	case "uuid", "uuid4":
		return e.Field() + " must be a valid UUID"
	case "fqdn":
		return e.Field() + " must be a valid domain name"
	case "slug":
		return e.Field() + " must contain only lowercase letters, digits and dashes"
	case "strongpassword":
		return e.Field() + " must be at least 8 characters and contain a letter and a digit"
	case "gtfield", "gtefield":
		return e.Field() + " must be after " + e.Param()
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
