package helpers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/pkg/apperrors"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ParsePaginationParams reads ?limit= and ?offset=. Missing values take the defaults,
// a limit above MaxLimit is clamped, and non-numeric or negative values are rejected.
func ParsePaginationParams(c *gin.Context) (limit, offset int, err error) {
	return ParseLimitOffset(c.Query("limit"), c.Query("offset"), DefaultLimit, MaxLimit)
}

// ParseLimitOffset is ParsePaginationParams over raw strings with caller supplied bounds
func ParseLimitOffset(limitStr, offsetStr string, defaultLimit, maxLimit int) (limit, offset int, err error) {
	limit = defaultLimit
	if limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			return 0, 0, apperrors.NewValidationError("limit", "limit must be a non-negative integer")
		}
		if limit == 0 {
			limit = defaultLimit
		}
		if limit > maxLimit {
			limit = maxLimit
		}
	}

	if offsetStr != "" {
		offset, err = strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return 0, 0, apperrors.NewValidationError("offset", "offset must be a non-negative integer")
		}
	}

	return limit, offset, nil
}

// NewPagination creates the pagination block of a list response
func NewPagination(limit, offset int, total int64) dto.Pagination {
	return dto.Pagination{
		Limit:  limit,
		Offset: offset,
		Total:  total,
	}
}

// NewPaginatedResponse wraps items with their pagination block. A nil slice is never
// emitted as JSON null by callers passing an empty, non-nil slice.
func NewPaginatedResponse(items interface{}, limit, offset int, total int64) dto.PaginatedResponse {
	return dto.PaginatedResponse{
		Data:       items,
		Pagination: NewPagination(limit, offset, total),
	}
}
