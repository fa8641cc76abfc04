package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/unilink/internal/pkg/apperrors"
)

func TestParseLimitOffset(t *testing.T) {
	tests := []struct {
		name       string
		limit      string
		offset     string
		wantLimit  int
		wantOffset int
		wantField  string
	}{
		{name: "defaults", wantLimit: 20},
		{name: "explicit", limit: "5", offset: "10", wantLimit: 5, wantOffset: 10},
		{name: "zero limit uses default", limit: "0", wantLimit: 20},
		{name: "clamped", limit: "500", wantLimit: 100},
		{name: "negative limit", limit: "-1", wantField: "limit"},
		{name: "non numeric offset", offset: "abc", wantField: "offset"},
		{name: "negative offset", offset: "-5", wantField: "offset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset, err := ParseLimitOffset(tt.limit, tt.offset, DefaultLimit, MaxLimit)
			if tt.wantField != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
				var custom *apperrors.CustomError
				require.ErrorAs(t, err, &custom)
				assert.Equal(t, tt.wantField, custom.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}

func TestNewPaginatedResponse(t *testing.T) {
	resp := NewPaginatedResponse([]int{1, 2}, 2, 4, 9)

	assert.Equal(t, []int{1, 2}, resp.Data)
	assert.Equal(t, 2, resp.Pagination.Limit)
	assert.Equal(t, 4, resp.Pagination.Offset)
	assert.Equal(t, int64(9), resp.Pagination.Total)
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" Go ", "go", "", "SQL", "sql ", "Kubernetes"})
	assert.Equal(t, []string{"Go", "SQL", "Kubernetes"}, got)
	assert.NotNil(t, NormalizeTags(nil))
}

func TestTrimmedOrNil(t *testing.T) {
	blank := "   "
	value := "  Berlin "

	assert.Nil(t, TrimmedOrNil(nil))
	assert.Nil(t, TrimmedOrNil(&blank))
	assert.Equal(t, "Berlin", *TrimmedOrNil(&value))
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 5*time.Minute, ParseDuration("5m", time.Second))
	assert.Equal(t, time.Second, ParseDuration("later", time.Second))
}
