package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/unilink/internal/app/models"
	"github.com/yigit/unilink/internal/app/models/dto"
	"github.com/yigit/unilink/internal/pkg/apperrors"
	"github.com/yigit/unilink/internal/pkg/auth"
	"github.com/yigit/unilink/internal/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = validation.Register(v)
	}
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHandleAPIErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
		field  string
	}{
		{"validation", apperrors.NewValidationError("title", "title is required"), http.StatusBadRequest, apperrors.CodeValidationFailed, "title"},
		{"date range", apperrors.ErrInvalidDateRange, http.StatusBadRequest, apperrors.CodeInvalidDateRange, ""},
		{"registration closed", apperrors.ErrRegistrationClosed, http.StatusBadRequest, apperrors.CodeRegistrationClosed, ""},
		{"credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, apperrors.CodeInvalidCredentials, ""},
		{"expired", apperrors.ErrTokenExpired, http.StatusUnauthorized, apperrors.CodeTokenExpired, ""},
		{"forbidden", apperrors.NewForbiddenError("nope"), http.StatusForbidden, apperrors.CodeForbidden, ""},
		{"not found", apperrors.ErrEventNotFound, http.StatusNotFound, apperrors.CodeNotFound, ""},
		{"wrapped not found", fmt.Errorf("loading: %w", apperrors.ErrPostNotFound), http.StatusNotFound, apperrors.CodeNotFound, ""},
		{"full", apperrors.ErrEventFull, http.StatusConflict, apperrors.CodeEventFull, ""},
		{"email exists", apperrors.ErrEmailAlreadyExists, http.StatusConflict, apperrors.CodeEmailExists, "email"},
		{"capacity", apperrors.ErrCapacityBelowAttendees, http.StatusConflict, apperrors.CodeCapacityBelowAttendee, "maxAttendees"},
		{"rate limited", apperrors.ErrRateLimited, http.StatusTooManyRequests, apperrors.CodeRateLimited, ""},
		{"unknown", errors.New("pq: connection refused at 10.0.0.3"), http.StatusInternalServerError, apperrors.CodeInternal, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleAPIError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			body := decodeError(t, w)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.field, body.Field)
			assert.True(t, c.IsAborted())
		})
	}
}

func TestInternalErrorDoesNotLeak(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleAPIError(c, errors.New("password=hunter2 host=db.internal"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "hunter2")
	assert.NotContains(t, w.Body.String(), "db.internal")
	assert.Equal(t, "internal server error", decodeError(t, w).Error)
}

func TestRecoveryReturnsGenericError(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("secret detail") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secret detail")
}

func newJWT() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "test",
	})
}

func authRouter(m *AuthMiddleware, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{m.JWTAuth()}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		actor, err := CurrentActor(c)
		if err != nil {
			HandleAPIError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"userId": actor.UserID, "universityId": actor.UniversityID, "role": actor.Role})
	})
	r.GET("/me", handlers...)
	return r
}

func TestJWTAuth(t *testing.T) {
	jwtSvc := newJWT()
	m := NewAuthMiddleware(jwtSvc)
	r := authRouter(m)

	pair, err := jwtSvc.GenerateTokenPair(&models.User{ID: 5, UniversityID: 2, Email: "a@uni.edu", RoleType: models.RoleAlumni})
	require.NoError(t, err)

	t.Run("bearer header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"userId":5,"universityId":2,"role":"ALUMNI"}`, w.Body.String())
	})

	t.Run("query token", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me?token="+pair.AccessToken, nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, apperrors.CodeUnauthorized, decodeError(t, w).Code)
	})

	t.Run("garbage", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer a.b.c")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, apperrors.CodeInvalidToken, decodeError(t, w).Code)
	})
}

func TestRoleRequired(t *testing.T) {
	jwtSvc := newJWT()
	m := NewAuthMiddleware(jwtSvc)
	r := authRouter(m, m.RoleRequired(models.RoleUniversityAdmin))

	student, err := jwtSvc.GenerateTokenPair(&models.User{ID: 1, UniversityID: 1, Email: "s@uni.edu", RoleType: models.RoleStudent})
	require.NoError(t, err)
	admin, err := jwtSvc.GenerateTokenPair(&models.User{ID: 2, UniversityID: 1, Email: "a@uni.edu", RoleType: models.RoleUniversityAdmin})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+student.AccessToken)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+admin.AccessToken)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

type bindTarget struct {
	Title        string `json:"title" binding:"required,max=10"`
	MaxAttendees int    `json:"maxAttendees" binding:"required,min=1"`
	Slug         string `json:"slug" binding:"omitempty,slug"`
}

func TestBindJSON(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
		ok    bool
	}{
		{"valid", `{"title":"Meetup","maxAttendees":3}`, "", true},
		{"missing title", `{"maxAttendees":3}`, "title", false},
		{"bad capacity", `{"title":"Meetup","maxAttendees":0}`, "maxAttendees", false},
		{"bad slug", `{"title":"Meetup","maxAttendees":1,"slug":"Not A Slug"}`, "slug", false},
		{"wrong type", `{"title":"Meetup","maxAttendees":"many"}`, "maxAttendees", false},
		{"malformed", `{"title":`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var target bindTarget
			err := BindJSON(c, &target)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

			var custom *apperrors.CustomError
			require.True(t, errors.As(err, &custom))
			assert.Equal(t, tt.field, custom.Field)
		})
	}
}

func TestParseIDParam(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "42"}}

	id, err := ParseIDParam(c, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	_, err = ParseIDParam(c, "id")
	var custom *apperrors.CustomError
	require.True(t, errors.As(err, &custom))
	assert.Equal(t, apperrors.CodeInvalidID, custom.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	defer rl.Close()

	frozen := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return frozen }

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"))

	frozen = frozen.Add(time.Second)
	assert.True(t, rl.Allow("1.1.1.1"))

	frozen = frozen.Add(time.Hour)
	rl.evictIdle(limiterIdleTTL)
	assert.Equal(t, 0, rl.Size())
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	defer rl.Close()

	r := gin.New()
	r.Use(rl.Middleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, apperrors.CodeRateLimited, decodeError(t, w).Code)
}

func TestRequestIDAndLogger(t *testing.T) {
	var buf strings.Builder
	log := zerolog.New(&buf)

	r := gin.New()
	r.Use(RequestID(), RequestLogger(log))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	id := w.Header().Get(RequestIDHeader)
	assert.Len(t, id, 36)
	assert.Contains(t, buf.String(), `"status":204`)
	assert.Contains(t, buf.String(), id)
}
