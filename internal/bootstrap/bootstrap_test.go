package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appControllers "github.com/yigit/unilink/internal/app/controllers"
	appRoutes "github.com/yigit/unilink/internal/app/routes"
	"github.com/yigit/unilink/internal/config"
	appMiddleware "github.com/yigit/unilink/internal/middleware"
	pkgAuth "github.com/yigit/unilink/internal/pkg/auth"
)

func testDependencies(dbErr error) *Dependencies {
	jwtSvc := pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "unilink-test",
	})
	return &Dependencies{
		JWTService:     jwtSvc,
		AuthMiddleware: appMiddleware.NewAuthMiddleware(jwtSvc),
		Controllers: appRoutes.Controllers{
			Health: appControllers.NewHealthController(map[string]appControllers.HealthCheck{
				"database": func(context.Context) error { return dbErr },
			}, zerolog.Nop()),
		},
		Logger: zerolog.Nop(),
	}
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.Mode = "production"
	return cfg
}

func serve(t *testing.T, router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "10.0.0.1:1234"
	router.ServeHTTP(w, req)
	return w
}

func TestSetupRouterMountsPublicAndProtectedRoutes(t *testing.T) {
	router, err := SetupRouter(testConfig(), testDependencies(nil), zerolog.Nop())
	require.NoError(t, err)

	w := serve(t, router, http.MethodGet, "/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = serve(t, router, http.MethodGet, "/api/v1/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"up"`)

	w = serve(t, router, http.MethodGet, "/api/v1/events")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(t, router, http.MethodGet, "/api/v1/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "route not found")

	w = serve(t, router, http.MethodGet, "/swagger/index.html")
	assert.Equal(t, http.StatusNotFound, w.Code, "swagger is not served in production")
}

func TestSetupRouterReportsDegradedDatabase(t *testing.T) {
	router, err := SetupRouter(testConfig(), testDependencies(errors.New("connection refused")), zerolog.Nop())
	require.NoError(t, err)

	w := serve(t, router, http.MethodGet, "/api/v1/health")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
}

func TestSetupRouterAppliesRateLimit(t *testing.T) {
	deps := testDependencies(nil)
	deps.RateLimiter = appMiddleware.NewRateLimiter(1, 1)
	t.Cleanup(deps.Close)

	router, err := SetupRouter(testConfig(), deps, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, serve(t, router, http.MethodGet, "/ping").Code)
	w := serve(t, router, http.MethodGet, "/ping")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}
