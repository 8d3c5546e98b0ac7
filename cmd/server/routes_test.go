package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"investnest.backend/internal/interfaces/http/handlers"
	"investnest.backend/internal/interfaces/http/middleware"
	"investnest.backend/pkg/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Init("development")
	os.Exit(m.Run())
}

func TestRegisterHealthRoute(t *testing.T) {
	r := gin.New()
	registerHealthRoute(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), "investnest-backend")
}

func TestApplyCORSMiddleware_Preflight(t *testing.T) {
	r := gin.New()
	applyCORSMiddleware(r)
	registerHealthRoute(r)

	req := httptest.NewRequest(http.MethodOptions, "/health", nil)
	req.Header.Set("Origin", "https://app.investnest.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.investnest.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestApplyCORSMiddleware_ExposesRetryAfter(t *testing.T) {
	r := gin.New()
	applyCORSMiddleware(r)
	registerHealthRoute(r)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://app.investnest.example")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "Retry-After")
}

func TestRegisterAPIRoutes(t *testing.T) {
	r := gin.New()
	cookies := middleware.CookieConfig{MaxAge: 3600, SameSite: http.SameSiteLaxMode}
	registerAPIRoutes(r, routeDeps{
		authHandler:         handlers.NewAuthHandler(nil, cookies),
		verificationHandler: handlers.NewVerificationHandler(nil, 1<<20),
		adminHandler:        handlers.NewAdminHandler(nil),
		protect: func(c *gin.Context) {
			c.AbortWithStatus(http.StatusUnauthorized)
		},
	})

	routes := make(map[string]bool)
	for _, info := range r.Routes() {
		routes[info.Method+" "+info.Path] = true
	}

	for _, want := range []string{
		"POST /api/auth/register",
		"POST /api/auth/verify-email",
		"POST /api/auth/resend-code",
		"POST /api/auth/login",
		"GET /api/auth/logout",
		"GET /api/auth/me",
		"PUT /api/auth/profile",
		"POST /api/auth/role",
		"DELETE /api/auth/me",
		"POST /api/verification",
		"POST /api/verification/documents",
		"GET /api/verification/status",
		"GET /api/admin/users",
		"PATCH /api/admin/users/:id/verification-status",
	} {
		assert.True(t, routes[want], "route %s is registered", want)
	}

	// Protected routes stop at the guard before touching handlers
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/verification/status", nil)
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Logout stays reachable without a session
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/logout", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
