package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthRouter(cfg JWTConfig, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	group := router.Group("/protected", Auth(cfg))
	if len(roles) > 0 {
		group.Use(RequireRole(roles...))
	}
	group.GET("", func(c *gin.Context) {
		userID, _ := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	return router
}

func TestAuth_ValidToken(t *testing.T) {
	cfg := JWTConfig{Secret: "test-secret", Issuer: "ticket-sales"}
	router := setupAuthRouter(cfg)

	token, err := IssueToken(cfg, "user-1", "admin", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
}

func TestAuth_Rejections(t *testing.T) {
	cfg := JWTConfig{Secret: "test-secret", Issuer: "ticket-sales"}
	router := setupAuthRouter(cfg)

	expired, err := IssueToken(cfg, "user-1", "admin", -time.Minute)
	require.NoError(t, err)
	wrongIssuer, err := IssueToken(JWTConfig{Secret: "test-secret", Issuer: "someone-else"}, "user-1", "admin", time.Hour)
	require.NoError(t, err)
	wrongSecret, err := IssueToken(JWTConfig{Secret: "other-secret", Issuer: "ticket-sales"}, "user-1", "admin", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not a bearer token", "Basic dXNlcjpwYXNz"},
		{"garbage token", "Bearer not.a.token"},
		{"expired token", "Bearer " + expired},
		{"wrong issuer", "Bearer " + wrongIssuer},
		{"wrong secret", "Bearer " + wrongSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"unauthorized"`)
		})
	}
}

func TestRequireRole(t *testing.T) {
	cfg := JWTConfig{Secret: "test-secret", Issuer: "ticket-sales"}
	router := setupAuthRouter(cfg, "admin", "organizer")

	tests := []struct {
		name     string
		role     string
		wantCode int
	}{
		{"admin allowed", "admin", http.StatusOK},
		{"organizer allowed", "organizer", http.StatusOK},
		{"viewer forbidden", "viewer", http.StatusForbidden},
		{"empty role forbidden", "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := IssueToken(cfg, "user-1", tt.role, time.Hour)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}
