package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/umichkisa/pocha-backend/internal/app/model"
	"github.com/umichkisa/pocha-backend/pkg/util"
)

const testJWTSecret = "test-jwt-secret-for-middleware"

func setupMiddlewareTest() (*gin.Engine, *AuthMiddleware) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(LoggingMiddleware())
	return router, NewAuthMiddleware(testJWTSecret)
}

func generateTestToken(t *testing.T, userID uint, email, role string) string {
	tokens, err := util.GenerateTokenPair(userID, email, role, testJWTSecret, 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	return tokens.AccessToken
}

func serve(router *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_Authenticate_Success(t *testing.T) {
	router, authMiddleware := setupMiddlewareTest()
	token := generateTestToken(t, 1, "student@umich.edu", "user")

	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		email, _ := GetUserEmail(c)
		role, _ := GetUserRole(c)
		c.JSON(http.StatusOK, gin.H{"email": email, "role": role})
	})

	w := serve(router, "/test", "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "student@umich.edu")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestAuthMiddleware_Authenticate_QueryToken(t *testing.T) {
	router, authMiddleware := setupMiddlewareTest()
	token := generateTestToken(t, 1, "staff@umich.edu", "admin")

	router.GET("/socket", authMiddleware.Authenticate(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := serve(router, "/socket?token="+token, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_Authenticate_NoToken(t *testing.T) {
	router, authMiddleware := setupMiddlewareTest()
	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := serve(router, "/test", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Authorization header is required")
}

func TestAuthMiddleware_Authenticate_InvalidFormat(t *testing.T) {
	router, authMiddleware := setupMiddlewareTest()
	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for _, header := range []string{"invalid-token", "Basic token123", "Bearer "} {
		t.Run(header, func(t *testing.T) {
			w := serve(router, "/test", header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthMiddleware_Authenticate_InvalidToken(t *testing.T) {
	router, authMiddleware := setupMiddlewareTest()
	router.GET("/test", authMiddleware.Authenticate(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := serve(router, "/test", "Bearer invalid.jwt.token")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_TOKEN_INVALID")
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	router, authMiddleware := setupMiddlewareTest()
	router.GET("/dashboard",
		authMiddleware.Authenticate(),
		authMiddleware.RequireRole("admin"),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	tests := []struct {
		role           string
		expectedStatus int
	}{
		{"admin", http.StatusOK},
		{"user", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			token := generateTestToken(t, 1, "someone@umich.edu", tt.role)
			w := serve(router, "/dashboard", "Bearer "+token)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestAuthMiddleware_RequireSelfOrRole(t *testing.T) {
	router, authMiddleware := setupMiddlewareTest()
	router.GET("/cart/:email",
		authMiddleware.Authenticate(),
		authMiddleware.RequireSelfOrRole("email", "admin"),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	tests := []struct {
		name           string
		tokenEmail     string
		role           string
		pathEmail      string
		expectedStatus int
	}{
		{"own cart", "student@umich.edu", "user", "student@umich.edu", http.StatusOK},
		{"own cart, different case", "Student@umich.edu", "user", "student@umich.edu", http.StatusOK},
		{"someone else's cart", "student@umich.edu", "user", "other@umich.edu", http.StatusForbidden},
		{"admin on any cart", "staff@umich.edu", "admin", "other@umich.edu", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := generateTestToken(t, 1, tt.tokenEmail, tt.role)
			w := serve(router, "/cart/"+tt.pathEmail, "Bearer "+token)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestContextGetters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, exists := GetUserID(c)
	assert.False(t, exists)
	_, exists = GetUserEmail(c)
	assert.False(t, exists)
	_, exists = GetUserRole(c)
	assert.False(t, exists)

	c.Set(UserIDKey, uint(123))
	c.Set(UserEmailKey, "student@umich.edu")
	c.Set(UserRoleKey, model.RoleAdmin)

	id, _ := GetUserID(c)
	email, _ := GetUserEmail(c)
	role, _ := GetUserRole(c)
	assert.Equal(t, uint(123), id)
	assert.Equal(t, "student@umich.edu", email)
	assert.Equal(t, model.RoleAdmin, role)
}
