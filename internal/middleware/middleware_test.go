package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tokenvault/config"
	"tokenvault/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var jwtCfg = &config.JWTConfig{AccessSecret: "test-secret", AccessExpiry: time.Hour, Issuer: "tokenvault"}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "email": GetEmail(c)})
	})
	return r
}

func get(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	r := newEngine(AuthRequired(jwtCfg))

	assert.Equal(t, http.StatusUnauthorized, get(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, get(r, "Bearer abc").Code)

	tok, err := auth.GenerateAccessToken(jwtCfg, "user-1", "user@example.com")
	require.NoError(t, err)
	w := get(r, "Bearer "+tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"user-1","email":"user@example.com"}`, w.Body.String())
}

func TestUserRateLimit(t *testing.T) {
	limiter := NewKeyedRateLimiter(0.001, 2)
	t.Cleanup(limiter.Stop)
	r := newEngine(AuthRequired(jwtCfg), UserRateLimit(limiter))

	alice, err := auth.GenerateAccessToken(jwtCfg, "alice", "alice@example.com")
	require.NoError(t, err)
	bob, err := auth.GenerateAccessToken(jwtCfg, "bob", "bob@example.com")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, get(r, "Bearer "+alice).Code)
	assert.Equal(t, http.StatusOK, get(r, "Bearer "+alice).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "Bearer "+alice).Code)
	// Buckets are per user.
	assert.Equal(t, http.StatusOK, get(r, "Bearer "+bob).Code)
}

func TestRateLimitByIP(t *testing.T) {
	limiter := NewKeyedRateLimiter(0.001, 1)
	t.Cleanup(limiter.Stop)
	r := newEngine(RateLimit(limiter))
	assert.Equal(t, http.StatusOK, get(r, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "").Code)
}

func TestKeyedRateLimiterStop(t *testing.T) {
	limiter := NewKeyedRateLimiter(0.001, 1)
	limiter.Stop()
	limiter.Stop()

	select {
	case <-limiter.done:
	default:
		t.Fatal("cleanup goroutine still running after Stop")
	}
	assert.True(t, limiter.Allow("k"))
	assert.False(t, limiter.Allow("k"))
}

func TestCORSPreflight(t *testing.T) {
	r := newEngine(RequestLogger(zaptest.NewLogger(t)), CORS([]string{"https://app.example.com"}))

	req := httptest.NewRequest(http.MethodOptions, "/whoami", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
