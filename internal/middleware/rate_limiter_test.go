package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func limitedRouter(limit int, window time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", RateLimiter(limit, window), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func ping(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiterBlocksOverLimit(t *testing.T) {
	r := limitedRouter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, ping(r, "10.0.0.1").Code)
	}

	w := ping(r, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimiterIsPerIP(t *testing.T) {
	r := limitedRouter(1, time.Minute)

	assert.Equal(t, http.StatusOK, ping(r, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, ping(r, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, ping(r, "10.0.0.2").Code)
}

func TestRateLimiterWindowResets(t *testing.T) {
	r := limitedRouter(1, 20*time.Millisecond)

	assert.Equal(t, http.StatusOK, ping(r, "10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, ping(r, "10.0.0.1").Code)

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, http.StatusOK, ping(r, "10.0.0.1").Code)
}

func TestLoginRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", LoginRateLimiter(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	do := func() int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:12345"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 20; i++ {
		assert.Equal(t, http.StatusOK, do())
	}
	assert.Equal(t, http.StatusTooManyRequests, do())
}
