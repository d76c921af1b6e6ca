package middleware

import (
	"net/http"
	"sync"
	"time"

	"stockbook/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// windowCounter counts requests per client IP over fixed windows. Expired
// entries are swept by a janitor goroutine so one-off IPs do not accumulate.
type windowCounter struct {
	window time.Duration
	limit  int

	mu      sync.Mutex
	clients map[string]*clientWindow
}

type clientWindow struct {
	hits    int
	resetAt time.Time
}

func newWindowCounter(limit int, window time.Duration) *windowCounter {
	wc := &windowCounter{
		window:  window,
		limit:   limit,
		clients: make(map[string]*clientWindow),
	}
	go wc.sweep()
	return wc
}

// hit records one request for ip. It returns false when the client is over
// its limit, along with the time the current window resets.
func (wc *windowCounter) hit(ip string) (time.Time, bool) {
	wc.mu.Lock()
	defer wc.mu.Unlock()

	now := time.Now()
	cw := wc.clients[ip]
	if cw == nil || now.After(cw.resetAt) {
		cw = &clientWindow{resetAt: now.Add(wc.window)}
		wc.clients[ip] = cw
	}
	cw.hits++
	return cw.resetAt, cw.hits <= wc.limit
}

func (wc *windowCounter) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		wc.mu.Lock()
		purged := 0
		for ip, cw := range wc.clients {
			if now.After(cw.resetAt) {
				delete(wc.clients, ip)
				purged++
			}
		}
		remaining := len(wc.clients)
		wc.mu.Unlock()
		if purged > 0 {
			log.Debug().
				Int("purged", purged).
				Int("remaining", remaining).
				Msg("rate limiter entries swept")
		}
	}
}

// LoginRateLimiter caps login attempts at 20 per minute per IP to slow
// down credential stuffing.
func LoginRateLimiter() gin.HandlerFunc {
	counter := newWindowCounter(20, time.Minute)
	return func(c *gin.Context) {
		if _, ok := counter.hit(c.ClientIP()); !ok {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Too many login attempts. Try again in a minute."))
			return
		}
		c.Next()
	}
}

// RateLimiter is the general per-IP limiter applied to the whole API.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	counter := newWindowCounter(limit, window)
	return func(c *gin.Context) {
		resetAt, ok := counter.hit(c.ClientIP())
		if !ok {
			c.Header("Retry-After", resetAt.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Too many requests. Try again shortly."))
			return
		}
		c.Next()
	}
}
