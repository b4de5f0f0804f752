package server

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/maypok86/otter/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultRateWindow = time.Minute
	maxTrackedClients = 10_000
)

// RateLimit allows Requests per Window for every client, with bursts of up
// to Burst requests. Zero Requests disables limiting.
type RateLimit struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
	Burst    int           `mapstructure:"burst"`
}

// Limiter decides whether a client may send another request. When it may
// not, the returned duration is how long the client should wait.
type Limiter interface {
	Allow(client string) (bool, time.Duration)
}

// ClientLimiter keeps one token bucket per client. Buckets of idle clients
// are dropped once they would have refilled anyway.
type ClientLimiter struct {
	limit   rate.Limit
	burst   int
	clients *otter.Cache[string, *rate.Limiter]
}

func NewClientLimiter(cfg RateLimit) *ClientLimiter {
	window := cfg.Window
	if window <= 0 {
		window = defaultRateWindow
	}
	requests := max(cfg.Requests, 1)
	burst := cfg.Burst
	if burst <= 0 {
		burst = requests
	}

	limit := rate.Limit(float64(requests) / window.Seconds())
	refill := time.Duration(float64(burst) / float64(limit) * float64(time.Second))

	return &ClientLimiter{
		limit:   limit,
		burst:   burst,
		clients: otter.Must(&otter.Options[string, *rate.Limiter]{
			MaximumSize:      maxTrackedClients,
			ExpiryCalculator: otter.ExpiryAccessing[string, *rate.Limiter](max(window, refill)),
		}),
	}
}

func (l *ClientLimiter) Allow(client string) (bool, time.Duration) {
	limiter, ok := l.clients.GetIfPresent(client)
	if !ok {
		limiter, _ = l.clients.SetIfAbsent(client, rate.NewLimiter(l.limit, l.burst))
	}

	reservation := limiter.Reserve()
	if !reservation.OK() {
		return false, 0
	}
	if delay := reservation.Delay(); delay > 0 {
		reservation.Cancel()
		return false, delay
	}
	return true, 0
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		client := c.ClientIP()
		allowed, wait := s.limiter.Allow(client)
		if allowed {
			c.Next()
			return
		}

		retryAfter := max(1, int(math.Ceil(wait.Seconds())))
		s.logger.Warn("rate limit exceeded",
			zap.String("client", client),
			zap.String("path", c.Request.URL.Path),
			zap.Int("retry_after_seconds", retryAfter),
		)
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":      "rate limit exceeded",
			"retryAfter": retryAfter,
		})
	}
}
