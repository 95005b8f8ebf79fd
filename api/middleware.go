package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/killallgit/resume-api/api/types"
	apperrors "github.com/killallgit/resume-api/pkg/errors"
	"github.com/killallgit/resume-api/pkg/logger"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// clientLimiter holds a rate limiter and its last accessed time
type clientLimiter struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

func (cl *clientLimiter) touch(now time.Time) {
	cl.mu.Lock()
	cl.lastSeen = now
	cl.mu.Unlock()
}

func (cl *clientLimiter) idleSince(now time.Time) time.Duration {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return now.Sub(cl.lastSeen)
}

// NewCORS builds the CORS handler wrapped around the engine
func NewCORS(origins []string) *cors.Cors {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         86400,
	})
}

func RequestSizeLimit() gin.HandlerFunc {
	return RequestSizeLimitWithSize(1024 * 1024)
}

func RequestSizeLimitWithSize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodPost ||
			c.Request.Method == http.MethodPut ||
			c.Request.Method == http.MethodPatch {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// RequestID tags every request with an id, reusing a well-formed incoming one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogger stores a request-scoped logger for handlers and logs each
// completed request
func RequestLogger(base *zap.SugaredLogger) gin.HandlerFunc {
	base = logger.OrNop(base)
	return func(c *gin.Context) {
		start := time.Now()

		log := base
		if id := c.GetString("request_id"); id != "" {
			log = log.With("request_id", id)
		}
		c.Set(types.LoggerKey, log)

		c.Next()

		fields := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			log.Errorw("request", fields...)
		case c.Writer.Status() >= http.StatusBadRequest:
			log.Warnw("request", fields...)
		default:
			log.Infow("request", fields...)
		}
	}
}

func PerClientRateLimit(rateLimiters *sync.Map, cleanupStop chan struct{}, cleanupInitialized *sync.Once, rps int, burst int) gin.HandlerFunc {
	cleanupInitialized.Do(func() {
		go cleanupOldRateLimiters(rateLimiters, cleanupStop)
	})

	if rps <= 0 {
		rps = 1
	}
	if burst <= 0 {
		burst = rps
	}

	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		now := time.Now()

		limiterInterface, _ := rateLimiters.LoadOrStore(clientIP, &clientLimiter{
			limiter:  rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), burst),
			lastSeen: now,
		})

		cl := limiterInterface.(*clientLimiter)
		cl.touch(now)

		if !cl.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, types.ErrorResponse{
				Status:  types.StatusError,
				Message: "Rate limit exceeded. Please slow down your requests.",
				Error:   string(apperrors.ErrCodeAPIRateLimit),
			})
			return
		}
		c.Next()
	}
}

func cleanupOldRateLimiters(rateLimiters *sync.Map, cleanupStop chan struct{}) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			rateLimiters.Range(func(key, value interface{}) bool {
				cl := value.(*clientLimiter)
				if cl.idleSince(now) > 10*time.Minute {
					rateLimiters.Delete(key)
				}
				return true
			})
		case <-cleanupStop:
			return
		}
	}
}
