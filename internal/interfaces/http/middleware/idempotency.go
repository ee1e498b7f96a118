package middleware

import (
	"net/http"
	"time"

	"github.com/cargomesh/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyHeaderKey is the request header carrying the client-chosen key.
const IdempotencyHeaderKey = "Idempotency-Key"

// IdempotencyConfig holds configuration for the idempotency middleware
type IdempotencyConfig struct {
	// Store is required for tracking processed keys
	Store shared.IdempotencyStore
	// TTL is how long a processed key blocks replays
	TTL time.Duration
	// Required rejects requests that do not carry the header (default: header optional)
	Required bool
	// Logger for middleware logging
	Logger *zap.Logger
}

// Idempotency returns a middleware that rejects replayed mutation requests.
// A request carrying an Idempotency-Key header is admitted at most once per
// TTL window; replays get 409 so clients can retry safely after timeouts
// without posting duplicate financial records. A key whose request fails is
// released again, so a corrected resubmission is not treated as a replay.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeaderKey)
		if key == "" {
			if cfg.Required {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
					"ok":    false,
					"error": "Idempotency-Key header is required",
					"code":  "ERR_MISSING_FIELD",
				})
				return
			}
			c.Next()
			return
		}

		firstSeen, err := cfg.Store.MarkProcessed(c.Request.Context(), key, cfg.TTL)
		if err != nil {
			// Fail open: a store outage should not block payments
			if cfg.Logger != nil {
				cfg.Logger.Error("Failed to check idempotency key",
					zap.String("key", key),
					zap.Error(err))
			}
			c.Next()
			return
		}
		if !firstSeen {
			if cfg.Logger != nil {
				cfg.Logger.Warn("Duplicate request rejected",
					zap.String("key", key),
					zap.String("path", c.Request.URL.Path))
			}
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"ok":    false,
				"error": "A request with this idempotency key was already processed",
				"code":  "ERR_DUPLICATE_REQUEST",
			})
			return
		}

		c.Next()

		// Only a handled request consumes the key. Releasing on failure
		// lets the client fix the payload and retry with the same key.
		if c.Writer.Status() >= http.StatusBadRequest {
			if err := cfg.Store.Forget(c.Request.Context(), key); err != nil && cfg.Logger != nil {
				cfg.Logger.Error("Failed to release idempotency key",
					zap.String("key", key),
					zap.Error(err))
			}
		}
	}
}
