package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cargomesh/backend/internal/infrastructure/cache"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newIdempotencyRouter(t *testing.T, cfg IdempotencyConfig) (*gin.Engine, *int) {
	t.Helper()
	calls := 0
	router := gin.New()
	router.POST("/pay", Idempotency(cfg), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusCreated, gin.H{"status": "created"})
	})
	return router, &calls
}

func TestIdempotency_FirstRequestPasses(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	router, calls := newIdempotencyRouter(t, IdempotencyConfig{Store: store, TTL: time.Minute})

	req := httptest.NewRequest(http.MethodPost, "/pay", nil)
	req.Header.Set(IdempotencyHeaderKey, "key-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, *calls)
}

func TestIdempotency_ReplayRejected(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	router, calls := newIdempotencyRouter(t, IdempotencyConfig{Store: store, TTL: time.Minute})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/pay", nil)
		req.Header.Set(IdempotencyHeaderKey, "key-replay")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if i == 0 {
			assert.Equal(t, http.StatusCreated, rec.Code)
		} else {
			assert.Equal(t, http.StatusConflict, rec.Code)
			assert.Contains(t, rec.Body.String(), "ERR_DUPLICATE_REQUEST")
		}
	}
	assert.Equal(t, 1, *calls)
}

func TestIdempotency_DistinctKeysPass(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	router, calls := newIdempotencyRouter(t, IdempotencyConfig{Store: store, TTL: time.Minute})

	for _, key := range []string{"key-a", "key-b"} {
		req := httptest.NewRequest(http.MethodPost, "/pay", nil)
		req.Header.Set(IdempotencyHeaderKey, key)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code)
	}
	assert.Equal(t, 2, *calls)
}

func TestIdempotency_MissingHeaderOptional(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	router, calls := newIdempotencyRouter(t, IdempotencyConfig{Store: store, TTL: time.Minute})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/pay", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code)
	}
	assert.Equal(t, 2, *calls)
}

func TestIdempotency_MissingHeaderRequired(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	router, calls := newIdempotencyRouter(t, IdempotencyConfig{Store: store, TTL: time.Minute, Required: true})

	req := httptest.NewRequest(http.MethodPost, "/pay", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, *calls)
}

func TestIdempotency_FailedRequestReleasesKey(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	calls := 0
	router := gin.New()
	router.POST("/pay", Idempotency(IdempotencyConfig{Store: store, TTL: time.Minute}), func(c *gin.Context) {
		calls++
		// First submission is rejected, the corrected retry succeeds
		if calls == 1 {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"ok": false})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"status": "created"})
	})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/pay", nil)
		req.Header.Set(IdempotencyHeaderKey, "key-retry")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := send()
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// The failed attempt did not consume the key
	rec = send()
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 2, calls)

	// The successful attempt did
	rec = send()
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 2, calls)
}
