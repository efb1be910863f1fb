package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorhub/project-tracker/internal/cache"
	"github.com/mentorhub/project-tracker/internal/config"
)

func testCacheConfig() config.CacheConfig {
	return config.CacheConfig{DefaultTTL: time.Minute, Prefix: "cache", MaxBodyBytes: 1 << 20}
}

// serve runs one request through the cache middleware with an
// optional user identity and a counting handler.
func serve(t *testing.T, store *cache.Store, method, target, user string, hits *int) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != "" {
		c.Set("user_id", user)
	}
	handler := ResponseCache(store, testCacheConfig())(func(c echo.Context) error {
		*hits++
		return c.JSON(http.StatusOK, echo.Map{"user": userIdentity(c), "n": *hits})
	})
	require.NoError(t, handler(c))
	return rec
}

func TestMissThenHit(t *testing.T) {
	store := cache.New(true)
	hits := 0

	rec1 := serve(t, store, http.MethodGet, "/api/projects", "7", &hits)
	assert.Equal(t, "MISS", rec1.Header().Get("X-Cache"))
	assert.Equal(t, 1, hits)

	rec2 := serve(t, store, http.MethodGet, "/api/projects", "7", &hits)
	assert.Equal(t, "HIT", rec2.Header().Get("X-Cache"))
	assert.Equal(t, 1, hits, "handler must not run on a hit")
	assert.Equal(t, rec1.Body.String(), rec2.Body.String(), "cached body replayed verbatim")
}

func TestPerUserIsolation(t *testing.T) {
	store := cache.New(true)
	hits := 0

	recA := serve(t, store, http.MethodGet, "/api/projects", "alice", &hits)
	recB := serve(t, store, http.MethodGet, "/api/projects", "bob", &hits)

	assert.Equal(t, "MISS", recB.Header().Get("X-Cache"), "another user's entry must not be served")
	assert.Equal(t, 2, hits)
	assert.NotEqual(t, recA.Body.String(), recB.Body.String())
}

func TestPublicPartition(t *testing.T) {
	store := cache.New(true)
	hits := 0

	serve(t, store, http.MethodGet, "/api/projects", "", &hits)
	rec := serve(t, store, http.MethodGet, "/api/projects", "", &hits)

	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, 1, hits, "unauthenticated requests share the public partition")
}

func TestQueryPartOfKey(t *testing.T) {
	store := cache.New(true)
	hits := 0

	serve(t, store, http.MethodGet, "/api/projects?status=ACTIVE", "7", &hits)
	rec := serve(t, store, http.MethodGet, "/api/projects?status=DONE", "7", &hits)

	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	assert.Equal(t, 2, hits)
}

func TestMutationFlushesEverything(t *testing.T) {
	store := cache.New(true)
	hits := 0

	serve(t, store, http.MethodGet, "/api/projects", "7", &hits)
	serve(t, store, http.MethodGet, "/api/tasks", "7", &hits)
	require.Equal(t, 2, hits)

	// A write anywhere flushes entries everywhere.
	serve(t, store, http.MethodPost, "/api/milestones", "7", &hits)

	rec := serve(t, store, http.MethodGet, "/api/projects", "7", &hits)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	rec = serve(t, store, http.MethodGet, "/api/tasks", "7", &hits)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
}

func TestDisabledStorePassesThrough(t *testing.T) {
	store := cache.New(false)
	hits := 0

	rec := serve(t, store, http.MethodGet, "/api/projects", "7", &hits)
	assert.Empty(t, rec.Header().Get("X-Cache"), "disabled cache leaves no trace on responses")
	rec = serve(t, store, http.MethodGet, "/api/projects", "7", &hits)
	assert.Empty(t, rec.Header().Get("X-Cache"))
	assert.Equal(t, 2, hits)
	assert.Equal(t, 0, store.Len())
}

func TestNilStorePassesThrough(t *testing.T) {
	hits := 0
	rec := serve(t, nil, http.MethodGet, "/api/projects", "7", &hits)
	assert.Equal(t, 1, hits)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestErrorResponsesNotCached(t *testing.T) {
	store := cache.New(true)
	e := echo.New()

	handler := ResponseCache(store, testCacheConfig())(func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "nope"})
	})
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/projects/999", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		require.NoError(t, handler(c))
		assert.Equal(t, "MISS", rec.Header().Get("X-Cache"), "non-200 bodies are never stored")
	}
	assert.Equal(t, 0, store.Len())
}
