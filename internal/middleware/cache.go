package middleware

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mentorhub/project-tracker/internal/cache"
	"github.com/mentorhub/project-tracker/internal/config"
)

// captureWriter captures the response body/status while forwarding to
// the client, so a cache miss can populate the store after the
// handler ran.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.limit <= 0 || cw.size < cw.limit {
		if cw.limit <= 0 {
			cw.buf.Write(b)
		} else if remain := cw.limit - cw.size; remain > 0 {
			if int64(len(b)) <= remain {
				cw.buf.Write(b)
			} else {
				cw.buf.Write(b[:remain])
			}
		}
		cw.size += int64(len(b))
	}
	return cw.ResponseWriter.Write(b)
}

// cacheKey builds a stable key from method, route, query and the
// acting user's identity.  Including the identity partitions the
// cache per user: one user's cached response is never replayed to
// another.  Unauthenticated requests share the "public" partition.
func cacheKey(prefix string, c echo.Context) string {
	r := c.Request()
	tail := r.Method + "|" + r.URL.Path + "|" + r.URL.RawQuery + "|" + userIdentity(c)
	sum := sha1.Sum([]byte(tail))
	return fmt.Sprintf("%s:%x", prefix, sum[:])
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// ResponseCache memoizes GET responses in the store and flushes the
// whole store on any mutating request.  Flush-all is deliberate:
// aggregate endpoints can depend on state a write does not obviously
// touch, and flushing everything is the simplest rule that cannot
// miss an invalidation.  Caching is purely an optimization, so when
// the store is disabled (or absent) requests pass through untouched,
// and any internal trouble fails open rather than failing the
// request.
func ResponseCache(store *cache.Store, cfg config.CacheConfig) echo.MiddlewareFunc {
	ttl := cfg.DefaultTTL
	maxBody := int64(cfg.MaxBodyBytes)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if store == nil || !store.Enabled() {
				return next(c)
			}

			method := c.Request().Method
			if mutating(method) {
				// Invalidate before the handler runs so the write's own
				// response is never built against flushed reads.
				store.InvalidateAll()
				return next(c)
			}
			if method != http.MethodGet && method != http.MethodHead {
				return next(c)
			}

			key := cacheKey(cfg.Prefix, c)
			if entry, ok := store.Get(key); ok {
				if entry.ContentType != "" {
					c.Response().Header().Set(echo.HeaderContentType, entry.ContentType)
				}
				c.Response().Header().Set("X-Cache", "HIT")
				c.Response().WriteHeader(entry.Status)
				_, err := c.Response().Write(entry.Body)
				return err
			}

			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			if cw.status == http.StatusOK && (maxBody <= 0 || cw.size <= maxBody) {
				store.Set(key, cache.Entry{
					Status:      cw.status,
					ContentType: c.Response().Header().Get(echo.HeaderContentType),
					Body:        append([]byte(nil), cw.buf.Bytes()...),
				}, ttl)
			}
			return nil
		}
	}
}
