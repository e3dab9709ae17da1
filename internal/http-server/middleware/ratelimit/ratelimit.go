package ratelimit

import (
	"gallery/internal/lib/api/response"
	"github.com/go-chi/render"
	"github.com/juju/ratelimit"
	"log/slog"
	"net/http"
)

// New rejects requests with 429 once the bucket is empty.
func New(log *slog.Logger, bucket *ratelimit.Bucket) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		log := log.With(
			slog.String("component", "middleware/ratelimit"),
		)

		fn := func(w http.ResponseWriter, r *http.Request) {
			if bucket.TakeAvailable(1) == 0 {
				log.Warn("rate limit exceeded", slog.String("path", r.URL.Path))

				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("too many requests"))
				return
			}

			next.ServeHTTP(w, r)
		}

		return http.HandlerFunc(fn)
	}
}
