package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"bookstore-service/internal/auth"

	"github.com/go-chi/chi/v5/middleware"
)

type TokenParser interface {
	Parse(token string) (*auth.Identity, error)
}

// Authenticate resolves the bearer token into an identity stored in the
// request context. Requests without an Authorization header pass through
// anonymously; a malformed or invalid token is rejected with 401.
func Authenticate(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "malformed Authorization header", nil)
				return
			}

			identity, err := tokens.Parse(parts[1])
			if err != nil {
				slog.DebugContext(r.Context(), "rejected token", "error", err)
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
		})
	}
}

func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		slog.InfoContext(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}

type Pinger interface {
	Ping(ctx context.Context) error
}

func Health(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			slog.WarnContext(ctx, "health check failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, "unavailable", "store unreachable", nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
