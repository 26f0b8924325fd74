package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"linkbrief/internal/cache"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

const (
	DefaultRequestTimeout = 3 * time.Minute
	timeoutHeadroom       = 10 * time.Second
)

// RequestTimeout covers a cache miss: one fetch, then a primary and a
// secondary provider call.
func RequestTimeout(fetchTimeout time.Duration, providerTimeout time.Duration) time.Duration {
	return fetchTimeout + 2*providerTimeout + timeoutHeadroom
}

// Service is what the API exposes over HTTP.
type Service interface {
	SummarizeURL(ctx context.Context, rawURL string) (string, error)
	Cache() cache.Cache
}

func NewRouter(svc Service, requestTimeout time.Duration, log *slog.Logger) http.Handler {
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(requestTimeout))

	h := &handler{svc: svc, log: log}

	r.Get("/healthz", h.health)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/summary", h.summary)
		r.Delete("/cache", h.clearCache)
	})

	return r
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			level := slog.LevelInfo
			if ww.Status() >= http.StatusInternalServerError {
				level = slog.LevelError
			}

			log.Log(r.Context(), level, "Request is served",
				"requestID", chimiddleware.GetReqID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start))
		})
	}
}
