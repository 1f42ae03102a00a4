// cmd/worker-manager/router.go
package main

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// readinessCheck pings one dependency.
type readinessCheck func(ctx context.Context) error

type statusResponse struct {
	Status string            `json:"status"`
	Time   string            `json:"time"`
	Checks map[string]string `json:"checks,omitempty"`
}

// newRouter builds the admin surface. stream may be nil when the match
// poller is disabled.
func newRouter(checks map[string]readinessCheck, stream http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Cache-Control", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, statusResponse{
			Status: "healthy",
			Time:   time.Now().Format(time.RFC3339),
		})
	})
	r.Get("/ready", readyHandler(checks))
	r.Handle("/metrics", promhttp.Handler())

	if stream != nil {
		r.Mount("/matches", stream)
	}
	return r
}

func readyHandler(checks map[string]readinessCheck) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		resp := statusResponse{
			Status: "ready",
			Time:   time.Now().Format(time.RFC3339),
			Checks: make(map[string]string, len(names)),
		}
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "not_ready"
				continue
			}
			resp.Checks[name] = "ok"
		}

		if resp.Status != "ready" {
			render.Status(r, http.StatusServiceUnavailable)
		}
		render.JSON(w, r, resp)
	}
}
