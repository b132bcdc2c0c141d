package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Randallflagg19/travel/internal/catalog"
	"github.com/Randallflagg19/travel/internal/config"
	"github.com/Randallflagg19/travel/internal/httpx"
	"github.com/Randallflagg19/travel/internal/ingest"
	"github.com/Randallflagg19/travel/internal/user"
)

type handlers struct {
	catalog *catalog.HTTPHandler
	ingest  *ingest.HTTPHandler
	users   *user.HTTPHandler
	// ready reports whether the database answers.
	ready   func(ctx context.Context) error
}

func newRouter(cfg *config.Config, h handlers, limiter *httpx.RateLimitMiddleware) http.Handler {
	r := chi.NewRouter()

	r.Use(httpx.RequestIDMiddleware)
	r.Use(httpx.AccessLogMiddleware)
	r.Use(httpx.RecoveryMiddleware)
	r.Use(httpx.SecurityHeadersMiddleware(cfg.Server.EnableHSTS))
	r.Use(httpx.CORSMiddleware(cfg.Server.CORSOrigins))
	r.Use(httpx.RequestSizeLimitMiddleware(cfg.Server.MaxBodyBytes))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := h.ready(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}

		r.Get("/assets", h.catalog.List)
		r.Get("/assets/{id}", h.catalog.Get)
		r.Get("/places", h.catalog.Places)

		r.Group(func(r chi.Router) {
			r.Use(httpx.AuthMiddleware(cfg.Auth.JWTSecret))
			r.Get("/me", h.users.Me)

			r.Group(func(r chi.Router) {
				r.Use(httpx.RequireRole(httpx.RoleAdmin, httpx.RoleSuperAdmin))
				r.Post("/assets", h.catalog.Create)
				r.Delete("/assets/{id}", h.catalog.Delete)
				r.Post("/admin/import", h.ingest.Import)
				r.Post("/admin/import/probe", h.ingest.Probe)
			})
		})
	})

	return r
}
