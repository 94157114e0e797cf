// Package server assembles the HTTP router and server.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/DanielPopoola/vpnshop-gateway/internal/config"
	"github.com/DanielPopoola/vpnshop-gateway/internal/infrastructure/cryptopay"
	"github.com/DanielPopoola/vpnshop-gateway/internal/interfaces/rest/apispec"
	_ "github.com/DanielPopoola/vpnshop-gateway/internal/interfaces/rest/docs"
	"github.com/DanielPopoola/vpnshop-gateway/internal/interfaces/rest/handlers"
	"github.com/DanielPopoola/vpnshop-gateway/internal/interfaces/rest/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/swaggo/swag"
)

// NewRouter wires routes, body validation and the middleware chain. The
// webhook token is checked ahead of body validation.
func NewRouter(ctx context.Context, h *handlers.Handlers, cfg config.ServerConfig, webhookToken string, logger *slog.Logger) (http.Handler, error) {
	doc, err := apispec.Load(ctx)
	if err != nil {
		return nil, err
	}
	bodies := make(map[string]func(http.Handler) http.Handler, 3)
	for _, name := range []string{"OrderRequest", "WebhookRequest", "ConfirmRequest"} {
		schema, err := apispec.Schema(doc, name)
		if err != nil {
			return nil, err
		}
		bodies[name] = middleware.ValidateBody(schema, logger)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Content-Type",
			handlers.WebhookTokenHeader,
			handlers.InternalSecretHeader,
			cryptopay.SignatureHeader,
		},
		MaxAge: 300,
	}))
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/healthz", h.Health)
	r.Get("/openapi.yaml", serveOpenAPI)
	r.Get("/swagger/doc.json", serveSwagger(logger))

	r.With(bodies["OrderRequest"]).Post("/api/order", h.CreateOrder)
	r.With(
		middleware.RequireToken(handlers.WebhookTokenHeader, webhookToken, logger),
		bodies["WebhookRequest"],
	).Post("/cryptopay/webhook", h.CryptoPayWebhook)
	r.With(bodies["ConfirmRequest"]).Post("/api/confirm_stars", h.ConfirmStars)

	return r, nil
}

// NewHTTPServer applies the configured timeouts to handler.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func serveOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	w.Write(apispec.Raw())
}

func serveSwagger(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := swag.ReadDoc()
		if err != nil {
			logger.Error("failed to render swagger doc", "error", err)
			http.Error(w, "swagger doc unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(doc))
	}
}
