package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"sweetShopManagement/internal/auth"
	"sweetShopManagement/internal/config"
	"sweetShopManagement/internal/handler"
	"sweetShopManagement/repository"
)

// NewRouter assembles the full route tree. Split out from Start so tests can
// drive the exact production routing with httptest.
func NewRouter(log *zap.Logger, users *repository.UserRepository, sweets *repository.SweetRepository, jwtSecret string) chi.Router {
	app := handler.NewApp(log, users, sweets, jwtSecret)

	r := chi.NewRouter()
	r.Use(requestLogger(log))
	r.Use(recoverer(log))

	r.Get("/health", app.Health)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", app.Register)
		r.Post("/login", app.Login)
	})

	r.Route("/api/sweets", func(r chi.Router) {
		r.Get("/", app.ListSweets)
		r.Get("/search", app.SearchSweets)

		// Authenticated, any role.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(users, jwtSecret))
			r.Post("/{id}/purchase", app.PurchaseSweet)
		})

		// Admin-only mutations: both gates, in sequence.
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(users, jwtSecret))
			r.Use(auth.RequireAdmin)
			r.Post("/", app.CreateSweet)
			r.Put("/{id}", app.UpdateSweet)
			r.Delete("/{id}", app.DeleteSweet)
			r.Post("/{id}/restock", app.RestockSweet)
		})
	})

	return r
}

// Start runs the HTTP server on the configured address and returns a shutdown
// function bounded by the caller's context.
func Start(cfg *config.Config, log *zap.Logger, users *repository.UserRepository, sweets *repository.SweetRepository) (func(context.Context) error, error) {
	if cfg == nil {
		panic("config is required")
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           NewRouter(log, users, sweets, cfg.JWTSecret),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	return func(ctx context.Context) error {
		select {
		case err := <-errc:
			return err
		default:
		}
		return srv.Shutdown(ctx)
	}, nil
}
