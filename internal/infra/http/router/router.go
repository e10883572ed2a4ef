package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/naileon/karte-api/internal/infra/http/handlers"
	"github.com/naileon/karte-api/internal/infra/http/middleware"
)

type Deps struct {
	Karte          *handlers.KarteHandler
	Health         *handlers.HealthHandler
	Logger         *zap.Logger
	AllowedOrigins []string
	MetricsEnabled bool
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(middleware.Recover(d.Logger))
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
		MaxAge:         300,
	}))

	r.Get("/", d.Health.HandleRoot)
	r.Get("/health", d.Health.Handle)
	if d.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/api/karte", func(r chi.Router) {
		r.Post("/", d.Karte.HandleUpsert)
		r.Get("/{userId}", d.Karte.HandleFetch)
		r.Put("/{userId}", d.Karte.HandleReplace)
	})

	return r
}
