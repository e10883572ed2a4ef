package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"
)

const (
	apiMessage = "Naileon Karte API v2.0"
	apiVersion = "2.0.0"
)

// Broker is the part of the RabbitMQ connection the health check needs.
type Broker interface {
	Healthy() bool
}

type HealthHandler struct {
	Store          string
	DB             *sql.DB
	Broker         Broker
	LINEConfigured bool
	StartTime      time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

func NewHealthHandler(store string, db *sql.DB, broker Broker, lineConfigured bool) *HealthHandler {
	return &HealthHandler{
		Store:          store,
		DB:             db,
		Broker:         broker,
		LINEConfigured: lineConfigured,
		StartTime:      time.Now(),
	}
}

// HandleRoot (GET /)
func (h *HealthHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": apiMessage})
}

// Handle (GET /health)
func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	deps := map[string]string{"store": h.Store}

	if h.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.DB.PingContext(ctx); err != nil {
			deps["database"] = fmt.Sprintf("unhealthy: %v", err)
		} else {
			deps["database"] = "healthy"
		}
	} else {
		deps["database"] = "not configured"
	}

	if h.Broker != nil {
		if h.Broker.Healthy() {
			deps["rabbitmq"] = "healthy"
		} else {
			deps["rabbitmq"] = "unhealthy: connection closed"
		}
	} else {
		deps["rabbitmq"] = "not configured"
	}

	if h.LINEConfigured {
		deps["line"] = "configured"
	} else {
		deps["line"] = "not configured"
	}

	status := "healthy"
	for name, v := range deps {
		if name == "store" {
			continue
		}
		if v != "healthy" && v != "configured" && v != "not configured" {
			status = "degraded"
			break
		}
	}

	code := http.StatusOK
	if status == "degraded" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{
		Status:       status,
		Version:      apiVersion,
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
	})
}
