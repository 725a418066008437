package handler

import (
	"net/http"

	"github.com/Dan9191/ledger-service/internal/config"
	"github.com/Dan9191/ledger-service/internal/metrics"
	"github.com/Dan9191/ledger-service/internal/middleware"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// NewRouter wires the API routes and middleware chain
func NewRouter(h *Handler, cfg *config.Config, m *metrics.Metrics, log *logrus.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.Logging(log))
	r.Use(middleware.Instrument(m))
	r.Use(middleware.Auth(cfg.JWTSecret, log, "/health", "/metrics"))

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/balance", h.Balance).Methods(http.MethodGet)
	r.HandleFunc("/forecast", h.Forecast).Methods(http.MethodGet)
	r.HandleFunc("/transactions", h.Transactions).Methods(http.MethodGet)
	r.HandleFunc("/expense", h.Expense).Methods(http.MethodPost)
	r.HandleFunc("/income", h.Income).Methods(http.MethodPost)

	return r
}
