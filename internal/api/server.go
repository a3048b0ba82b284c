// internal/api/server.go
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"bloodcare-alerts/internal/alerts"
	"bloodcare-alerts/internal/common/errors"
	"bloodcare-alerts/internal/common/logger"
	"bloodcare-alerts/internal/dispatch"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the alert lifecycle, dispatch, stats and vendor webhook
// endpoints over HTTP.
type Server struct {
	alerts      *alerts.Service
	coordinator *dispatch.Coordinator
	tracker     *dispatch.Tracker
	logger      logger.Logger
}

func NewServer(alertSvc *alerts.Service, coordinator *dispatch.Coordinator, tracker *dispatch.Tracker, log logger.Logger) *Server {
	return &Server{
		alerts:      alertSvc,
		coordinator: coordinator,
		tracker:     tracker,
		logger:      log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

// Routes builds the HTTP router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/alerts", func(r chi.Router) {
			r.Post("/", s.handleCreateAlert)
			r.Get("/active", s.handleActiveAlerts)
			r.Get("/templates", s.handleTemplates)
			r.Route("/{alertID}", func(r chi.Router) {
				r.Get("/", s.handleGetAlert)
				r.Post("/dispatch", s.handleDispatch)
				r.Post("/deactivate", s.handleDeactivate)
				r.Get("/attempts", s.handleAttempts)
			})
		})
		r.Get("/delivery-stats", s.handleDeliveryStats)
	})

	r.Route("/webhooks", func(r chi.Router) {
		r.Post("/twilio/status", s.handleTwilioStatus)
		r.Post("/sendgrid/events", s.handleSendGridEvents)
	})

	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request", map[string]interface{}{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   ww.Status(),
			"duration": time.Since(start).String(),
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes v as the JSON response body.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError maps domain errors to HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := errors.CodeOf(err)
	switch code {
	case errors.ErrCodeAlertNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeAlertExpired, errors.ErrCodeAlertInactive:
		status = http.StatusConflict
	case errors.ErrCodeValidationFailed:
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
			"error":  err,
		})
	}

	msg := err.Error()
	if serr, ok := err.(*errors.StandardError); ok {
		msg = serr.Message
	}
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    string(code),
			"message": msg,
		},
	})
}
