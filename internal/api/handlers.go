// internal/api/handlers.go
package api

import (
	"encoding/json"
	"net/http"

	"bloodcare-alerts/internal/alerts"
	"bloodcare-alerts/internal/common/errors"
	"bloodcare-alerts/internal/models"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleCreateAlert(w http.ResponseWriter, r *http.Request) {
	var def models.AlertDefinition
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		s.writeError(w, r, errors.NewValidationFailedError("invalid request body: "+err.Error()))
		return
	}

	alert, err := s.alerts.CreateAlert(r.Context(), &def)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, alert)
}

func (s *Server) handleActiveAlerts(w http.ResponseWriter, r *http.Request) {
	active, err := s.alerts.GetActiveAlerts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"alerts": active,
		"count":  len(active),
	})
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"templates": alerts.Templates()})
}

func (s *Server) handleGetAlert(w http.ResponseWriter, r *http.Request) {
	alert, err := s.alerts.GetAlert(r.Context(), chi.URLParam(r, "alertID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, alert)
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	summary, err := s.coordinator.Dispatch(r.Context(), chi.URLParam(r, "alertID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	if err := s.alerts.DeactivateAlert(r.Context(), chi.URLParam(r, "alertID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

func (s *Server) handleAttempts(w http.ResponseWriter, r *http.Request) {
	alertID := chi.URLParam(r, "alertID")
	attempts, err := s.coordinator.ListAttempts(r.Context(), alertID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"alertId":  alertID,
		"attempts": attempts,
		"count":    len(attempts),
	})
}

// handleDeliveryStats aggregates the ledger; ?alertId= scopes to one alert,
// otherwise all alerts are folded together.
func (s *Server) handleDeliveryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.coordinator.GetDeliveryStats(r.Context(), r.URL.Query().Get("alertId"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
