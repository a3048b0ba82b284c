// internal/alerts/service.go
package alerts

import (
	"context"
	"time"

	"bloodcare-alerts/internal/common/logger"
	"bloodcare-alerts/internal/models"

	"github.com/google/uuid"
)

// DefaultTTL bounds an alert's activation window when the caller does not
// set one.
const DefaultTTL = 24 * time.Hour

// Service owns the alert lifecycle: creation, deactivation, expiry.
// Delivery counters are owned by the dispatch coordinator.
type Service struct {
	store  Store
	logger logger.Logger
	now    func() time.Time
}

func NewService(store Store, log logger.Logger) *Service {
	return &Service{
		store:  store,
		logger: log.WithFields(map[string]interface{}{"component": "alert-service"}),
		now:    time.Now,
	}
}

// CreateAlert validates the definition and persists a new active alert.
func (s *Service) CreateAlert(ctx context.Context, def *models.AlertDefinition) (*models.Alert, error) {
	if err := ValidateDefinition(def); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	ttl := DefaultTTL
	if def.TTLMinutes > 0 {
		ttl = time.Duration(def.TTLMinutes) * time.Minute
	}

	alertType := def.Type
	if alertType == "" {
		alertType = models.AlertTypeGeneral
	}

	alert := &models.Alert{
		ID:             uuid.New().String(),
		Type:           alertType,
		Title:          def.Title,
		Message:        def.Message,
		BloodGroup:     def.BloodGroup,
		Location:       def.Location,
		Priority:       def.Priority,
		TargetAudience: def.TargetAudience,
		SMSEnabled:     def.SMSEnabled,
		EmailEnabled:   def.EmailEnabled,
		CreatedAt:      now,
		ExpiresAt:      now.Add(ttl),
		Active:         true,
	}

	if err := s.store.Create(ctx, alert); err != nil {
		return nil, err
	}

	s.logger.Info("alert created", map[string]interface{}{
		"alertId":   alert.ID,
		"type":      alert.Type,
		"priority":  alert.Priority,
		"audience":  alert.TargetAudience,
		"expiresAt": alert.ExpiresAt,
	})

	return alert, nil
}

// DeactivateAlert flips the active flag off. The alert record is kept.
func (s *Service) DeactivateAlert(ctx context.Context, alertID string) error {
	if err := s.store.SetActive(ctx, alertID, false); err != nil {
		return err
	}
	s.logger.Info("alert deactivated", map[string]interface{}{"alertId": alertID})
	return nil
}

// GetActiveAlerts lists alerts that are active and inside their window.
func (s *Service) GetActiveAlerts(ctx context.Context) ([]models.Alert, error) {
	return s.store.ListActive(ctx, s.now().UTC())
}

// GetAlert loads one alert by ID.
func (s *Service) GetAlert(ctx context.Context, alertID string) (*models.Alert, error) {
	return s.store.Get(ctx, alertID)
}

// RunExpirySweep periodically flips expired alerts inactive until ctx is
// done. Expiry is also checked lazily on dispatch.
func (s *Service) RunExpirySweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.store.DeactivateExpired(ctx, s.now().UTC())
			if err != nil {
				s.logger.Error("expiry sweep failed", map[string]interface{}{"error": err})
				continue
			}
			if n > 0 {
				s.logger.Info("expired alerts deactivated", map[string]interface{}{"count": n})
			}
		}
	}
}

// Templates returns canned alert definitions for common emergency scenarios.
func Templates() []models.AlertTemplate {
	return []models.AlertTemplate{
		{
			Type:           models.AlertTypeUrgentSurgery,
			Title:          "URGENT: Blood Needed for Emergency Surgery",
			Message:        "We urgently need {bloodGroup} blood for a critical surgery at {location}. Please contact us immediately if you can donate. Time is critical!",
			Priority:       models.PriorityHigh,
			TargetAudience: models.AudienceDonors,
			SMSEnabled:     true,
			EmailEnabled:   true,
		},
		{
			Type:           models.AlertTypeBloodShortage,
			Title:          "Critical Blood Shortage Alert",
			Message:        "CRITICAL SHORTAGE: We are running dangerously low on {bloodGroup} blood. Your donation can save multiple lives. Please donate ASAP.",
			Priority:       models.PriorityHigh,
			TargetAudience: models.AudienceDonors,
			SMSEnabled:     true,
			EmailEnabled:   true,
		},
		{
			Type:           models.AlertTypeEmergencyRequest,
			Title:          "Emergency Blood Request",
			Message:        "EMERGENCY: Multiple units of {bloodGroup} blood needed urgently in {location}. Mass casualty event. All available donors please respond immediately.",
			Priority:       models.PriorityHigh,
			TargetAudience: models.AudienceBoth,
			SMSEnabled:     true,
			EmailEnabled:   true,
		},
		{
			Type:           models.AlertTypeGeneral,
			Title:          "Blood Donation Drive",
			Message:        "Join our community blood donation drive this weekend at {location}. Help us maintain adequate blood supplies for our hospitals.",
			Priority:       models.PriorityMedium,
			TargetAudience: models.AudienceDonors,
			SMSEnabled:     false,
			EmailEnabled:   true,
		},
	}
}
