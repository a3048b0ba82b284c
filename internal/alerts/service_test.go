// internal/alerts/service_test.go
package alerts

import (
	"context"
	"testing"
	"time"

	stderrors "bloodcare-alerts/internal/common/errors"
	"bloodcare-alerts/internal/common/logger"
	"bloodcare-alerts/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDefinition() *models.AlertDefinition {
	return &models.AlertDefinition{
		Type:           models.AlertTypeUrgentSurgery,
		Title:          "Blood Needed",
		Message:        "O- blood needed for emergency surgery",
		BloodGroup:     "O-",
		Location:       "Mumbai",
		Priority:       models.PriorityHigh,
		TargetAudience: models.AudienceDonors,
		SMSEnabled:     true,
		EmailEnabled:   true,
	}
}

func TestService_CreateAlert(t *testing.T) {
	svc := NewService(NewMemoryStore(), logger.NewTestLogger(t))
	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	alert, err := svc.CreateAlert(context.Background(), validDefinition())
	require.NoError(t, err)

	assert.NotEmpty(t, alert.ID)
	assert.True(t, alert.Active)
	assert.Equal(t, fixed, alert.CreatedAt)
	assert.Equal(t, fixed.Add(DefaultTTL), alert.ExpiresAt)
	assert.Equal(t, models.ChannelStats{}, alert.SMSStats)

	stored, err := svc.GetAlert(context.Background(), alert.ID)
	require.NoError(t, err)
	assert.Equal(t, alert.ID, stored.ID)
}

func TestService_CreateAlert_CustomTTLAndDefaultType(t *testing.T) {
	svc := NewService(NewMemoryStore(), logger.NewTestLogger(t))
	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	def := validDefinition()
	def.Type = ""
	def.TTLMinutes = 90

	alert, err := svc.CreateAlert(context.Background(), def)
	require.NoError(t, err)

	assert.Equal(t, models.AlertTypeGeneral, alert.Type)
	assert.Equal(t, fixed.Add(90*time.Minute), alert.ExpiresAt)
}

func TestService_CreateAlert_ValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.AlertDefinition)
	}{
		{"missing title", func(d *models.AlertDefinition) { d.Title = "" }},
		{"missing message", func(d *models.AlertDefinition) { d.Message = "" }},
		{"bad priority", func(d *models.AlertDefinition) { d.Priority = "panic" }},
		{"bad blood group", func(d *models.AlertDefinition) { d.BloodGroup = "Z+" }},
		{"bad audience", func(d *models.AlertDefinition) { d.TargetAudience = "everyone" }},
		{"no channel enabled", func(d *models.AlertDefinition) {
			d.SMSEnabled = false
			d.EmailEnabled = false
		}},
		{"bad type", func(d *models.AlertDefinition) { d.Type = "typhoon" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(NewMemoryStore(), logger.NewTestLogger(t))
			def := validDefinition()
			tt.mutate(def)

			_, err := svc.CreateAlert(context.Background(), def)
			assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeValidationFailed), "got %v", err)
		})
	}
}

func TestService_CreateAlert_OptionalCriteriaMayBeEmpty(t *testing.T) {
	svc := NewService(NewMemoryStore(), logger.NewTestLogger(t))

	def := validDefinition()
	def.BloodGroup = ""
	def.Location = ""

	alert, err := svc.CreateAlert(context.Background(), def)
	require.NoError(t, err)
	assert.Empty(t, alert.BloodGroup)
}

func TestService_DeactivateAlert(t *testing.T) {
	svc := NewService(NewMemoryStore(), logger.NewTestLogger(t))

	alert, err := svc.CreateAlert(context.Background(), validDefinition())
	require.NoError(t, err)

	require.NoError(t, svc.DeactivateAlert(context.Background(), alert.ID))

	stored, err := svc.GetAlert(context.Background(), alert.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)

	err = svc.DeactivateAlert(context.Background(), "missing")
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeAlertNotFound))
}

func TestService_GetActiveAlerts_ExcludesExpired(t *testing.T) {
	svc := NewService(NewMemoryStore(), logger.NewTestLogger(t))

	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	short := validDefinition()
	short.TTLMinutes = 30
	_, err := svc.CreateAlert(context.Background(), short)
	require.NoError(t, err)

	long := validDefinition()
	long.TTLMinutes = 120
	_, err = svc.CreateAlert(context.Background(), long)
	require.NoError(t, err)

	svc.now = func() time.Time { return fixed.Add(10 * time.Minute) }
	active, err := svc.GetActiveAlerts(context.Background())
	require.NoError(t, err)
	assert.Len(t, active, 2)

	// Past the short alert's window but inside the long one's.
	svc.now = func() time.Time { return fixed.Add(45 * time.Minute) }
	active, err = svc.GetActiveAlerts(context.Background())
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestTemplates_CoverAllTypes(t *testing.T) {
	templates := Templates()
	require.Len(t, templates, 4)

	seen := make(map[string]bool)
	for _, tpl := range templates {
		seen[tpl.Type] = true
		assert.NotEmpty(t, tpl.Title)
		assert.NotEmpty(t, tpl.Message)
		assert.True(t, tpl.SMSEnabled || tpl.EmailEnabled)
	}
	for _, want := range []string{
		models.AlertTypeUrgentSurgery,
		models.AlertTypeBloodShortage,
		models.AlertTypeEmergencyRequest,
		models.AlertTypeGeneral,
	} {
		assert.True(t, seen[want], "missing template for %s", want)
	}
}
