// internal/recipients/resolver_test.go
package recipients

import (
	"context"
	"errors"
	"testing"

	"bloodcare-alerts/internal/common/logger"
	"bloodcare-alerts/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockSource struct {
	ListDonorsFunc    func(ctx context.Context) ([]models.Recipient, error)
	ListReceiversFunc func(ctx context.Context) ([]models.Recipient, error)
}

func (m *MockSource) ListDonors(ctx context.Context) ([]models.Recipient, error) {
	return m.ListDonorsFunc(ctx)
}

func (m *MockSource) ListReceivers(ctx context.Context) ([]models.Recipient, error) {
	return m.ListReceiversFunc(ctx)
}

func fixtureSource() *MockSource {
	donors := []models.Recipient{
		{ID: "d1", Name: "Asha", BloodGroup: "O-", Location: "Mumbai Central", Kind: models.RecipientKindDonor},
		{ID: "d2", Name: "Vikram", BloodGroup: "O-", Location: "Pune", Kind: models.RecipientKindDonor},
		{ID: "d3", Name: "Meera", BloodGroup: "A+", Location: "Mumbai Central", Kind: models.RecipientKindDonor},
	}
	receivers := []models.Recipient{
		{ID: "r1", Name: "Ravi", BloodGroup: "O-", Location: "Navi Mumbai", Kind: models.RecipientKindReceiver},
		{ID: "r2", Name: "Sita", BloodGroup: "B+", Location: "Delhi", Kind: models.RecipientKindReceiver},
	}
	return &MockSource{
		ListDonorsFunc:    func(context.Context) ([]models.Recipient, error) { return donors, nil },
		ListReceiversFunc: func(context.Context) ([]models.Recipient, error) { return receivers, nil },
	}
}

func idsOf(recipients []models.Recipient) []string {
	out := make([]string, 0, len(recipients))
	for _, r := range recipients {
		out = append(out, r.ID)
	}
	return out
}

func TestResolver_Resolve(t *testing.T) {
	tests := []struct {
		name  string
		alert models.Alert
		want  []string
	}{
		{
			name:  "O- donors near Mumbai",
			alert: models.Alert{TargetAudience: models.AudienceDonors, BloodGroup: "O-", Location: "mumbai"},
			want:  []string{"d1"},
		},
		{
			name:  "both audiences, blood group only",
			alert: models.Alert{TargetAudience: models.AudienceBoth, BloodGroup: "O-"},
			want:  []string{"d1", "d2", "r1"},
		},
		{
			name:  "receivers only, no criteria",
			alert: models.Alert{TargetAudience: models.AudienceReceivers},
			want:  []string{"r1", "r2"},
		},
		{
			name:  "exact blood group match, no cross-compatibility",
			alert: models.Alert{TargetAudience: models.AudienceDonors, BloodGroup: "O+"},
			want:  []string{},
		},
		{
			name:  "location substring is case-insensitive",
			alert: models.Alert{TargetAudience: models.AudienceDonors, Location: "MUMBAI CENTRAL"},
			want:  []string{"d1", "d3"},
		},
		{
			name:  "no criteria matches everyone in audience",
			alert: models.Alert{TargetAudience: models.AudienceDonors},
			want:  []string{"d1", "d2", "d3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(fixtureSource(), logger.NewNoOpLogger())
			got, err := r.Resolve(context.Background(), &tt.alert)
			require.NoError(t, err)
			assert.Equal(t, tt.want, idsOf(got))
		})
	}
}

func TestResolver_SourceErrorPropagates(t *testing.T) {
	src := fixtureSource()
	src.ListDonorsFunc = func(context.Context) ([]models.Recipient, error) {
		return nil, errors.New("connection refused")
	}

	r := NewResolver(src, logger.NewNoOpLogger())
	_, err := r.Resolve(context.Background(), &models.Alert{TargetAudience: models.AudienceDonors})
	assert.Error(t, err)
}

func TestResolver_EmptyResultIsNotAnError(t *testing.T) {
	src := &MockSource{
		ListDonorsFunc:    func(context.Context) ([]models.Recipient, error) { return nil, nil },
		ListReceiversFunc: func(context.Context) ([]models.Recipient, error) { return nil, nil },
	}

	r := NewResolver(src, logger.NewNoOpLogger())
	got, err := r.Resolve(context.Background(), &models.Alert{TargetAudience: models.AudienceBoth})
	require.NoError(t, err)
	assert.Empty(t, got)
}
