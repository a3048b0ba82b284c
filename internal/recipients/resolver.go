// internal/recipients/resolver.go
package recipients

import (
	"context"
	"strings"

	"bloodcare-alerts/internal/common/logger"
	"bloodcare-alerts/internal/models"
)

// Resolver selects candidate recipients for an alert's targeting criteria.
// Filtering is a pure set intersection; an empty result is valid, not an
// error.
type Resolver struct {
	source Source
	logger logger.Logger
}

func NewResolver(source Source, log logger.Logger) *Resolver {
	return &Resolver{
		source: source,
		logger: log.WithFields(map[string]interface{}{"component": "recipient-resolver"}),
	}
}

// Resolve pulls donor and/or receiver projections per the alert's target
// audience, then applies the exact blood-group match and the
// case-insensitive location-substring match, in that order.
func (r *Resolver) Resolve(ctx context.Context, alert *models.Alert) ([]models.Recipient, error) {
	var candidates []models.Recipient

	if alert.TargetAudience == models.AudienceDonors || alert.TargetAudience == models.AudienceBoth {
		donors, err := r.source.ListDonors(ctx)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, donors...)
	}

	if alert.TargetAudience == models.AudienceReceivers || alert.TargetAudience == models.AudienceBoth {
		receivers, err := r.source.ListReceivers(ctx)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, receivers...)
	}

	out := make([]models.Recipient, 0, len(candidates))
	for _, c := range candidates {
		if alert.BloodGroup != "" && c.BloodGroup != alert.BloodGroup {
			continue
		}
		if alert.Location != "" && !strings.Contains(strings.ToLower(c.Location), strings.ToLower(alert.Location)) {
			continue
		}
		out = append(out, c)
	}

	r.logger.Debug("recipients resolved", map[string]interface{}{
		"alertId":    alert.ID,
		"candidates": len(candidates),
		"matched":    len(out),
	})

	return out, nil
}
