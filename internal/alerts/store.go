// internal/alerts/store.go
package alerts

import (
	"context"
	"time"

	"bloodcare-alerts/internal/models"
)

// Counter names accepted by IncrementCounter.
const (
	CounterSent      = "sent"
	CounterDelivered = "delivered"
	CounterFailed    = "failed"
)

// Store holds alert definitions, activation state and aggregate delivery
// counters. Alerts are never deleted, only deactivated or expired.
// Counter increments must be atomic per alert.
type Store interface {
	Create(ctx context.Context, alert *models.Alert) error
	Get(ctx context.Context, id string) (*models.Alert, error)
	SetActive(ctx context.Context, id string, active bool) error
	ListActive(ctx context.Context, now time.Time) ([]models.Alert, error)
	IncrementCounter(ctx context.Context, alertID, channel, counter string) error
	DeactivateExpired(ctx context.Context, now time.Time) (int, error)
}
