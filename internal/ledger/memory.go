// internal/ledger/memory.go
package ledger

import (
	"context"
	"sync"

	"bloodcare-alerts/internal/models"
)

// MemoryLedger is an in-memory Ledger for tests and single-process
// deployments.
type MemoryLedger struct {
	mu       sync.RWMutex
	attempts map[string]models.DeliveryAttempt
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{attempts: make(map[string]models.DeliveryAttempt)}
}

func (m *MemoryLedger) Get(_ context.Context, alertID, recipientID, channel string) (*models.DeliveryAttempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.attempts[models.AttemptKey(alertID, recipientID, channel)]
	if !ok {
		return nil, nil
	}
	out := a
	return &out, nil
}

func (m *MemoryLedger) Upsert(_ context.Context, attempt *models.DeliveryAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.attempts[attempt.Key()] = *attempt
	return nil
}

func (m *MemoryLedger) Query(_ context.Context, alertID string) ([]models.DeliveryAttempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.DeliveryAttempt, 0, len(m.attempts))
	for _, a := range m.attempts {
		if alertID != "" && a.AlertID != alertID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *MemoryLedger) Stats(ctx context.Context, alertID string) (models.DeliveryStats, error) {
	attempts, err := m.Query(ctx, alertID)
	if err != nil {
		return models.DeliveryStats{}, err
	}
	return statsOf(attempts), nil
}
