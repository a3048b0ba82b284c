// internal/alerts/memory.go
package alerts

import (
	"context"
	"sync"
	"time"

	stderrors "bloodcare-alerts/internal/common/errors"
	"bloodcare-alerts/internal/models"
)

// MemoryStore is an in-memory Store for tests and single-process
// deployments.
type MemoryStore struct {
	mu     sync.Mutex
	alerts map[string]*models.Alert
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{alerts: make(map[string]*models.Alert)}
}

func (m *MemoryStore) Create(_ context.Context, alert *models.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *alert
	m.alerts[alert.ID] = &cp
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*models.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.alerts[id]
	if !ok {
		return nil, stderrors.NewAlertNotFoundError(id)
	}
	cp := *a
	return &cp, nil
}

func (m *MemoryStore) SetActive(_ context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.alerts[id]
	if !ok {
		return stderrors.NewAlertNotFoundError(id)
	}
	a.Active = active
	return nil
}

func (m *MemoryStore) ListActive(_ context.Context, now time.Time) ([]models.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Alert
	for _, a := range m.alerts {
		if a.Active && a.ExpiresAt.After(now) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *MemoryStore) IncrementCounter(_ context.Context, alertID, channel, counter string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.alerts[alertID]
	if !ok {
		return stderrors.NewAlertNotFoundError(alertID)
	}

	stats := &a.SMSStats
	if channel == models.ChannelEmail {
		stats = &a.EmailStats
	}
	switch counter {
	case CounterSent:
		stats.Sent++
	case CounterDelivered:
		stats.Delivered++
	case CounterFailed:
		stats.Failed++
	}
	return nil
}

func (m *MemoryStore) DeactivateExpired(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, a := range m.alerts {
		if a.Active && !a.ExpiresAt.After(now) {
			a.Active = false
			count++
		}
	}
	return count, nil
}
