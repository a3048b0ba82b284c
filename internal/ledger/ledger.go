// internal/ledger/ledger.go
package ledger

import (
	"context"
	"sync"

	"bloodcare-alerts/internal/models"
)

// Ledger is the durable record of every send attempt, keyed by
// (alertId, recipientId, channel). Get returns (nil, nil) when no attempt
// exists for the key.
type Ledger interface {
	Get(ctx context.Context, alertID, recipientID, channel string) (*models.DeliveryAttempt, error)
	Upsert(ctx context.Context, attempt *models.DeliveryAttempt) error
	Query(ctx context.Context, alertID string) ([]models.DeliveryAttempt, error)
	Stats(ctx context.Context, alertID string) (models.DeliveryStats, error)
}

// KeyedMutex serializes operations per attempt key so the coordinator's
// check-then-write is atomic without a global lock.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*entry)}
}

// Lock acquires the mutex for key and returns its unlock function.
func (k *KeyedMutex) Lock(key string) func() {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// statsOf folds attempts into the aggregate delivery stats shape.
func statsOf(attempts []models.DeliveryAttempt) models.DeliveryStats {
	stats := models.DeliveryStats{Total: len(attempts)}
	for _, a := range attempts {
		switch a.State {
		case models.AttemptSubmitted:
			stats.Sent++
		case models.AttemptDelivered:
			stats.Sent++
			stats.Delivered++
		case models.AttemptFailed:
			stats.Failed++
		case models.AttemptPending:
			stats.Pending++
		}
	}
	return stats
}
