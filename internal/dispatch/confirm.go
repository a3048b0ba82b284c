// internal/dispatch/confirm.go
package dispatch

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"bloodcare-alerts/internal/alerts"
	"bloodcare-alerts/internal/common/logger"
	"bloodcare-alerts/internal/common/metrics"
	"bloodcare-alerts/internal/ledger"
	"bloodcare-alerts/internal/models"
)

// Confirmer produces the out-of-band delivery confirmation for a submitted
// attempt. In production this is the provider webhook; in development the
// Simulator stands in.
type Confirmer interface {
	Confirm(attempt *models.DeliveryAttempt)
}

// Tracker watches submitted attempts and settles each one exactly once:
// either from an external confirmation or from its timeout firing. The first
// terminal transition wins; everything after is ignored.
type Tracker struct {
	ledger   ledger.Ledger
	store    alerts.Store
	keyed    *ledger.KeyedMutex
	archiver *ledger.Archiver
	logger   logger.Logger
	timeout  time.Duration
	now      func() time.Time

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewTracker(led ledger.Ledger, store alerts.Store, keyed *ledger.KeyedMutex, archiver *ledger.Archiver, log logger.Logger, timeout time.Duration) *Tracker {
	return &Tracker{
		ledger:   led,
		store:    store,
		keyed:    keyed,
		archiver: archiver,
		logger:   log.WithFields(map[string]interface{}{"component": "confirmation-tracker"}),
		timeout:  timeout,
		now:      time.Now,
		timers:   make(map[string]*time.Timer),
	}
}

// Watch arms the confirmation timeout for a submitted attempt. The timer does
// not hold a dispatch worker slot; it settles the attempt as failed(timeout)
// if no confirmation arrives first.
func (t *Tracker) Watch(attempt *models.DeliveryAttempt) {
	key := attempt.Key()

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.timers[key]; ok {
		return
	}

	alertID, recipientID, channel := attempt.AlertID, attempt.RecipientID, attempt.Channel
	t.timers[key] = time.AfterFunc(t.timeout, func() {
		if err := t.Settle(context.Background(), alertID, recipientID, channel, false, models.ReasonTimeout); err != nil {
			t.logger.Error("timeout settlement failed", map[string]interface{}{
				"attemptKey": key,
				"error":      err,
			})
		}
	})
}

// Settle records the terminal outcome of an attempt. delivered=false carries
// a reason ("timeout", "rejected", ...). Settling an attempt that is already
// terminal, or that was never created, is a no-op.
func (t *Tracker) Settle(ctx context.Context, alertID, recipientID, channel string, delivered bool, reason string) error {
	key := models.AttemptKey(alertID, recipientID, channel)
	unlock := t.keyed.Lock(key)
	defer unlock()

	attempt, err := t.ledger.Get(ctx, alertID, recipientID, channel)
	if err != nil {
		return err
	}
	if attempt == nil {
		t.logger.Warn("confirmation for unknown attempt ignored", map[string]interface{}{
			"attemptKey": key,
		})
		return nil
	}
	if attempt.Terminal() {
		t.logger.Debug("late confirmation ignored", map[string]interface{}{
			"attemptKey": key,
			"state":      attempt.State,
		})
		return nil
	}

	now := t.now().UTC()
	attempt.SettledAt = &now
	counter := alerts.CounterDelivered
	if delivered {
		attempt.State = models.AttemptDelivered
		attempt.ErrorReason = ""
	} else {
		attempt.State = models.AttemptFailed
		attempt.ErrorReason = reason
		counter = alerts.CounterFailed
	}

	if err := t.ledger.Upsert(ctx, attempt); err != nil {
		return err
	}

	t.stopTimer(key)

	if err := t.store.IncrementCounter(ctx, alertID, channel, counter); err != nil {
		t.logger.Error("counter increment failed", map[string]interface{}{
			"alertId": alertID,
			"channel": channel,
			"counter": counter,
			"error":   err,
		})
	}

	metrics.AttemptsSettled.WithLabelValues(channel, attempt.State, reason).Inc()
	t.archiver.Archive(ctx, attempt)

	t.logger.Info("attempt settled", map[string]interface{}{
		"attemptKey": key,
		"state":      attempt.State,
		"reason":     reason,
	})
	return nil
}

// Stop cancels all armed timers. Attempts still pending confirmation stay
// submitted in the ledger.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for key, timer := range t.timers {
		timer.Stop()
		delete(t.timers, key)
	}
}

func (t *Tracker) stopTimer(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if timer, ok := t.timers[key]; ok {
		timer.Stop()
		delete(t.timers, key)
	}
}

// Simulator emulates the delay between a provider accepting a message and the
// network reporting the final outcome. Used when webhooks from the real
// vendors are not wired up.
type Simulator struct {
	tracker     *Tracker
	minDelay    time.Duration
	maxDelay    time.Duration
	successRate float64
	logger      logger.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulator(tracker *Tracker, minDelay, maxDelay time.Duration, log logger.Logger) *Simulator {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &Simulator{
		tracker:     tracker,
		minDelay:    minDelay,
		maxDelay:    maxDelay,
		successRate: 0.9,
		logger:      log.WithFields(map[string]interface{}{"component": "confirmation-simulator"}),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Confirm settles the attempt after a randomized delay, succeeding at the
// configured rate.
func (s *Simulator) Confirm(attempt *models.DeliveryAttempt) {
	alertID, recipientID, channel := attempt.AlertID, attempt.RecipientID, attempt.Channel

	s.mu.Lock()
	delay := s.minDelay
	if s.maxDelay > s.minDelay {
		delay += time.Duration(s.rng.Int63n(int64(s.maxDelay - s.minDelay)))
	}
	delivered := s.rng.Float64() < s.successRate
	s.mu.Unlock()

	time.AfterFunc(delay, func() {
		reason := ""
		if !delivered {
			reason = models.ReasonRejected
		}
		if err := s.tracker.Settle(context.Background(), alertID, recipientID, channel, delivered, reason); err != nil {
			s.logger.Error("simulated settlement failed", map[string]interface{}{
				"alertId":     alertID,
				"recipientId": recipientID,
				"channel":     channel,
				"error":       err,
			})
		}
	})
}
