// internal/dispatch/coordinator.go
package dispatch

import (
	"context"
	"sync"
	"time"

	"bloodcare-alerts/internal/alerts"
	"bloodcare-alerts/internal/common/errors"
	"bloodcare-alerts/internal/common/logger"
	"bloodcare-alerts/internal/common/metrics"
	"bloodcare-alerts/internal/common/observability"
	"bloodcare-alerts/internal/compose"
	"bloodcare-alerts/internal/ledger"
	"bloodcare-alerts/internal/models"
	"bloodcare-alerts/internal/providers"
	"bloodcare-alerts/internal/recipients"
)

// DefaultWorkerPoolSize bounds concurrent sends when no pool size is
// configured.
const DefaultWorkerPoolSize = 10

// Resolver matches an alert's targeting criteria to concrete recipients.
type Resolver interface {
	Resolve(ctx context.Context, alert *models.Alert) ([]models.Recipient, error)
}

var _ Resolver = (*recipients.Resolver)(nil)

// Coordinator fans one alert out to every matched recipient over every
// enabled channel. Each (alert, recipient, channel) pair gets at most one
// delivery attempt across all dispatch calls; re-dispatch fills gaps without
// re-sending.
type Coordinator struct {
	store     alerts.Store
	resolver  Resolver
	registry  *providers.Registry
	ledger    ledger.Ledger
	composer  *compose.Composer
	tracker   *Tracker
	confirmer Confirmer
	archiver  *ledger.Archiver
	keyed     *ledger.KeyedMutex
	obs       *observability.Observability
	logger    logger.Logger
	workers   int
	now       func() time.Time
}

// CoordinatorParams collects the coordinator's collaborators. KeyedMutex must
// be the same instance the Tracker uses so dispatch and settlement serialize
// on attempt keys.
type CoordinatorParams struct {
	Store          alerts.Store
	Resolver       Resolver
	Registry       *providers.Registry
	Ledger         ledger.Ledger
	Composer       *compose.Composer
	Tracker        *Tracker
	Confirmer      Confirmer
	Archiver       *ledger.Archiver
	KeyedMutex     *ledger.KeyedMutex
	Observability  *observability.Observability
	Logger         logger.Logger
	WorkerPoolSize int
}

func NewCoordinator(p CoordinatorParams) *Coordinator {
	workers := p.WorkerPoolSize
	if workers <= 0 {
		workers = DefaultWorkerPoolSize
	}
	return &Coordinator{
		store:     p.Store,
		resolver:  p.Resolver,
		registry:  p.Registry,
		ledger:    p.Ledger,
		composer:  p.Composer,
		tracker:   p.Tracker,
		confirmer: p.Confirmer,
		archiver:  p.Archiver,
		keyed:     p.KeyedMutex,
		obs:       p.Observability,
		logger:    p.Logger.WithFields(map[string]interface{}{"component": "dispatch-coordinator"}),
		workers:   workers,
		now:       time.Now,
	}
}

// workUnit is one recipient x channel send.
type workUnit struct {
	recipient models.Recipient
	channel   string
}

// unit outcomes folded into the dispatch summary.
const (
	outcomeSubmitted = "submitted"
	outcomeFailed    = "failed"
	outcomeSkipped   = "skipped"
)

// Dispatch sends an alert to all matched recipients. It returns once every
// attempt is pending confirmation or settled; delivery confirmations continue
// asynchronously. Calling it again for the same alert is safe.
func (c *Coordinator) Dispatch(ctx context.Context, alertID string) (*models.DispatchSummary, error) {
	start := c.now()
	metrics.DispatchesActive.Inc()
	defer metrics.DispatchesActive.Dec()

	summary, err := c.dispatch(ctx, alertID)

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	metrics.DispatchDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	if c.obs != nil {
		c.obs.RecordDispatch(ctx, outcome)
		c.obs.RecordDispatchDuration(ctx, time.Since(start), outcome)
	}
	return summary, err
}

func (c *Coordinator) dispatch(ctx context.Context, alertID string) (*models.DispatchSummary, error) {
	alert, err := c.store.Get(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if !alert.Active {
		return nil, errors.NewAlertInactiveError(alertID)
	}
	if alert.Expired(c.now().UTC()) {
		if derr := c.store.SetActive(ctx, alertID, false); derr != nil {
			c.logger.Warn("failed to deactivate expired alert", map[string]interface{}{
				"alertId": alertID,
				"error":   derr,
			})
		}
		return nil, errors.NewAlertExpiredError(alertID, alert.ExpiresAt)
	}

	recips, err := c.resolver.Resolve(ctx, alert)
	if err != nil {
		return nil, err
	}

	summary := &models.DispatchSummary{
		AlertID:        alertID,
		RecipientCount: len(recips),
	}

	units := make([]workUnit, 0, len(recips)*2)
	for _, r := range recips {
		if alert.SMSEnabled {
			if r.Phone == "" {
				summary.Skipped++
			} else {
				units = append(units, workUnit{recipient: r, channel: models.ChannelSMS})
			}
		}
		if alert.EmailEnabled {
			if r.Email == "" {
				summary.Skipped++
			} else {
				units = append(units, workUnit{recipient: r, channel: models.ChannelEmail})
			}
		}
	}

	c.logger.Info("dispatching alert", map[string]interface{}{
		"alertId":    alertID,
		"recipients": len(recips),
		"workUnits":  len(units),
		"priority":   alert.Priority,
	})

	if len(units) == 0 {
		return summary, nil
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, c.workers)
	)
	for _, u := range units {
		wg.Add(1)
		sem <- struct{}{}
		go func(u workUnit) {
			defer wg.Done()
			defer func() { <-sem }()

			outcome := c.deliver(ctx, alert, u)

			mu.Lock()
			defer mu.Unlock()
			stats := &summary.SMS
			if u.channel == models.ChannelEmail {
				stats = &summary.Email
			}
			switch outcome {
			case outcomeSubmitted:
				stats.Sent++
			case outcomeFailed:
				stats.Failed++
			case outcomeSkipped:
				summary.Skipped++
			}
		}(u)
	}
	wg.Wait()

	c.logger.Info("dispatch complete", map[string]interface{}{
		"alertId": alertID,
		"sms":     summary.SMS,
		"email":   summary.Email,
		"skipped": summary.Skipped,
	})
	return summary, nil
}

// deliver runs one work unit end to end: idempotency check, pending record,
// provider chain, submitted or failed record.
func (c *Coordinator) deliver(ctx context.Context, alert *models.Alert, u workUnit) string {
	key := models.AttemptKey(alert.ID, u.recipient.ID, u.channel)

	unlock := c.keyed.Lock(key)
	existing, err := c.ledger.Get(ctx, alert.ID, u.recipient.ID, u.channel)
	if err != nil {
		unlock()
		c.logger.Error("ledger read failed, unit skipped", map[string]interface{}{
			"attemptKey": key,
			"error":      err,
		})
		return outcomeSkipped
	}
	if existing != nil {
		unlock()
		metrics.AttemptsSkipped.WithLabelValues(u.channel).Inc()
		c.logger.Debug("duplicate attempt skipped", map[string]interface{}{
			"attemptKey": key,
			"state":      existing.State,
		})
		return outcomeSkipped
	}

	attempt := &models.DeliveryAttempt{
		AlertID:     alert.ID,
		RecipientID: u.recipient.ID,
		Channel:     u.channel,
		State:       models.AttemptPending,
		CreatedAt:   c.now().UTC(),
	}
	if err := c.ledger.Upsert(ctx, attempt); err != nil {
		unlock()
		c.logger.Error("ledger write failed, unit skipped", map[string]interface{}{
			"attemptKey": key,
			"error":      err,
		})
		return outcomeSkipped
	}
	unlock()

	result, provider := c.send(ctx, alert, u)

	unlock = c.keyed.Lock(key)
	defer unlock()

	now := c.now().UTC()
	attempt.Provider = provider
	if result.Accepted {
		attempt.State = models.AttemptSubmitted
		attempt.ProviderRef = result.ProviderRef
		attempt.SubmittedAt = &now
	} else {
		attempt.State = models.AttemptFailed
		attempt.SettledAt = &now
		attempt.ErrorReason = models.ReasonTransportError
		if errors.IsUnconfigured(result.Err) {
			attempt.ErrorReason = models.ReasonProviderUnconfigured
		}
	}
	if err := c.ledger.Upsert(ctx, attempt); err != nil {
		c.logger.Error("ledger write failed after send", map[string]interface{}{
			"attemptKey": key,
			"state":      attempt.State,
			"error":      err,
		})
		return outcomeSkipped
	}

	if result.Accepted {
		c.incrementCounter(ctx, alert.ID, u.channel, alerts.CounterSent)
		metrics.AttemptsCreated.WithLabelValues(u.channel, provider).Inc()
		c.tracker.Watch(attempt)
		if c.confirmer != nil {
			c.confirmer.Confirm(attempt)
		}
		return outcomeSubmitted
	}

	c.incrementCounter(ctx, alert.ID, u.channel, alerts.CounterFailed)
	metrics.AttemptsSettled.WithLabelValues(u.channel, models.AttemptFailed, attempt.ErrorReason).Inc()
	c.archiver.Archive(ctx, attempt)
	c.logger.Warn("send failed", map[string]interface{}{
		"attemptKey": key,
		"provider":   provider,
		"reason":     attempt.ErrorReason,
		"error":      result.Err,
	})
	return outcomeFailed
}

// send walks the channel's provider chain. An unconfigured provider passes
// the send to the next in line; a transport failure from a reachable vendor
// fails the attempt without trying the fallback.
func (c *Coordinator) send(ctx context.Context, alert *models.Alert, u workUnit) (providers.SendResult, string) {
	req := providers.SendRequest{
		AlertID:     alert.ID,
		RecipientID: u.recipient.ID,
	}
	switch u.channel {
	case models.ChannelSMS:
		req.To = u.recipient.Phone
		req.Body = c.composer.SMS(alert, &u.recipient)
	case models.ChannelEmail:
		body := c.composer.Email(alert, &u.recipient)
		req.To = u.recipient.Email
		req.Subject = body.Subject
		req.Body = body.Text
		req.HTMLBody = body.HTML
	}

	chain := c.registry.ChainFor(u.channel)
	if len(chain) == 0 {
		return providers.SendResult{
			Err: errors.NewProviderUnconfiguredError("none", "no provider registered for channel "+u.channel),
		}, ""
	}

	var last providers.SendResult
	var lastName string
	for i, p := range chain {
		last = p.Send(ctx, req)
		lastName = p.Name()
		if last.Accepted {
			return last, lastName
		}
		if !errors.IsUnconfigured(last.Err) {
			return last, lastName
		}
		if i+1 < len(chain) {
			next := chain[i+1]
			metrics.ProviderFallbacks.WithLabelValues(u.channel, p.Name(), next.Name()).Inc()
			c.logger.Debug("provider unconfigured, falling back", map[string]interface{}{
				"channel": u.channel,
				"from":    p.Name(),
				"to":      next.Name(),
			})
		}
	}
	return last, lastName
}

func (c *Coordinator) incrementCounter(ctx context.Context, alertID, channel, counter string) {
	if err := c.store.IncrementCounter(ctx, alertID, channel, counter); err != nil {
		c.logger.Error("counter increment failed", map[string]interface{}{
			"alertId": alertID,
			"channel": channel,
			"counter": counter,
			"error":   err,
		})
	}
}

// GetDeliveryStats aggregates ledger attempts into the stats shape. An empty
// alertID aggregates across all alerts.
func (c *Coordinator) GetDeliveryStats(ctx context.Context, alertID string) (models.DeliveryStats, error) {
	return c.ledger.Stats(ctx, alertID)
}

// ListAttempts returns the raw attempt records for an alert.
func (c *Coordinator) ListAttempts(ctx context.Context, alertID string) ([]models.DeliveryAttempt, error) {
	return c.ledger.Query(ctx, alertID)
}
