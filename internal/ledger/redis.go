// internal/ledger/redis.go
package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	stderrors "bloodcare-alerts/internal/common/errors"
	"bloodcare-alerts/internal/models"

	"github.com/redis/go-redis/v9"
)

const alertSetKey = "ledger:alerts"

func alertHashKey(alertID string) string {
	return fmt.Sprintf("ledger:attempts:%s", alertID)
}

func fieldKey(recipientID, channel string) string {
	return fmt.Sprintf("%s:%s", recipientID, channel)
}

// RedisLedger stores attempts as one hash per alert: field (recipientId,
// channel), value JSON-encoded attempt. An index set tracks known alert IDs
// for unscoped queries.
type RedisLedger struct {
	client *redis.Client
}

func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{client: client}
}

func (r *RedisLedger) Get(ctx context.Context, alertID, recipientID, channel string) (*models.DeliveryAttempt, error) {
	raw, err := r.client.HGet(ctx, alertHashKey(alertID), fieldKey(recipientID, channel)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, stderrors.NewLedgerReadFailedError(models.AttemptKey(alertID, recipientID, channel), err)
	}

	var attempt models.DeliveryAttempt
	if err := json.Unmarshal([]byte(raw), &attempt); err != nil {
		return nil, stderrors.NewLedgerReadFailedError(models.AttemptKey(alertID, recipientID, channel), err)
	}
	return &attempt, nil
}

func (r *RedisLedger) Upsert(ctx context.Context, attempt *models.DeliveryAttempt) error {
	raw, err := json.Marshal(attempt)
	if err != nil {
		return stderrors.NewLedgerWriteFailedError(attempt.Key(), err)
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, alertHashKey(attempt.AlertID), fieldKey(attempt.RecipientID, attempt.Channel), raw)
	pipe.SAdd(ctx, alertSetKey, attempt.AlertID)
	if _, err := pipe.Exec(ctx); err != nil {
		return stderrors.NewLedgerWriteFailedError(attempt.Key(), err)
	}
	return nil
}

func (r *RedisLedger) Query(ctx context.Context, alertID string) ([]models.DeliveryAttempt, error) {
	alertIDs := []string{alertID}
	if alertID == "" {
		ids, err := r.client.SMembers(ctx, alertSetKey).Result()
		if err != nil {
			return nil, stderrors.NewLedgerReadFailedError(alertSetKey, err)
		}
		alertIDs = ids
	}

	var out []models.DeliveryAttempt
	for _, id := range alertIDs {
		fields, err := r.client.HGetAll(ctx, alertHashKey(id)).Result()
		if err != nil {
			return nil, stderrors.NewLedgerReadFailedError(alertHashKey(id), err)
		}
		for _, raw := range fields {
			var attempt models.DeliveryAttempt
			if err := json.Unmarshal([]byte(raw), &attempt); err != nil {
				return nil, stderrors.NewLedgerReadFailedError(alertHashKey(id), err)
			}
			out = append(out, attempt)
		}
	}
	return out, nil
}

func (r *RedisLedger) Stats(ctx context.Context, alertID string) (models.DeliveryStats, error) {
	attempts, err := r.Query(ctx, alertID)
	if err != nil {
		return models.DeliveryStats{}, err
	}
	return statsOf(attempts), nil
}
