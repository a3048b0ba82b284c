// internal/ledger/redis_test.go
package ledger

import (
	"context"
	"testing"

	"bloodcare-alerts/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "bloodcare-alerts/internal/common/errors"
)

func newRedisLedger(t *testing.T) *RedisLedger {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisLedger(client)
}

func TestRedisLedger_GetAbsentReturnsNil(t *testing.T) {
	led := newRedisLedger(t)

	got, err := led.Get(context.Background(), "a1", "r1", models.ChannelSMS)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisLedger_UpsertRoundTrip(t *testing.T) {
	led := newRedisLedger(t)
	ctx := context.Background()

	attempt := sampleAttempt("a1", "r1", models.ChannelSMS, models.AttemptPending)
	attempt.ProviderRef = "SM123"
	require.NoError(t, led.Upsert(ctx, attempt))

	got, err := led.Get(ctx, "a1", "r1", models.ChannelSMS)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.AttemptPending, got.State)
	assert.Equal(t, "SM123", got.ProviderRef)
	assert.Equal(t, "twilio", got.Provider)

	// Overwrite with a terminal state.
	attempt.State = models.AttemptDelivered
	require.NoError(t, led.Upsert(ctx, attempt))

	got, err = led.Get(ctx, "a1", "r1", models.ChannelSMS)
	require.NoError(t, err)
	assert.Equal(t, models.AttemptDelivered, got.State)
}

func TestRedisLedger_QueryAndStats(t *testing.T) {
	led := newRedisLedger(t)
	ctx := context.Background()

	require.NoError(t, led.Upsert(ctx, sampleAttempt("a1", "r1", models.ChannelSMS, models.AttemptSubmitted)))
	require.NoError(t, led.Upsert(ctx, sampleAttempt("a1", "r1", models.ChannelEmail, models.AttemptDelivered)))
	require.NoError(t, led.Upsert(ctx, sampleAttempt("a2", "r2", models.ChannelSMS, models.AttemptFailed)))

	scoped, err := led.Query(ctx, "a1")
	require.NoError(t, err)
	assert.Len(t, scoped, 2)

	all, err := led.Query(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	stats, err := led.Stats(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Sent)
	assert.Equal(t, 1, stats.Delivered)
	assert.Equal(t, 1, stats.Failed)
}

func TestRedisLedger_ReadFailure(t *testing.T) {
	client, mock := redismock.NewClientMock()
	led := NewRedisLedger(client)

	mock.ExpectHGet("ledger:attempts:a1", "r1:sms").SetErr(redis.ErrClosed)

	_, err := led.Get(context.Background(), "a1", "r1", models.ChannelSMS)
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeLedgerReadFailed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLedger_CorruptEntry(t *testing.T) {
	client, mock := redismock.NewClientMock()
	led := NewRedisLedger(client)

	mock.ExpectHGet("ledger:attempts:a1", "r1:sms").SetVal("{not json")

	_, err := led.Get(context.Background(), "a1", "r1", models.ChannelSMS)
	assert.True(t, stderrors.IsCode(err, stderrors.ErrCodeLedgerReadFailed))
}
