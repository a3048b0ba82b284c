// internal/ledger/ledger_test.go
package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"bloodcare-alerts/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAttempt(alertID, recipientID, channel, state string) *models.DeliveryAttempt {
	return &models.DeliveryAttempt{
		AlertID:     alertID,
		RecipientID: recipientID,
		Channel:     channel,
		Provider:    "twilio",
		State:       state,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestMemoryLedger_GetAbsentReturnsNil(t *testing.T) {
	led := NewMemoryLedger()

	got, err := led.Get(context.Background(), "a1", "r1", models.ChannelSMS)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryLedger_UpsertAndGet(t *testing.T) {
	led := NewMemoryLedger()
	ctx := context.Background()

	attempt := sampleAttempt("a1", "r1", models.ChannelSMS, models.AttemptPending)
	require.NoError(t, led.Upsert(ctx, attempt))

	got, err := led.Get(ctx, "a1", "r1", models.ChannelSMS)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.AttemptPending, got.State)

	// Same key, new state
	attempt.State = models.AttemptSubmitted
	require.NoError(t, led.Upsert(ctx, attempt))

	got, err = led.Get(ctx, "a1", "r1", models.ChannelSMS)
	require.NoError(t, err)
	assert.Equal(t, models.AttemptSubmitted, got.State)

	// Channel is part of the key
	other, err := led.Get(ctx, "a1", "r1", models.ChannelEmail)
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestMemoryLedger_QueryScopesByAlert(t *testing.T) {
	led := NewMemoryLedger()
	ctx := context.Background()

	require.NoError(t, led.Upsert(ctx, sampleAttempt("a1", "r1", models.ChannelSMS, models.AttemptSubmitted)))
	require.NoError(t, led.Upsert(ctx, sampleAttempt("a1", "r2", models.ChannelSMS, models.AttemptFailed)))
	require.NoError(t, led.Upsert(ctx, sampleAttempt("a2", "r1", models.ChannelEmail, models.AttemptDelivered)))

	scoped, err := led.Query(ctx, "a1")
	require.NoError(t, err)
	assert.Len(t, scoped, 2)

	all, err := led.Query(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemoryLedger_Stats(t *testing.T) {
	led := NewMemoryLedger()
	ctx := context.Background()

	require.NoError(t, led.Upsert(ctx, sampleAttempt("a1", "r1", models.ChannelSMS, models.AttemptSubmitted)))
	require.NoError(t, led.Upsert(ctx, sampleAttempt("a1", "r2", models.ChannelSMS, models.AttemptDelivered)))
	require.NoError(t, led.Upsert(ctx, sampleAttempt("a1", "r3", models.ChannelSMS, models.AttemptFailed)))
	require.NoError(t, led.Upsert(ctx, sampleAttempt("a1", "r4", models.ChannelEmail, models.AttemptPending)))

	stats, err := led.Stats(ctx, "a1")
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Sent, "submitted and delivered both count as sent")
	assert.Equal(t, 1, stats.Delivered)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Pending)
}

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	km := NewKeyedMutex()

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup

	unlock := km.Lock("k1")

	wg.Add(1)
	go func() {
		defer wg.Done()
		u := km.Lock("k1")
		defer u()
		mu.Lock()
		order = append(order, 2)
		mu.Unlock()
	}()

	// Different key does not contend.
	u2 := km.Lock("k2")
	u2()

	mu.Lock()
	order = append(order, 1)
	mu.Unlock()
	unlock()

	wg.Wait()
	assert.Equal(t, []int{1, 2}, order)
}

func TestKeyedMutex_ConcurrentCounters(t *testing.T) {
	km := NewKeyedMutex()

	const goroutines = 50
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("shared")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines, counter)
}
