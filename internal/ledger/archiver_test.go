// internal/ledger/archiver_test.go
package ledger

import (
	"context"
	"testing"

	"bloodcare-alerts/internal/common/logger"
	"bloodcare-alerts/internal/models"
)

func TestArchiver_NilClientIsNoOp(t *testing.T) {
	a := NewArchiver(nil, "delivery-attempts", logger.NewNoOpLogger())

	attempt := sampleAttempt("a1", "r1", models.ChannelSMS, models.AttemptDelivered)
	// Must not panic or block when archiving is disabled.
	a.Archive(context.Background(), attempt)
}

func TestArchiver_SkipsNonTerminalAttempts(t *testing.T) {
	a := NewArchiver(nil, "delivery-attempts", logger.NewNoOpLogger())

	a.Archive(context.Background(), sampleAttempt("a1", "r1", models.ChannelSMS, models.AttemptPending))
	a.Archive(context.Background(), sampleAttempt("a1", "r1", models.ChannelSMS, models.AttemptSubmitted))
}
