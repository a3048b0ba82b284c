// internal/models/attempt.go
package models

import (
	"fmt"
	"time"
)

// Notification channels
const (
	ChannelSMS   = "sms"
	ChannelEmail = "email"
)

// Delivery attempt states. pending -> submitted -> delivered | failed.
// No transition leaves a terminal state.
const (
	AttemptPending   = "pending"
	AttemptSubmitted = "submitted"
	AttemptDelivered = "delivered"
	AttemptFailed    = "failed"
)

// Failure reasons recorded on terminal attempts.
const (
	ReasonTimeout              = "timeout"
	ReasonProviderUnconfigured = "provider_unconfigured"
	ReasonTransportError       = "transport_error"
	ReasonRejected             = "rejected"
)

// DeliveryAttempt is the record of one (alert, recipient, channel) send and
// its outcome. Unique per key; re-dispatch must not duplicate an attempt that
// already reached submitted or a terminal state.
type DeliveryAttempt struct {
	AlertID     string     `json:"alertId"`
	RecipientID string     `json:"recipientId"`
	Channel     string     `json:"channel"`  // "sms", "email"
	Provider    string     `json:"provider"` // adapter that handled the send
	State       string     `json:"state"`    // "pending", "submitted", "delivered", "failed"
	ProviderRef string     `json:"providerRef,omitempty"`
	ErrorReason string     `json:"errorReason,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
	SettledAt   *time.Time `json:"settledAt,omitempty"`
}

// Key returns the unique ledger key for this attempt.
func (a *DeliveryAttempt) Key() string {
	return AttemptKey(a.AlertID, a.RecipientID, a.Channel)
}

// Terminal reports whether the attempt reached delivered or failed.
func (a *DeliveryAttempt) Terminal() bool {
	return a.State == AttemptDelivered || a.State == AttemptFailed
}

// AttemptKey builds the (alertId, recipientId, channel) ledger key.
func AttemptKey(alertID, recipientID, channel string) string {
	return fmt.Sprintf("%s:%s:%s", alertID, recipientID, channel)
}
