// internal/models/alert.go
package models

import "time"

// Alert priorities
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Alert target audiences
const (
	AudienceDonors    = "donors"
	AudienceReceivers = "receivers"
	AudienceBoth      = "both"
)

// Alert types
const (
	AlertTypeUrgentSurgery    = "urgent_surgery"
	AlertTypeBloodShortage    = "blood_shortage"
	AlertTypeEmergencyRequest = "emergency_request"
	AlertTypeGeneral          = "general"
)

// ChannelStats holds per-channel aggregate delivery counters for an alert.
// Counters are monotonically non-decreasing and mirror the delivery ledger.
type ChannelStats struct {
	Sent      int `json:"sent"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
}

// Alert is a single emergency notification campaign with targeting criteria
// and a lifecycle. Counters are mutated only by the dispatch coordinator;
// the active flag only by deactivation or expiry.
type Alert struct {
	ID             string       `json:"id"`
	Type           string       `json:"type"` // "urgent_surgery", "blood_shortage", "emergency_request", "general"
	Title          string       `json:"title"`
	Message        string       `json:"message"`
	BloodGroup     string       `json:"bloodGroup,omitempty"`
	Location       string       `json:"location,omitempty"`
	Priority       string       `json:"priority"`       // "high", "medium", "low"
	TargetAudience string       `json:"targetAudience"` // "donors", "receivers", "both"
	SMSEnabled     bool         `json:"smsEnabled"`
	EmailEnabled   bool         `json:"emailEnabled"`
	CreatedAt      time.Time    `json:"createdAt"`
	ExpiresAt      time.Time    `json:"expiresAt"`
	Active         bool         `json:"active"`
	SMSStats       ChannelStats `json:"smsStats"`
	EmailStats     ChannelStats `json:"emailStats"`
}

// Expired reports whether the alert's activation window has passed.
func (a *Alert) Expired(now time.Time) bool {
	return now.After(a.ExpiresAt)
}

// StatsFor returns the aggregate counters for the given channel.
func (a *Alert) StatsFor(channel string) ChannelStats {
	if channel == ChannelEmail {
		return a.EmailStats
	}
	return a.SMSStats
}

// AlertDefinition is the caller-supplied input to create an alert.
type AlertDefinition struct {
	Type           string `json:"type"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	BloodGroup     string `json:"bloodGroup,omitempty"`
	Location       string `json:"location,omitempty"`
	Priority       string `json:"priority"`
	TargetAudience string `json:"targetAudience"`
	SMSEnabled     bool   `json:"smsEnabled"`
	EmailEnabled   bool   `json:"emailEnabled"`
	TTLMinutes     int    `json:"ttlMinutes,omitempty"`
}

// DispatchSummary reports submission-time counts for one dispatch call.
// The delivery ledger remains the source of truth for eventual terminal counts.
type DispatchSummary struct {
	AlertID        string       `json:"alertId"`
	RecipientCount int          `json:"recipientCount"`
	SMS            ChannelStats `json:"sms"`
	Email          ChannelStats `json:"email"`
	Skipped        int          `json:"skipped"` // idempotent no-ops
}

// DeliveryStats aggregates ledger rows, optionally scoped to one alert.
type DeliveryStats struct {
	Total     int `json:"total"`
	Sent      int `json:"sent"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
	Pending   int `json:"pending"`
}

// AlertTemplate is a canned alert definition for common emergency scenarios.
type AlertTemplate struct {
	Type           string `json:"type"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	Priority       string `json:"priority"`
	TargetAudience string `json:"targetAudience"`
	SMSEnabled     bool   `json:"smsEnabled"`
	EmailEnabled   bool   `json:"emailEnabled"`
}
