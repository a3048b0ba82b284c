// internal/api/webhooks.go
package api

import (
	"encoding/json"
	"net/http"

	"bloodcare-alerts/internal/models"
)

// Twilio message statuses that mean the handset received the message.
// https://www.twilio.com/docs/sms/api/message-resource#message-status-values
var twilioDelivered = map[string]bool{
	"delivered": true,
	"read":      true,
}

var twilioTerminalFailure = map[string]bool{
	"failed":      true,
	"undelivered": true,
}

// handleTwilioStatus settles SMS attempts from Twilio status callbacks. The
// attempt identity rides on the callback URL query, set at send time.
func (s *Server) handleTwilioStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	alertID := r.URL.Query().Get("alertId")
	recipientID := r.URL.Query().Get("recipientId")
	status := r.PostFormValue("MessageStatus")

	if alertID == "" || recipientID == "" || status == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch {
	case twilioDelivered[status]:
		s.settle(r, alertID, recipientID, models.ChannelSMS, true, "")
	case twilioTerminalFailure[status]:
		s.settle(r, alertID, recipientID, models.ChannelSMS, false, models.ReasonRejected)
	default:
		// queued, sending, sent: intermediate, nothing to record yet
	}

	w.WriteHeader(http.StatusNoContent)
}

// sendGridEvent is one entry of the event webhook batch. Custom args set at
// send time come back as top-level fields.
type sendGridEvent struct {
	Event       string `json:"event"`
	Email       string `json:"email"`
	AlertID     string `json:"alertId"`
	RecipientID string `json:"recipientId"`
}

// handleSendGridEvents settles email attempts from the SendGrid event
// webhook. Events arrive in batches.
func (s *Server) handleSendGridEvents(w http.ResponseWriter, r *http.Request) {
	var events []sendGridEvent
	if err := json.NewDecoder(r.Body).Decode(&events); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	for _, ev := range events {
		if ev.AlertID == "" || ev.RecipientID == "" {
			continue
		}
		switch ev.Event {
		case "delivered":
			s.settle(r, ev.AlertID, ev.RecipientID, models.ChannelEmail, true, "")
		case "bounce", "dropped":
			s.settle(r, ev.AlertID, ev.RecipientID, models.ChannelEmail, false, models.ReasonRejected)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) settle(r *http.Request, alertID, recipientID, channel string, delivered bool, reason string) {
	if err := s.tracker.Settle(r.Context(), alertID, recipientID, channel, delivered, reason); err != nil {
		s.logger.Error("webhook settlement failed", map[string]interface{}{
			"alertId":     alertID,
			"recipientId": recipientID,
			"channel":     channel,
			"error":       err,
		})
	}
}
