// internal/providers/twilio.go
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	httpclient "bloodcare-alerts/internal/common/http"
	"bloodcare-alerts/internal/models"
)

const TwilioName = "twilio"

// TwilioConfig is the opaque credential material for the Twilio adapter.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	BaseURL    string
	// StatusCallbackURL, when set, receives Twilio delivery status updates.
	StatusCallbackURL string
}

// Twilio sends SMS through the Twilio Messages API (HTTP, form-encoded,
// basic auth).
type Twilio struct {
	cfg    TwilioConfig
	client *httpclient.Client
}

func NewTwilio(cfg TwilioConfig, client *httpclient.Client) *Twilio {
	return &Twilio{cfg: cfg, client: client}
}

func (t *Twilio) Name() string    { return TwilioName }
func (t *Twilio) Channel() string { return models.ChannelSMS }

func (t *Twilio) Configured() bool {
	return t.cfg.AccountSID != "" && t.cfg.AuthToken != "" && t.cfg.FromNumber != ""
}

func (t *Twilio) Send(ctx context.Context, req SendRequest) SendResult {
	if !t.Configured() {
		return unconfigured(TwilioName, "twilio account SID, auth token and from number are required")
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", t.cfg.BaseURL, t.cfg.AccountSID)
	form := url.Values{
		"From": {t.cfg.FromNumber},
		"To":   {req.To},
		"Body": {req.Body},
	}
	if t.cfg.StatusCallbackURL != "" && req.AlertID != "" {
		cb := url.Values{"alertId": {req.AlertID}, "recipientId": {req.RecipientID}}
		form.Set("StatusCallback", t.cfg.StatusCallbackURL+"?"+cb.Encode())
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return transportFailure(TwilioName, err)
	}
	httpReq.SetBasicAuth(t.cfg.AccountSID, t.cfg.AuthToken)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return transportFailure(TwilioName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return transportFailure(TwilioName, fmt.Errorf("twilio API error: %d", resp.StatusCode))
	}

	var body struct {
		SID string `json:"sid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return transportFailure(TwilioName, fmt.Errorf("decode twilio response: %w", err))
	}

	return SendResult{Accepted: true, ProviderRef: body.SID}
}
