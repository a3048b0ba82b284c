// internal/providers/sendgrid.go
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	httpclient "bloodcare-alerts/internal/common/http"
	"bloodcare-alerts/internal/models"
)

const SendGridName = "sendgrid"

// SendGridConfig is the credential material for the SendGrid adapter.
type SendGridConfig struct {
	APIKey    string
	FromEmail string
	BaseURL   string
}

// SendGrid sends email through the SendGrid v3 mail API (HTTP, JSON,
// bearer auth).
type SendGrid struct {
	cfg    SendGridConfig
	client *httpclient.Client
}

func NewSendGrid(cfg SendGridConfig, client *httpclient.Client) *SendGrid {
	return &SendGrid{cfg: cfg, client: client}
}

func (s *SendGrid) Name() string    { return SendGridName }
func (s *SendGrid) Channel() string { return models.ChannelEmail }

func (s *SendGrid) Configured() bool {
	return s.cfg.APIKey != "" && s.cfg.FromEmail != ""
}

func (s *SendGrid) Send(ctx context.Context, req SendRequest) SendResult {
	if !s.Configured() {
		return unconfigured(SendGridName, "sendgrid API key and from email are required")
	}

	personalization := map[string]interface{}{
		"to":      []map[string]string{{"email": req.To}},
		"subject": req.Subject,
	}
	if req.AlertID != "" {
		// Echoed back on event webhook payloads.
		personalization["custom_args"] = map[string]string{
			"alertId":     req.AlertID,
			"recipientId": req.RecipientID,
		}
	}

	payload, err := json.Marshal(map[string]interface{}{
		"personalizations": []map[string]interface{}{personalization},
		"from": map[string]string{"email": s.cfg.FromEmail},
		"content": []map[string]string{
			{"type": "text/plain", "value": req.Body},
			{"type": "text/html", "value": req.HTMLBody},
		},
	})
	if err != nil {
		return transportFailure(SendGridName, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/v3/mail/send", bytes.NewReader(payload))
	if err != nil {
		return transportFailure(SendGridName, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return transportFailure(SendGridName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return transportFailure(SendGridName, fmt.Errorf("sendgrid API error: %d", resp.StatusCode))
	}

	return SendResult{Accepted: true, ProviderRef: resp.Header.Get("X-Message-Id")}
}
