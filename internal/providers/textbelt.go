// internal/providers/textbelt.go
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

const TextBeltName = "textbelt"

// TextBeltConfig is the credential material for the TextBelt adapter.
type TextBeltConfig struct {
	APIKey  string
	BaseURL string
}

// TextBelt sends SMS through the TextBelt API (HTTP, JSON body).
type TextBelt struct {
	cfg    TextBeltConfig
	client *httpclient.Client
}

func NewTextBelt(cfg TextBeltConfig, client *httpclient.Client) *TextBelt {
	return &TextBelt{cfg: cfg, client: client}
}

func (t *TextBelt) Name() string    { return TextBeltName }
func (t *TextBelt) Channel() string { return models.ChannelSMS }

func (t *TextBelt) Configured() bool {
	return t.cfg.APIKey != ""
}

func (t *TextBelt) Send(ctx context.Context, req SendRequest) SendResult {
	if !t.Configured() {
		return unconfigured(TextBeltName, "textbelt API key is required")
	}

	payload, err := json.Marshal(map[string]string{
		"phone":   req.To,
		"message": req.Body,
		"key":     t.cfg.APIKey,
	})
	if err != nil {
		return transportFailure(TextBeltName, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.BaseURL+"/text", bytes.NewReader(payload))
	if err != nil {
		return transportFailure(TextBeltName, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return transportFailure(TextBeltName, err)
	}
	defer resp.Body.Close()

	var body struct {
		Success bool   `json:"success"`
		TextID  json.Number `json:"textId"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return transportFailure(TextBeltName, fmt.Errorf("decode textbelt response: %w", err))
	}

	if !body.Success {
		return transportFailure(TextBeltName, fmt.Errorf("textbelt rejected send: %s", body.Error))
	}

	return SendResult{Accepted: true, ProviderRef: body.TextID.String()}
}
