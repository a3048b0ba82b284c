// internal/providers/sendgrid_test.go
package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	stderrors "bloodcare-alerts/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sendgridTestConfig(baseURL string) SendGridConfig {
	return SendGridConfig{
		APIKey:    "SG.test",
		FromEmail: "alerts@bloodcare.org",
		BaseURL:   baseURL,
	}
}

func TestSendGrid_Send_Success(t *testing.T) {
	var gotAuth string
	var gotPayload map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Header().Set("X-Message-Id", "msg-001")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	sg := NewSendGrid(sendgridTestConfig(srv.URL), testHTTPClient())

	res := sg.Send(context.Background(), SendRequest{
		To:          "donor@example.com",
		Subject:     "🚨 Blood Needed",
		Body:        "plain text",
		HTMLBody:    "<p>html</p>",
		AlertID:     "alert-1",
		RecipientID: "donor-1",
	})

	assert.True(t, res.Accepted)
	assert.Equal(t, "msg-001", res.ProviderRef)
	assert.Equal(t, "Bearer SG.test", gotAuth)

	personalizations := gotPayload["personalizations"].([]interface{})
	require.Len(t, personalizations, 1)
	p := personalizations[0].(map[string]interface{})
	assert.Equal(t, "🚨 Blood Needed", p["subject"])

	customArgs := p["custom_args"].(map[string]interface{})
	assert.Equal(t, "alert-1", customArgs["alertId"])
	assert.Equal(t, "donor-1", customArgs["recipientId"])

	from := gotPayload["from"].(map[string]interface{})
	assert.Equal(t, "alerts@bloodcare.org", from["email"])

	content := gotPayload["content"].([]interface{})
	require.Len(t, content, 2)
	assert.Equal(t, "text/plain", content[0].(map[string]interface{})["type"])
	assert.Equal(t, "text/html", content[1].(map[string]interface{})["type"])
}

func TestSendGrid_Send_Unconfigured(t *testing.T) {
	sg := NewSendGrid(SendGridConfig{BaseURL: "http://unused"}, testHTTPClient())

	assert.False(t, sg.Configured())

	res := sg.Send(context.Background(), SendRequest{To: "donor@example.com"})
	assert.False(t, res.Accepted)
	assert.True(t, stderrors.IsUnconfigured(res.Err))
}

func TestSendGrid_Send_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	sg := NewSendGrid(sendgridTestConfig(srv.URL), testHTTPClient())
	res := sg.Send(context.Background(), SendRequest{To: "donor@example.com"})

	assert.False(t, res.Accepted)
	assert.True(t, stderrors.IsCode(res.Err, stderrors.ErrCodeProviderTransport))
}
