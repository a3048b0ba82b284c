// internal/providers/textbelt_test.go
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

func TestTextBelt_Send_Success(t *testing.T) {
	var gotPayload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/text", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Write([]byte(`{"success": true, "textId": 98765}`))
	}))
	defer srv.Close()

	tb := NewTextBelt(TextBeltConfig{APIKey: "key-1", BaseURL: srv.URL}, testHTTPClient())

	res := tb.Send(context.Background(), SendRequest{To: "+15551234567", Body: "blood needed"})

	assert.True(t, res.Accepted)
	assert.Equal(t, "98765", res.ProviderRef)
	assert.Equal(t, "+15551234567", gotPayload["phone"])
	assert.Equal(t, "blood needed", gotPayload["message"])
	assert.Equal(t, "key-1", gotPayload["key"])
}

func TestTextBelt_Send_Rejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "error": "Out of quota"}`))
	}))
	defer srv.Close()

	tb := NewTextBelt(TextBeltConfig{APIKey: "key-1", BaseURL: srv.URL}, testHTTPClient())
	res := tb.Send(context.Background(), SendRequest{To: "+1555", Body: "x"})

	assert.False(t, res.Accepted)
	assert.True(t, stderrors.IsCode(res.Err, stderrors.ErrCodeProviderTransport))
	assert.Contains(t, res.Err.Error(), "Out of quota")
}

func TestTextBelt_Send_Unconfigured(t *testing.T) {
	tb := NewTextBelt(TextBeltConfig{BaseURL: "http://unused"}, testHTTPClient())

	assert.False(t, tb.Configured())

	res := tb.Send(context.Background(), SendRequest{To: "+1555"})
	assert.False(t, res.Accepted)
	assert.True(t, stderrors.IsUnconfigured(res.Err))
}
