// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
database:
  postgres:
    host: localhost
    port: 5432
    database: bloodcare
    user: app
  redis:
    address: localhost:6379
`

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfigFile(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 10, cfg.Dispatch.WorkerPoolSize)
	assert.Equal(t, 30000, cfg.Dispatch.ConfirmationTimeout)
	assert.Equal(t, "twilio", cfg.Providers.SMS.Preferred)
	assert.Equal(t, "textbelt", cfg.Providers.SMS.Fallback)
	assert.Equal(t, "sendgrid", cfg.Providers.Email.Preferred)
	assert.Equal(t, "ses", cfg.Providers.Email.Fallback)
	assert.Equal(t, "delivery-attempts", cfg.Database.Elasticsearch.Index)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "missing postgres host",
			content: `
database:
  postgres:
    database: bloodcare
    user: app
  redis:
    address: localhost:6379
`,
		},
		{
			name: "missing redis address",
			content: `
database:
  postgres:
    host: localhost
    database: bloodcare
    user: app
`,
		},
		{
			name: "elasticsearch enabled without addresses",
			content: minimalConfig + `
  elasticsearch:
    enabled: true
`,
		},
		{
			name: "settle delays inverted",
			content: minimalConfig + `
dispatch:
  settle_min_delay: 5000
  settle_max_delay: 2000
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfigFile(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile_EnvOverridesEmptyCredentials(t *testing.T) {
	t.Setenv("TWILIO_ACCOUNT_SID", "AC_from_env")
	t.Setenv("SENDGRID_API_KEY", "SG_from_env")

	cfg, err := LoadFromFile(writeConfigFile(t, minimalConfig))
	require.NoError(t, err)

	assert.Equal(t, "AC_from_env", cfg.Providers.SMS.Twilio.AccountSID)
	assert.Equal(t, "SG_from_env", cfg.Providers.Email.SendGrid.APIKey)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 30*time.Second, GetDuration(30000))
	assert.Equal(t, time.Duration(0), GetDuration(0))
}
