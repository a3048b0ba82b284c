// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig      `mapstructure:"app"`
	Server    ServerConfig   `mapstructure:"server"`
	Database  DatabaseConfig `mapstructure:"database"`
	Providers ProviderConfig `mapstructure:"providers"`
	Dispatch  DispatchConfig `mapstructure:"dispatch"`
	Logging   LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ElasticsearchConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	Index      string   `mapstructure:"index"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
}

// --- Provider Configuration ---

// ProviderConfig holds per-channel vendor credentials and the ranked
// preferred/fallback selection. Credentials are opaque to the adapters that
// consume them.
type ProviderConfig struct {
	SMS   SMSProviderConfig   `mapstructure:"sms"`
	Email EmailProviderConfig `mapstructure:"email"`

	// Emergency contact embedded in every composed message.
	EmergencyPhone string `mapstructure:"emergency_phone"`
	EmergencyEmail string `mapstructure:"emergency_email"`
}

type SMSProviderConfig struct {
	Preferred string `mapstructure:"preferred"` // "twilio", "textbelt", "sns"
	Fallback  string `mapstructure:"fallback"`

	Twilio struct {
		AccountSID        string `mapstructure:"account_sid"`
		AuthToken         string `mapstructure:"auth_token"`
		FromNumber        string `mapstructure:"from_number"`
		BaseURL           string `mapstructure:"base_url"`
		StatusCallbackURL string `mapstructure:"status_callback_url"`
	} `mapstructure:"twilio"`

	TextBelt struct {
		APIKey  string `mapstructure:"api_key"`
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"textbelt"`

	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		Region   string `mapstructure:"region"`
		SenderID string `mapstructure:"sender_id"`
	} `mapstructure:"sns"`
}

type EmailProviderConfig struct {
	Preferred string `mapstructure:"preferred"` // "sendgrid", "ses"
	Fallback  string `mapstructure:"fallback"`

	SendGrid struct {
		APIKey    string `mapstructure:"api_key"`
		FromEmail string `mapstructure:"from_email"`
		BaseURL   string `mapstructure:"base_url"`
	} `mapstructure:"sendgrid"`

	SES struct {
		Enabled   bool   `mapstructure:"enabled"`
		Region    string `mapstructure:"region"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"ses"`
}

// --- Dispatch Configuration ---

// DispatchConfig holds the coordinator's scheduling and settlement knobs.
type DispatchConfig struct {
	WorkerPoolSize      int `mapstructure:"worker_pool_size"`
	ConfirmationTimeout int `mapstructure:"confirmation_timeout"` // milliseconds
	SettleMinDelay      int `mapstructure:"settle_min_delay"`     // milliseconds, simulated settlement
	SettleMaxDelay      int `mapstructure:"settle_max_delay"`     // milliseconds
	ExpirySweepInterval int `mapstructure:"expiry_sweep_interval"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
