// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like TWILIO_ACCOUNT_SID
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, ignored if not found
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads .env from the working directory or the project root.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string config values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig fills credentials from well-known env vars when the
// config file left them empty.
func overrideEmptyConfig(cfg *Config) {
	// Twilio
	if cfg.Providers.SMS.Twilio.AccountSID == "" {
		if val := os.Getenv("TWILIO_ACCOUNT_SID"); val != "" {
			cfg.Providers.SMS.Twilio.AccountSID = val
		}
	}
	if cfg.Providers.SMS.Twilio.AuthToken == "" {
		if val := os.Getenv("TWILIO_AUTH_TOKEN"); val != "" {
			cfg.Providers.SMS.Twilio.AuthToken = val
		}
	}
	if cfg.Providers.SMS.Twilio.FromNumber == "" {
		if val := os.Getenv("TWILIO_FROM_NUMBER"); val != "" {
			cfg.Providers.SMS.Twilio.FromNumber = val
		}
	}

	// TextBelt
	if cfg.Providers.SMS.TextBelt.APIKey == "" {
		if val := os.Getenv("TEXTBELT_API_KEY"); val != "" {
			cfg.Providers.SMS.TextBelt.APIKey = val
		}
	}

	// SendGrid
	if cfg.Providers.Email.SendGrid.APIKey == "" {
		if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
			cfg.Providers.Email.SendGrid.APIKey = val
		}
	}

	// Database
	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10000
	}

	// Database defaults
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.Index == "" {
		cfg.Database.Elasticsearch.Index = "delivery-attempts"
	}

	// Provider defaults
	if cfg.Providers.SMS.Preferred == "" {
		cfg.Providers.SMS.Preferred = "twilio"
	}
	if cfg.Providers.SMS.Fallback == "" {
		cfg.Providers.SMS.Fallback = "textbelt"
	}
	if cfg.Providers.SMS.Twilio.BaseURL == "" {
		cfg.Providers.SMS.Twilio.BaseURL = "https://api.twilio.com"
	}
	if cfg.Providers.SMS.TextBelt.BaseURL == "" {
		cfg.Providers.SMS.TextBelt.BaseURL = "https://textbelt.com"
	}
	if cfg.Providers.Email.Preferred == "" {
		cfg.Providers.Email.Preferred = "sendgrid"
	}
	if cfg.Providers.Email.Fallback == "" {
		cfg.Providers.Email.Fallback = "ses"
	}
	if cfg.Providers.Email.SendGrid.BaseURL == "" {
		cfg.Providers.Email.SendGrid.BaseURL = "https://api.sendgrid.com"
	}

	// Dispatch defaults
	if cfg.Dispatch.WorkerPoolSize == 0 {
		cfg.Dispatch.WorkerPoolSize = 10
	}
	if cfg.Dispatch.ConfirmationTimeout == 0 {
		cfg.Dispatch.ConfirmationTimeout = 30000
	}
	if cfg.Dispatch.SettleMinDelay == 0 {
		cfg.Dispatch.SettleMinDelay = 1000
	}
	if cfg.Dispatch.SettleMaxDelay == 0 {
		cfg.Dispatch.SettleMaxDelay = 6000
	}
	if cfg.Dispatch.ExpirySweepInterval == 0 {
		cfg.Dispatch.ExpirySweepInterval = 60000
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if cfg.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if cfg.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}

	if cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required")
	}

	if cfg.Database.Elasticsearch.Enabled && len(cfg.Database.Elasticsearch.Addresses) == 0 {
		return fmt.Errorf("database.elasticsearch.addresses is required when enabled")
	}

	if cfg.Dispatch.SettleMinDelay > cfg.Dispatch.SettleMaxDelay {
		return fmt.Errorf("dispatch.settle_min_delay must not exceed dispatch.settle_max_delay")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
