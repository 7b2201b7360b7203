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

const (
	defaultVerifyURL     = "https://www.google.com/recaptcha/api/siteverify"
	defaultAirtableURL   = "https://api.airtable.com"
	defaultHoneypotField = "website"
	defaultLoadedAtField = "formLoadedAt"
)

// Load reads configs/config.yaml, merges configs/config.<APP_ENVIRONMENT>.yaml
// on top and applies environment overrides.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// Booleans that default to on cannot be told apart from "unset" after
	// unmarshal, so they are seeded here.
	v.SetDefault("gateway.classification_enabled", true)
	v.SetDefault("verification.enabled", true)
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

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

// findProjectRoot walks up from the working directory looking for go.mod.
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

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig fills secrets that were left out of the YAML from
// well-known environment variables.
func overrideEmptyConfig(cfg *Config) {
	setIfEmpty(&cfg.Verification.SecretKey, "RECAPTCHA_SECRET_KEY")
	setIfEmpty(&cfg.Credentials.ClientID, "LEADEXEC_CLIENT_ID")
	setIfEmpty(&cfg.Credentials.ClientSecret, "LEADEXEC_CLIENT_SECRET")
	setIfEmpty(&cfg.Credentials.APIKey, "LEADEXEC_API_KEY")
	setIfEmpty(&cfg.CRM.APIKey, "AIRTABLE_API_KEY")
	setIfEmpty(&cfg.Database.Redis.Address, "REDIS_ADDRESS")
	setIfEmpty(&cfg.Database.Redis.Password, "REDIS_PASSWORD")
}

func setIfEmpty(dst *string, envKey string) {
	if *dst != "" {
		return
	}
	if val := os.Getenv(envKey); val != "" {
		*dst = val
	}
}

// applyDefaults sets default values for optional configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "lead-gateway"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10000
	}
	if cfg.Server.CORS.MaxAge == 0 {
		cfg.Server.CORS.MaxAge = 300
	}

	if cfg.Gateway.OutboundTimeout == 0 {
		cfg.Gateway.OutboundTimeout = 15000
	}
	if cfg.Gateway.MaxBodyBytes == 0 {
		cfg.Gateway.MaxBodyBytes = 1 << 20
	}

	if cfg.Verification.VerifyURL == "" {
		cfg.Verification.VerifyURL = defaultVerifyURL
	}
	if cfg.Verification.ReplayTTL == 0 {
		cfg.Verification.ReplayTTL = 120000
	}

	if cfg.Credentials.Strategy == "" {
		cfg.Credentials.Strategy = StrategyOAuth
	}

	if cfg.CRM.BaseURL == "" {
		cfg.CRM.BaseURL = defaultAirtableURL
	}

	if cfg.Spam.HoneypotField == "" {
		cfg.Spam.HoneypotField = defaultHoneypotField
	}
	if cfg.Spam.LoadedAtField == "" {
		cfg.Spam.LoadedAtField = defaultLoadedAtField
	}
	if cfg.Spam.MinFillTime == 0 {
		cfg.Spam.MinFillTime = 3000
	}

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

// validateConfig validates critical configuration fields.
func validateConfig(cfg *Config) error {
	switch cfg.Credentials.Strategy {
	case StrategyStatic:
		if cfg.Credentials.APIKey == "" {
			return fmt.Errorf("credentials.api_key is required for the static strategy")
		}
	case StrategyOAuth:
		if cfg.Credentials.ClientID == "" {
			return fmt.Errorf("credentials.client_id is required for the oauth strategy")
		}
		if cfg.Credentials.ClientSecret == "" {
			return fmt.Errorf("credentials.client_secret is required for the oauth strategy")
		}
		if cfg.Credentials.AuthURL == "" {
			return fmt.Errorf("credentials.auth_url is required for the oauth strategy")
		}
	default:
		return fmt.Errorf("credentials.strategy must be %q or %q, got %q", StrategyOAuth, StrategyStatic, cfg.Credentials.Strategy)
	}

	if cfg.LeadExec.InsertURL == "" {
		return fmt.Errorf("leadexec.insert_url is required")
	}

	if cfg.CRM.Enabled {
		if cfg.CRM.APIKey == "" {
			return fmt.Errorf("crm.api_key is required when crm is enabled")
		}
		if cfg.CRM.BaseID == "" {
			return fmt.Errorf("crm.base_id is required when crm is enabled")
		}
		if cfg.CRM.TableName == "" {
			return fmt.Errorf("crm.table_name is required when crm is enabled")
		}
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// VerificationActive reports whether the reCAPTCHA gate can run at all.
func (c *Config) VerificationActive() bool {
	return c.Verification.Enabled && c.Verification.SecretKey != ""
}
