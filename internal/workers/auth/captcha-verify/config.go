package captchaverify

import (
	"fmt"
	"time"

	"lead-gateway/internal/common/config"
)

// ScoreThreshold is the minimum accepted reCAPTCHA v3 score. It is fixed, not configurable.
const ScoreThreshold = 0.5

type Config struct {
	Enabled   bool          `mapstructure:"enabled"`
	SecretKey string        `mapstructure:"secret_key"`
	VerifyURL string        `mapstructure:"verify_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	ReplayTTL time.Duration `mapstructure:"replay_ttl"`
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:   true,
		VerifyURL: "https://www.google.com/recaptcha/api/siteverify",
		Timeout:   15 * time.Second,
		ReplayTTL: 2 * time.Minute,
	}
}

// ConfigFromAppConfig derives the gate configuration from the application config.
func ConfigFromAppConfig(appConfig *config.Config) *Config {
	cfg := DefaultConfig()
	if appConfig == nil {
		return cfg
	}

	cfg.Enabled = appConfig.VerificationActive()
	cfg.SecretKey = appConfig.Verification.SecretKey
	if appConfig.Verification.VerifyURL != "" {
		cfg.VerifyURL = appConfig.Verification.VerifyURL
	}
	if appConfig.Gateway.OutboundTimeout > 0 {
		cfg.Timeout = config.GetDuration(appConfig.Gateway.OutboundTimeout)
	}
	if appConfig.Verification.ReplayTTL > 0 {
		cfg.ReplayTTL = config.GetDuration(appConfig.Verification.ReplayTTL)
	}
	return cfg
}

func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.SecretKey == "" {
		return fmt.Errorf("secret_key is required when verification is enabled")
	}
	if c.VerifyURL == "" {
		return fmt.Errorf("verify_url is required when verification is enabled")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.ReplayTTL <= 0 {
		return fmt.Errorf("replay_ttl must be positive")
	}
	return nil
}
