package submitlead

import (
	"fmt"
	"time"

	"lead-gateway/internal/common/config"
)

type Config struct {
	ClassificationEnabled bool          `mapstructure:"classification_enabled"`
	Timeout               time.Duration `mapstructure:"timeout"`
	MaxBodyBytes          int64         `mapstructure:"max_body_bytes"`
}

func DefaultConfig() *Config {
	return &Config{
		ClassificationEnabled: true,
		Timeout:               15 * time.Second,
		MaxBodyBytes:          1 << 20,
	}
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()
	if appConfig == nil {
		return cfg
	}

	cfg.ClassificationEnabled = appConfig.Gateway.ClassificationEnabled
	if appConfig.Gateway.OutboundTimeout > 0 {
		cfg.Timeout = config.GetDuration(appConfig.Gateway.OutboundTimeout)
	}
	if appConfig.Gateway.MaxBodyBytes > 0 {
		cfg.MaxBodyBytes = int64(appConfig.Gateway.MaxBodyBytes)
	}
	return cfg
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive")
	}
	return nil
}
