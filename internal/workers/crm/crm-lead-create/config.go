package crmleadcreate

import (
	"fmt"
	"time"

	"lead-gateway/internal/common/config"
)

type Config struct {
	Enabled   bool
	Timeout   time.Duration
	BaseURL   string
	APIKey    string
	BaseID    string
	TableName string
	Typecast  bool
	FieldMap  []config.FieldMapping
}

func DefaultConfig() *Config {
	return &Config{
		Enabled: false,
		Timeout: 15 * time.Second,
		BaseURL: "https://api.airtable.com",
	}
}

func ConfigFromAppConfig(appConfig *config.Config) *Config {
	cfg := DefaultConfig()
	if appConfig == nil {
		return cfg
	}

	crm := appConfig.CRM
	cfg.Enabled = crm.Enabled
	cfg.APIKey = crm.APIKey
	cfg.BaseID = crm.BaseID
	cfg.TableName = crm.TableName
	cfg.Typecast = crm.Typecast
	cfg.FieldMap = crm.FieldMap
	if crm.BaseURL != "" {
		cfg.BaseURL = crm.BaseURL
	}
	if appConfig.Gateway.OutboundTimeout > 0 {
		cfg.Timeout = config.GetDuration(appConfig.Gateway.OutboundTimeout)
	}
	return cfg
}

func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.APIKey == "" {
		return fmt.Errorf("api_key is required")
	}
	if c.BaseID == "" {
		return fmt.Errorf("base_id is required")
	}
	if c.TableName == "" {
		return fmt.Errorf("table_name is required")
	}
	for i, m := range c.FieldMap {
		if m.Source == "" || m.Target == "" {
			return fmt.Errorf("field_map[%d] needs both source and target", i)
		}
	}
	return nil
}
