// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Server       ServerConfig       `mapstructure:"server"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Gateway      GatewayConfig      `mapstructure:"gateway"`
	Verification VerificationConfig `mapstructure:"verification"`
	Credentials  CredentialsConfig  `mapstructure:"credentials"`
	LeadExec     LeadExecConfig     `mapstructure:"leadexec"`
	CRM          CRMConfig          `mapstructure:"crm"`
	Spam         SpamConfig         `mapstructure:"spam"`
	Database     DatabaseConfig     `mapstructure:"database"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port            int        `mapstructure:"port"`
	ReadTimeout     int        `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int        `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int        `mapstructure:"shutdown_timeout"` // milliseconds
	CORS            CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxAge         int      `mapstructure:"max_age"` // seconds
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

// RedisConfig is optional; an empty address disables the token replay guard.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Pipeline Configuration ---

// GatewayConfig toggles pipeline stages.
type GatewayConfig struct {
	ClassificationEnabled bool `mapstructure:"classification_enabled"`
	OutboundTimeout       int  `mapstructure:"outbound_timeout"` // milliseconds
	MaxBodyBytes          int  `mapstructure:"max_body_bytes"`
}

// VerificationConfig configures the reCAPTCHA gate. An empty SecretKey
// disables the gate.
type VerificationConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	SecretKey string `mapstructure:"secret_key"`
	VerifyURL string `mapstructure:"verify_url"`
	ReplayTTL int    `mapstructure:"replay_ttl"` // milliseconds
}

const (
	StrategyOAuth  = "oauth"
	StrategyStatic = "static"
)

// CredentialsConfig selects how the insert call is authorized.
type CredentialsConfig struct {
	Strategy     string `mapstructure:"strategy"`
	APIKey       string `mapstructure:"api_key"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	AuthURL      string `mapstructure:"auth_url"`
}

type LeadExecConfig struct {
	InsertURL string `mapstructure:"insert_url"`
}

// CRMConfig configures the optional Airtable mirror.
type CRMConfig struct {
	Enabled   bool           `mapstructure:"enabled"`
	BaseURL   string         `mapstructure:"base_url"`
	APIKey    string         `mapstructure:"api_key"`
	BaseID    string         `mapstructure:"base_id"`
	TableName string         `mapstructure:"table_name"`
	Typecast  bool           `mapstructure:"typecast"`
	FieldMap  []FieldMapping `mapstructure:"field_map"`
}

// FieldMapping renames one lead field to a CRM column. A list is used
// instead of a map because viper lowercases map keys.
type FieldMapping struct {
	Source string `mapstructure:"source"`
	Target string `mapstructure:"target"`
}

// SpamConfig configures the server-side honeypot/timing gate.
type SpamConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	HoneypotField string `mapstructure:"honeypot_field"`
	LoadedAtField string `mapstructure:"loaded_at_field"`
	MinFillTime   int    `mapstructure:"min_fill_time"` // milliseconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
