package spamcheck

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"lead-gateway/internal/common/config"
	"lead-gateway/internal/common/errors"
	"lead-gateway/internal/common/logger"
)

type Config struct {
	Enabled       bool
	HoneypotField string
	LoadedAtField string
	MinFillTime   time.Duration
}

func ConfigFromAppConfig(appConfig *config.Config) *Config {
	return &Config{
		Enabled:       appConfig.Spam.Enabled,
		HoneypotField: appConfig.Spam.HoneypotField,
		LoadedAtField: appConfig.Spam.LoadedAtField,
		MinFillTime:   config.GetDuration(appConfig.Spam.MinFillTime),
	}
}

func (c *Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.HoneypotField == "" {
		return fmt.Errorf("honeypot_field is required when the spam gate is enabled")
	}
	if c.MinFillTime < 0 {
		return fmt.Errorf("min_fill_time must not be negative")
	}
	return nil
}

// Service rejects form submissions that look automated: a filled honeypot
// field, or a submit that came too soon after the form was rendered.
type Service struct {
	config *Config
	logger logger.Logger
	now    func() time.Time
}

func NewService(cfg *Config, log logger.Logger) *Service {
	return &Service{config: cfg, logger: log, now: time.Now}
}

// Check inspects the lead fields. A nil return means the gate passed or is off.
func (s *Service) Check(fields map[string]interface{}) error {
	if s == nil || !s.config.Enabled || fields == nil {
		return nil
	}

	if honeypotFilled(fields[s.config.HoneypotField]) {
		s.logger.Warn("Honeypot field filled - potential bot detected", map[string]interface{}{
			"field": s.config.HoneypotField,
		})
		return errors.NewSpamDetectedError(s.config.HoneypotField)
	}

	if s.config.LoadedAtField == "" {
		return nil
	}
	loadedAt, ok := epochMillis(fields[s.config.LoadedAtField])
	if !ok {
		return nil
	}

	elapsed := s.now().Sub(loadedAt)
	// A load time in the future is client clock skew, not evidence of a bot.
	if elapsed >= 0 && elapsed < s.config.MinFillTime {
		s.logger.Warn("Form submitted too quickly - potential bot detected", map[string]interface{}{
			"elapsedMs": elapsed.Milliseconds(),
			"minimumMs": s.config.MinFillTime.Milliseconds(),
		})
		return errors.NewSubmissionTooFastError(elapsed, s.config.MinFillTime)
	}

	return nil
}

// Strip removes the gate's bookkeeping fields so they are not forwarded.
func (s *Service) Strip(fields map[string]interface{}) {
	if s == nil || !s.config.Enabled || fields == nil {
		return
	}
	delete(fields, s.config.HoneypotField)
	if s.config.LoadedAtField != "" {
		delete(fields, s.config.LoadedAtField)
	}
}

func honeypotFilled(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(val) != ""
	case bool:
		return val
	default:
		return true
	}
}

func epochMillis(v interface{}) (time.Time, bool) {
	var ms int64
	switch val := v.(type) {
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return time.Time{}, false
		}
		ms = int64(f)
	case float64:
		ms = int64(val)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		ms = n
	default:
		return time.Time{}, false
	}
	if ms <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}
