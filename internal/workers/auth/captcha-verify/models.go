package captchaverify

import (
	"context"

	"lead-gateway/internal/common/logger"
	"lead-gateway/internal/common/recaptcha"
)

// Decision is the gate's verdict, also used as the metrics label.
type Decision string

const (
	DecisionSkipped  Decision = "skipped"
	DecisionPassed   Decision = "passed"
	DecisionFailOpen Decision = "fail_open"
	DecisionFailed   Decision = "failed"
	DecisionLowScore Decision = "low_score"
	DecisionReplayed Decision = "replayed"
)

type Input struct {
	Token string `json:"recaptchaToken"`
}

// Output is the VerificationOutcome plus the decision taken on it.
// It is transient and never stored.
type Output struct {
	Decision   Decision `json:"decision"`
	Success    bool     `json:"success"`
	Score      *float64 `json:"score,omitempty"`
	ErrorCodes []string `json:"errorCodes,omitempty"`
}

// Verifier calls the external verification service.
type Verifier interface {
	Verify(ctx context.Context, token string) (*recaptcha.SiteVerifyResponse, error)
}

// ReplayGuard claims a token once. Claim returns false when it was seen before.
type ReplayGuard interface {
	Claim(ctx context.Context, token string) (bool, error)
}

type ServiceDependencies struct {
	Logger   logger.Logger
	Verifier Verifier
	Replay   ReplayGuard
}
