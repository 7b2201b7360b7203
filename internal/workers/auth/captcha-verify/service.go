package captchaverify

import (
	"context"

	"lead-gateway/internal/common/errors"
	"lead-gateway/internal/common/logger"
	"lead-gateway/internal/common/metrics"
)

type Service struct {
	config   *Config
	logger   logger.Logger
	verifier Verifier
	replay   ReplayGuard
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{
		config:   config,
		logger:   log,
		verifier: deps.Verifier,
		replay:   deps.Replay,
	}
}

// Execute runs the verification gate. Rejections are returned as
// StandardErrors together with the Output that caused them. An unreachable
// verification service or replay store never rejects.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if !s.config.Enabled || s.verifier == nil || input == nil || input.Token == "" {
		s.logger.Debug("Verification skipped", map[string]interface{}{
			"enabled":  s.config.Enabled,
			"hasToken": input != nil && input.Token != "",
		})
		return s.finish(&Output{Decision: DecisionSkipped}), nil
	}

	if s.replay != nil {
		fresh, err := s.replay.Claim(ctx, input.Token)
		switch {
		case err != nil:
			s.logger.Warn("Replay guard unavailable, continuing", map[string]interface{}{
				"error": err.Error(),
			})
		case !fresh:
			s.logger.Warn("Verification token replayed", nil)
			return s.finish(&Output{Decision: DecisionReplayed}), errors.NewVerificationReplayedError()
		}
	}

	resp, err := s.verifier.Verify(ctx, input.Token)
	if err != nil {
		stdErr := errors.NewVerificationUnavailableError(err)
		s.logger.Warn("Verification service unavailable, failing open", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"error":     stdErr.Details,
		})
		return s.finish(&Output{Decision: DecisionFailOpen}), nil
	}

	output := &Output{
		Success:    resp.Success,
		Score:      resp.Score,
		ErrorCodes: resp.ErrorCodes,
	}

	fields := map[string]interface{}{
		"success":    resp.Success,
		"errorCodes": resp.ErrorCodes,
		"hostname":   resp.Hostname,
		"action":     resp.Action,
	}
	if resp.Score != nil {
		fields["score"] = *resp.Score
	}
	s.logger.Info("Verification result", fields)

	if !resp.Success {
		output.Decision = DecisionFailed
		return s.finish(output), errors.NewVerificationFailedError(resp.ErrorCodes)
	}

	if resp.Score != nil && *resp.Score < ScoreThreshold {
		output.Decision = DecisionLowScore
		return s.finish(output), errors.NewVerificationLowScoreError(*resp.Score, ScoreThreshold)
	}

	output.Decision = DecisionPassed
	return s.finish(output), nil
}

func (s *Service) finish(output *Output) *Output {
	metrics.VerificationResults.WithLabelValues(string(output.Decision)).Inc()
	return output
}
