package submitlead

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lead-gateway/internal/common/airtable"
	"lead-gateway/internal/common/config"
	"lead-gateway/internal/common/errors"
	httpclient "lead-gateway/internal/common/http"
	"lead-gateway/internal/common/leadexec"
	"lead-gateway/internal/common/logger"
	"lead-gateway/internal/common/metrics"
	"lead-gateway/internal/common/observability"
	"lead-gateway/internal/common/recaptcha"
	captchaverify "lead-gateway/internal/workers/auth/captcha-verify"
	crmleadcreate "lead-gateway/internal/workers/crm/crm-lead-create"
	spamcheck "lead-gateway/internal/workers/lead/spam-check"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
)

const (
	Route = "/api/submit-lead"

	HeaderRequestID = "X-Request-ID"

	tracerName = "lead-gateway/submit-lead"
)

type Handler struct {
	config        *Config
	logger        logger.Logger
	service       *Service
	observability *observability.Observability
}

type HandlerOptions struct {
	AppConfig     *config.Config
	CustomConfig  *Config
	Logger        logger.Logger
	HTTPClient    *httpclient.Client
	Redis         redis.Cmdable
	Observability *observability.Observability
}

// NewHandler wires the whole pipeline from the application config.
func NewHandler(opts HandlerOptions) (*Handler, error) {
	if opts.AppConfig == nil {
		return nil, fmt.Errorf("application config is required")
	}

	handlerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := handlerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for submit-lead: %w", err)
	}

	var loggerInstance logger.Logger
	if opts.Logger != nil {
		loggerInstance = opts.Logger
	} else {
		loggerInstance = logger.NewNoOpLogger()
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = httpclient.NewClient(handlerConfig.Timeout)
	}

	spamConfig := spamcheck.ConfigFromAppConfig(opts.AppConfig)
	if err := spamConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for spam-check: %w", err)
	}

	captchaConfig := captchaverify.ConfigFromAppConfig(opts.AppConfig)
	if err := captchaConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for captcha-verify: %w", err)
	}
	captchaDeps := captchaverify.ServiceDependencies{Logger: loggerInstance}
	if captchaConfig.Enabled {
		captchaDeps.Verifier = recaptcha.NewClient(captchaConfig.VerifyURL, captchaConfig.SecretKey, hc)
		if opts.Redis != nil {
			captchaDeps.Replay = captchaverify.NewRedisReplayGuard(opts.Redis, captchaConfig.ReplayTTL)
		}
	}

	leadExecClient := leadexec.NewClient(opts.AppConfig.Credentials.AuthURL, opts.AppConfig.LeadExec.InsertURL, hc)
	credentials, err := leadexec.NewCredentialStrategy(opts.AppConfig.Credentials, leadExecClient)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration for submit-lead: %w", err)
	}

	deps := ServiceDependencies{
		Logger:      loggerInstance,
		Spam:        spamcheck.NewService(spamConfig, loggerInstance),
		Verifier:    captchaverify.NewService(captchaDeps, captchaConfig),
		Credentials: credentials,
		Inserter:    leadExecClient,
	}

	crmConfig := crmleadcreate.ConfigFromAppConfig(opts.AppConfig)
	if err := crmConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for crm-lead-create: %w", err)
	}
	if crmConfig.Enabled {
		client := airtable.NewCRMClient(crmConfig.BaseURL, crmConfig.APIKey, crmConfig.BaseID, crmConfig.TableName, crmConfig.Typecast, hc)
		deps.CRM = crmleadcreate.NewService(crmleadcreate.ServiceDependencies{
			Logger: loggerInstance,
			Client: client,
		}, crmConfig)
	}

	loggerInstance.Info("Submit-lead pipeline configured", map[string]interface{}{
		"classification": handlerConfig.ClassificationEnabled,
		"verification":   captchaConfig.Enabled,
		"replayGuard":    captchaDeps.Replay != nil,
		"spamGate":       spamConfig.Enabled,
		"credentials":    credentials.Name(),
		"crmMirror":      crmConfig.Enabled,
	})

	return &Handler{
		config:        handlerConfig,
		logger:        loggerInstance,
		service:       NewService(deps, handlerConfig),
		observability: opts.Observability,
	}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()
	metrics.SubmissionsActive.Inc()
	defer metrics.SubmissionsActive.Dec()

	ctx, span := otel.Tracer(tracerName).Start(r.Context(), "submit-lead")
	defer span.End()

	requestID := r.Header.Get(HeaderRequestID)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	w.Header().Set(HeaderRequestID, requestID)

	log := h.logger.WithFields(map[string]interface{}{
		"requestId": requestID,
		"traceId":   observability.TraceID(ctx),
	})

	status, outcome := h.handle(ctx, w, r.WithContext(ctx), log)

	metrics.LeadSubmissions.WithLabelValues(outcome).Inc()
	h.observability.RecordRequest(ctx, time.Since(startTime), status)
	log.Info("Submit-lead request completed", map[string]interface{}{
		"status":     status,
		"outcome":    outcome,
		"durationMs": time.Since(startTime).Milliseconds(),
	})
}

func (h *Handler) handle(ctx context.Context, w http.ResponseWriter, r *http.Request, log logger.Logger) (int, string) {
	errorHandler := errors.NewErrorHandler(log)

	if r.Method != http.MethodPost {
		err := errors.NewMethodNotAllowedError(r.Method)
		return errorHandler.Handle(w, err), outcomeFor(err)
	}

	payload, err := h.decode(w, r)
	if err != nil {
		return errorHandler.Handle(w, err), outcomeFor(err)
	}

	result, err := h.service.Submit(ctx, &Request{
		Payload:       payload,
		ClientAddress: ClientAddress(r),
		Logger:        log,
	})
	if err != nil {
		return errorHandler.Handle(w, err), outcomeFor(err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(result.StatusCode)
	_, _ = w.Write(result.Body)

	if isSuccess(result.StatusCode) {
		return result.StatusCode, "submitted"
	}
	return result.StatusCode, "upstream_rejected"
}

// decode reads one JSON object, keeping numbers exact, and checks the
// envelope shape.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (map[string]interface{}, error) {
	body := http.MaxBytesReader(w, r.Body, h.config.MaxBodyBytes)
	defer body.Close()

	decoder := json.NewDecoder(body)
	decoder.UseNumber()

	var payload map[string]interface{}
	if err := decoder.Decode(&payload); err != nil {
		return nil, errors.NewInvalidRequestBodyError(err.Error())
	}
	if payload == nil {
		return nil, errors.NewInvalidRequestBodyError("request body must be a JSON object")
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, errors.NewInvalidRequestBodyError("unexpected data after JSON object")
	}

	result, err := GetEnvelopeSchema().Validate(payload)
	if err != nil {
		return nil, errors.NewInvalidRequestBodyError(err.Error())
	}
	if !result.Valid {
		return nil, errors.NewInvalidRequestBodyError(strings.Join(result.GetErrorMessages(), "; "))
	}

	return payload, nil
}

func outcomeFor(err error) string {
	return strings.ToLower(string(errors.AsStandardError(err).Code))
}
