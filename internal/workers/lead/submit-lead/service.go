package submitlead

import (
	"context"
	"encoding/json"
	"strconv"

	"lead-gateway/internal/common/errors"
	httpclient "lead-gateway/internal/common/http"
	"lead-gateway/internal/common/leadexec"
	"lead-gateway/internal/common/logger"
	"lead-gateway/internal/common/metrics"
	captchaverify "lead-gateway/internal/workers/auth/captcha-verify"
	crmleadcreate "lead-gateway/internal/workers/crm/crm-lead-create"
	classifylead "lead-gateway/internal/workers/lead/classify-lead"
)

// Service runs the submission pipeline after the request has been decoded:
// spam gate, verification gate, enrichment, credential, insert, relay.
// Every step is a single attempt.
type Service struct {
	config      *Config
	logger      logger.Logger
	spam        SpamGate
	verifier    Verifier
	credentials leadexec.CredentialStrategy
	inserter    LeadInserter
	crm         CRMMirror
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:      config,
		logger:      deps.Logger,
		spam:        deps.Spam,
		verifier:    deps.Verifier,
		credentials: deps.Credentials,
		inserter:    deps.Inserter,
		crm:         deps.CRM,
	}
}

// Submit returns the relayed upstream response, or a StandardError for every
// rejection path.
func (s *Service) Submit(ctx context.Context, req *Request) (*Result, error) {
	log := req.Logger
	if log == nil {
		log = s.logger
	}

	lead := firstLead(req.Payload)
	fields := leadFields(lead)

	if s.spam != nil {
		if err := s.spam.Check(fields); err != nil {
			return nil, err
		}
		s.spam.Strip(fields)
	}

	if s.verifier != nil {
		token, _ := fields[FieldRecaptchaToken].(string)
		if _, err := s.verifier.Execute(ctx, &captchaverify.Input{Token: token}); err != nil {
			return nil, err
		}
	}

	if fields != nil {
		var classification *classifylead.Classification
		if s.config.ClassificationEnabled {
			c := classifylead.Classify(fields)
			classification = &c
			metrics.LeadClassifications.WithLabelValues(strconv.Itoa(int(c.Tier)), c.Motivation).Inc()
			log.Info("Lead classification", map[string]interface{}{
				"tier":       c.Tier,
				"price":      c.Price,
				"motivation": c.Motivation,
				"tags":       c.Tags,
				"reasonText": fields[classifylead.FieldReasonForSelling],
				"status":     fields[classifylead.FieldStatus],
			})
		}
		enrich(lead, fields, req.ClientAddress, classification)
	}
	log.Info("Client address", map[string]interface{}{
		"clientIp": req.ClientAddress,
	})

	body, err := json.Marshal(req.Payload)
	if err != nil {
		return nil, errors.AsStandardError(err)
	}
	log.Debug("Submitting lead", map[string]interface{}{
		"payload": string(body),
	})

	cred, err := s.credentials.Acquire(ctx)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeAuthenticationFailed) {
			return nil, err
		}
		return nil, errors.NewUpstreamTransportFailureError(err)
	}

	resp, err := s.inserter.Insert(ctx, body, cred)
	if err != nil {
		return nil, errors.NewUpstreamTransportFailureError(err)
	}

	log.Info("LeadExec response", map[string]interface{}{
		"status": resp.StatusCode,
		"body":   string(resp.Body),
	})

	if isSuccess(resp.StatusCode) && fields != nil {
		s.mirror(ctx, log, fields)
	}

	return relay(resp), nil
}

// mirror copies the enriched lead to the CRM. Failures are logged only.
func (s *Service) mirror(ctx context.Context, log logger.Logger, fields map[string]interface{}) {
	if s.crm == nil {
		return
	}
	if _, err := s.crm.Execute(ctx, &crmleadcreate.Input{Fields: fields}); err != nil {
		stdErr := errors.AsStandardError(err)
		log.Warn("CRM mirror failed", map[string]interface{}{
			"errorCode": string(stdErr.Code),
			"error":     stdErr.Details,
		})
	}
}

// relay passes a JSON body through unchanged and wraps anything else.
func relay(resp *httpclient.Response) *Result {
	if json.Valid(resp.Body) {
		return &Result{StatusCode: resp.StatusCode, Body: resp.Body}
	}
	wrapped, _ := json.Marshal(rawResponse{Raw: string(resp.Body), Status: resp.StatusCode})
	return &Result{StatusCode: resp.StatusCode, Body: wrapped}
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
