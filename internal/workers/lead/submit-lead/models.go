package submitlead

import (
	"context"
	"encoding/json"

	httpclient "lead-gateway/internal/common/http"
	"lead-gateway/internal/common/leadexec"
	"lead-gateway/internal/common/logger"
	captchaverify "lead-gateway/internal/workers/auth/captcha-verify"
	crmleadcreate "lead-gateway/internal/workers/crm/crm-lead-create"
)

// Lead field and property names the gateway reads or writes.
const (
	FieldRecaptchaToken = "recaptchaToken"
	FieldIPAddress      = "IPAddress"
	FieldLeadTier       = "LeadTier"
	FieldLeadPrice      = "LeadPrice"
	FieldMotivation     = "Motivation"

	PropertyTags = "tags"

	UnknownAddress = "Unknown"
)

// Request is one decoded submission. Payload is mutated in place by enrichment.
type Request struct {
	Payload       map[string]interface{}
	ClientAddress string
	Logger        logger.Logger
}

// Result is the response relayed to the caller: the upstream status and a
// JSON body.
type Result struct {
	StatusCode int
	Body       json.RawMessage
}

// rawResponse wraps an upstream body that is not JSON.
type rawResponse struct {
	Raw    string `json:"raw"`
	Status int    `json:"status"`
}

type Verifier interface {
	Execute(ctx context.Context, input *captchaverify.Input) (*captchaverify.Output, error)
}

type SpamGate interface {
	Check(fields map[string]interface{}) error
	Strip(fields map[string]interface{})
}

type LeadInserter interface {
	Insert(ctx context.Context, payload []byte, cred *leadexec.Credential) (*httpclient.Response, error)
}

type CRMMirror interface {
	Execute(ctx context.Context, input *crmleadcreate.Input) (*crmleadcreate.Output, error)
}

type ServiceDependencies struct {
	Logger      logger.Logger
	Spam        SpamGate
	Verifier    Verifier
	Credentials leadexec.CredentialStrategy
	Inserter    LeadInserter
	CRM         CRMMirror
}
