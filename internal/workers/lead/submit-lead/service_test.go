package submitlead

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"

	"lead-gateway/internal/common/errors"
	httpclient "lead-gateway/internal/common/http"
	"lead-gateway/internal/common/leadexec"
	"lead-gateway/internal/common/logger"
	captchaverify "lead-gateway/internal/workers/auth/captcha-verify"
	crmleadcreate "lead-gateway/internal/workers/crm/crm-lead-create"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mocks
// ==========================

type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Execute(ctx context.Context, input *captchaverify.Input) (*captchaverify.Output, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*captchaverify.Output), args.Error(1)
}

type MockSpamGate struct {
	mock.Mock
}

func (m *MockSpamGate) Check(fields map[string]interface{}) error {
	return m.Called(fields).Error(0)
}

func (m *MockSpamGate) Strip(fields map[string]interface{}) {
	m.Called(fields)
}

type MockCredentials struct {
	mock.Mock
}

func (m *MockCredentials) Acquire(ctx context.Context) (*leadexec.Credential, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leadexec.Credential), args.Error(1)
}

func (m *MockCredentials) Name() string { return "mock" }

type MockInserter struct {
	mock.Mock
}

func (m *MockInserter) Insert(ctx context.Context, payload []byte, cred *leadexec.Credential) (*httpclient.Response, error) {
	args := m.Called(ctx, payload, cred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*httpclient.Response), args.Error(1)
}

type MockCRM struct {
	mock.Mock
}

func (m *MockCRM) Execute(ctx context.Context, input *crmleadcreate.Input) (*crmleadcreate.Output, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crmleadcreate.Output), args.Error(1)
}

// ==========================
// Test Helpers
// ==========================

type testDeps struct {
	verifier    *MockVerifier
	credentials *MockCredentials
	inserter    *MockInserter
	crm         *MockCRM
}

var bearer = &leadexec.Credential{Header: leadexec.HeaderAuthorization, Value: "Bearer tok"}

func newTestService(t *testing.T) (*Service, *testDeps) {
	d := &testDeps{
		verifier:    new(MockVerifier),
		credentials: new(MockCredentials),
		inserter:    new(MockInserter),
		crm:         new(MockCRM),
	}
	s := NewService(ServiceDependencies{
		Logger:      logger.NewTestLogger(t),
		Verifier:    d.verifier,
		Credentials: d.credentials,
		Inserter:    d.inserter,
		CRM:         d.crm,
	}, DefaultConfig())
	return s, d
}

func createPayload(fields map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"leads": []interface{}{
			map[string]interface{}{"fields": fields},
		},
	}
}

func passed() *captchaverify.Output {
	return &captchaverify.Output{Decision: captchaverify.DecisionPassed, Success: true}
}

// ==========================
// Submit Tests
// ==========================

func TestService_Submit_Success(t *testing.T) {
	s, d := newTestService(t)

	d.verifier.On("Execute", mock.Anything, &captchaverify.Input{Token: "tok-1"}).Return(passed(), nil).Once()
	d.credentials.On("Acquire", mock.Anything).Return(bearer, nil).Once()

	var sent map[string]interface{}
	d.inserter.On("Insert", mock.Anything, mock.Anything, bearer).
		Run(func(args mock.Arguments) {
			require.NoError(t, json.Unmarshal(args.Get(1).([]byte), &sent))
		}).
		Return(&httpclient.Response{StatusCode: 201, Body: []byte(`{"LeadID":42}`)}, nil).Once()
	d.crm.On("Execute", mock.Anything, mock.Anything).Return(&crmleadcreate.Output{Success: true}, nil).Once()

	result, err := s.Submit(context.Background(), &Request{
		Payload: createPayload(map[string]interface{}{
			"ReasonForSelling": "Foreclosure",
			"State":            "tx",
			"recaptchaToken":   "tok-1",
		}),
		ClientAddress: "203.0.113.5",
	})

	require.NoError(t, err)
	assert.Equal(t, 201, result.StatusCode)
	assert.JSONEq(t, `{"LeadID":42}`, string(result.Body))

	lead := sent["leads"].([]interface{})[0].(map[string]interface{})
	fields := lead["fields"].(map[string]interface{})
	assert.Equal(t, "203.0.113.5", fields["IPAddress"])
	assert.Equal(t, float64(1), fields["LeadTier"])
	assert.Equal(t, float64(90), fields["LeadPrice"])
	assert.Equal(t, "FORECLOSURE", fields["Motivation"])
	assert.Equal(t, "tok-1", fields["recaptchaToken"])
	assert.Equal(t, []interface{}{"TIER_1_DISTRESS", "STATE_TX", "MOTIVATION_FORECLOSURE", "PRICE_90"},
		lead["properties"].(map[string]interface{})["tags"])

	d.verifier.AssertExpectations(t)
	d.credentials.AssertExpectations(t)
	d.inserter.AssertExpectations(t)
	d.crm.AssertExpectations(t)
}

func TestService_Submit_Relay(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantBody   string
		wantMirror bool
	}{
		{name: "json body", status: 200, body: `{"ok":true}`, wantBody: `{"ok":true}`, wantMirror: true},
		{name: "json array", status: 200, body: `[1,2]`, wantBody: `[1,2]`, wantMirror: true},
		{name: "text body", status: 200, body: `Lead accepted`, wantBody: `{"raw":"Lead accepted","status":200}`, wantMirror: true},
		{name: "empty body", status: 202, body: ``, wantBody: `{"raw":"","status":202}`, wantMirror: true},
		{name: "upstream 4xx json", status: 422, body: `{"error":"bad lead"}`, wantBody: `{"error":"bad lead"}`},
		{name: "upstream 5xx text", status: 502, body: `Bad Gateway`, wantBody: `{"raw":"Bad Gateway","status":502}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, d := newTestService(t)
			d.verifier.On("Execute", mock.Anything, mock.Anything).Return(passed(), nil)
			d.credentials.On("Acquire", mock.Anything).Return(bearer, nil)
			d.inserter.On("Insert", mock.Anything, mock.Anything, bearer).
				Return(&httpclient.Response{StatusCode: tt.status, Body: []byte(tt.body)}, nil).Once()
			d.crm.On("Execute", mock.Anything, mock.Anything).Return(&crmleadcreate.Output{Success: true}, nil)

			result, err := s.Submit(context.Background(), &Request{
				Payload:       createPayload(map[string]interface{}{"FirstName": "Ada"}),
				ClientAddress: "Unknown",
			})

			require.NoError(t, err)
			assert.Equal(t, tt.status, result.StatusCode)
			assert.JSONEq(t, tt.wantBody, string(result.Body))
			if tt.wantMirror {
				d.crm.AssertNumberOfCalls(t, "Execute", 1)
			} else {
				d.crm.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestService_Submit_VerificationRejected(t *testing.T) {
	s, d := newTestService(t)
	d.verifier.On("Execute", mock.Anything, mock.Anything).
		Return(&captchaverify.Output{Decision: captchaverify.DecisionLowScore}, errors.NewVerificationLowScoreError(0.3, 0.5)).Once()

	result, err := s.Submit(context.Background(), &Request{
		Payload: createPayload(map[string]interface{}{"recaptchaToken": "tok-1"}),
	})

	assert.Nil(t, result)
	assert.True(t, errors.HasCode(err, errors.ErrCodeVerificationLowScore))
	d.credentials.AssertNotCalled(t, "Acquire", mock.Anything)
	d.inserter.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Submit_CredentialErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode errors.ErrorCode
	}{
		{
			name:     "no token",
			err:      errors.NewAuthenticationFailedError("invalid_client"),
			wantCode: errors.ErrCodeAuthenticationFailed,
		},
		{
			name:     "transport failure",
			err:      stderrors.New("leadexec_auth request failed: connection refused"),
			wantCode: errors.ErrCodeUpstreamTransportFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, d := newTestService(t)
			d.verifier.On("Execute", mock.Anything, mock.Anything).Return(passed(), nil)
			d.credentials.On("Acquire", mock.Anything).Return(nil, tt.err).Once()

			result, err := s.Submit(context.Background(), &Request{
				Payload: createPayload(map[string]interface{}{"FirstName": "Ada"}),
			})

			assert.Nil(t, result)
			assert.True(t, errors.HasCode(err, tt.wantCode))
			d.inserter.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestService_Submit_InsertTransportFailure(t *testing.T) {
	s, d := newTestService(t)
	d.verifier.On("Execute", mock.Anything, mock.Anything).Return(passed(), nil)
	d.credentials.On("Acquire", mock.Anything).Return(bearer, nil)
	d.inserter.On("Insert", mock.Anything, mock.Anything, bearer).
		Return(nil, stderrors.New("leadexec_insert request failed: timeout")).Once()

	result, err := s.Submit(context.Background(), &Request{
		Payload: createPayload(map[string]interface{}{"FirstName": "Ada"}),
	})

	assert.Nil(t, result)
	require.True(t, errors.HasCode(err, errors.ErrCodeUpstreamTransportFailure))
	assert.Contains(t, errors.AsStandardError(err).Details, "timeout")
	d.crm.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestService_Submit_CRMFailureIsIgnored(t *testing.T) {
	s, d := newTestService(t)
	d.verifier.On("Execute", mock.Anything, mock.Anything).Return(passed(), nil)
	d.credentials.On("Acquire", mock.Anything).Return(bearer, nil)
	d.inserter.On("Insert", mock.Anything, mock.Anything, bearer).
		Return(&httpclient.Response{StatusCode: 200, Body: []byte(`{}`)}, nil)
	d.crm.On("Execute", mock.Anything, mock.Anything).
		Return(nil, errors.NewCRMSyncFailedError(stderrors.New("airtable down"))).Once()

	result, err := s.Submit(context.Background(), &Request{
		Payload: createPayload(map[string]interface{}{"FirstName": "Ada"}),
	})

	require.NoError(t, err)
	assert.Equal(t, 200, result.StatusCode)
	d.crm.AssertExpectations(t)
}

func TestService_Submit_NoLeadFields(t *testing.T) {
	s, d := newTestService(t)
	d.verifier.On("Execute", mock.Anything, &captchaverify.Input{}).
		Return(&captchaverify.Output{Decision: captchaverify.DecisionSkipped}, nil).Once()
	d.credentials.On("Acquire", mock.Anything).Return(bearer, nil)
	d.inserter.On("Insert", mock.Anything, []byte(`{"campaign":"x"}`), bearer).
		Return(&httpclient.Response{StatusCode: 200, Body: []byte(`{}`)}, nil).Once()

	_, err := s.Submit(context.Background(), &Request{
		Payload:       map[string]interface{}{"campaign": "x"},
		ClientAddress: "203.0.113.5",
	})

	require.NoError(t, err)
	d.inserter.AssertExpectations(t)
	d.crm.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestService_Submit_ClassificationDisabled(t *testing.T) {
	s, d := newTestService(t)
	s.config.ClassificationEnabled = false
	d.verifier.On("Execute", mock.Anything, mock.Anything).Return(passed(), nil)
	d.credentials.On("Acquire", mock.Anything).Return(bearer, nil)
	d.inserter.On("Insert", mock.Anything, []byte(`{"leads":[{"fields":{"IPAddress":"203.0.113.5","ReasonForSelling":"Inherited"}}]}`), bearer).
		Return(&httpclient.Response{StatusCode: 200, Body: []byte(`{}`)}, nil).Once()
	d.crm.On("Execute", mock.Anything, mock.Anything).Return(&crmleadcreate.Output{}, nil)

	_, err := s.Submit(context.Background(), &Request{
		Payload:       createPayload(map[string]interface{}{"ReasonForSelling": "Inherited"}),
		ClientAddress: "203.0.113.5",
	})

	require.NoError(t, err)
	d.inserter.AssertExpectations(t)
}

func TestService_Submit_SpamGate(t *testing.T) {
	t.Run("rejection stops the pipeline", func(t *testing.T) {
		s, d := newTestService(t)
		spam := new(MockSpamGate)
		spam.On("Check", mock.Anything).Return(errors.NewSpamDetectedError("website")).Once()
		s.spam = spam

		_, err := s.Submit(context.Background(), &Request{
			Payload: createPayload(map[string]interface{}{"website": "spam"}),
		})

		assert.True(t, errors.HasCode(err, errors.ErrCodeSpamDetected))
		d.verifier.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
		d.credentials.AssertNotCalled(t, "Acquire", mock.Anything)
		spam.AssertNotCalled(t, "Strip", mock.Anything)
	})

	t.Run("pass strips gate fields", func(t *testing.T) {
		s, d := newTestService(t)
		spam := new(MockSpamGate)
		spam.On("Check", mock.Anything).Return(nil).Once()
		spam.On("Strip", mock.Anything).Once()
		s.spam = spam
		d.verifier.On("Execute", mock.Anything, mock.Anything).Return(passed(), nil)
		d.credentials.On("Acquire", mock.Anything).Return(bearer, nil)
		d.inserter.On("Insert", mock.Anything, mock.Anything, bearer).
			Return(&httpclient.Response{StatusCode: 200, Body: []byte(`{}`)}, nil)
		d.crm.On("Execute", mock.Anything, mock.Anything).Return(&crmleadcreate.Output{}, nil)

		_, err := s.Submit(context.Background(), &Request{
			Payload: createPayload(map[string]interface{}{"website": ""}),
		})

		require.NoError(t, err)
		spam.AssertExpectations(t)
	})
}
