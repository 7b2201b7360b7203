package crmleadcreate

import (
	"context"
	stderrors "errors"
	"testing"

	"lead-gateway/internal/common/config"
	"lead-gateway/internal/common/errors"
	"lead-gateway/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRecordCreator struct {
	mock.Mock
}

func (m *MockRecordCreator) CreateRecord(ctx context.Context, fields map[string]interface{}) (string, error) {
	args := m.Called(ctx, fields)
	return args.String(0), args.Error(1)
}

func createValidConfig() *Config {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.APIKey = "pat-1"
	cfg.BaseID = "appBase"
	cfg.TableName = "Seller Leads"
	return cfg
}

func newTestService(t *testing.T, client RecordCreator, cfg *Config) *Service {
	return NewService(ServiceDependencies{
		Logger: logger.NewTestLogger(t),
		Client: client,
	}, cfg)
}

func TestService_Execute_FieldMap(t *testing.T) {
	cfg := createValidConfig()
	cfg.FieldMap = []config.FieldMapping{
		{Source: "FirstName", Target: "fldtEUxH8s2VqpUAf"},
		{Source: "Phone", Target: "fldwq6E6dlRVIxcBl"},
		{Source: "LeadTier", Target: "Tier"},
		{Source: "Notes", Target: "fldHAzYkOzSoR8zES"},
	}

	client := new(MockRecordCreator)
	client.On("CreateRecord", mock.Anything, map[string]interface{}{
		"fldtEUxH8s2VqpUAf": "Ada",
		"fldwq6E6dlRVIxcBl": "555-0100",
		"Tier":              1,
	}).Return("recABC", nil).Once()

	output, err := newTestService(t, client, cfg).Execute(context.Background(), &Input{
		Fields: map[string]interface{}{
			"FirstName": "Ada",
			"Phone":     "555-0100",
			"LeadTier":  1,
			"Notes":     "",
			"Email":     "ada@example.com",
		},
	})

	require.NoError(t, err)
	assert.True(t, output.Success)
	assert.Equal(t, "recABC", output.RecordID)
	assert.Equal(t, Provider, output.CRMProvider)
	client.AssertExpectations(t)
}

func TestService_Execute_IdentityMap(t *testing.T) {
	client := new(MockRecordCreator)
	client.On("CreateRecord", mock.Anything, map[string]interface{}{
		"FirstName": "Ada",
		"IPAddress": "203.0.113.9",
	}).Return("recXYZ", nil).Once()

	output, err := newTestService(t, client, createValidConfig()).Execute(context.Background(), &Input{
		Fields: map[string]interface{}{
			"FirstName":      "Ada",
			"IPAddress":      "203.0.113.9",
			"recaptchaToken": "tok-1",
			"Email":          nil,
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "recXYZ", output.RecordID)
	client.AssertExpectations(t)
}

func TestService_Execute_Failure(t *testing.T) {
	client := new(MockRecordCreator)
	client.On("CreateRecord", mock.Anything, mock.Anything).
		Return("", stderrors.New("airtable returned status 422: UNKNOWN_FIELD_NAME")).Once()

	output, err := newTestService(t, client, createValidConfig()).Execute(context.Background(), &Input{
		Fields: map[string]interface{}{"FirstName": "Ada"},
	})

	assert.Nil(t, output)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeCRMSyncFailed))
	assert.Contains(t, err.Error(), "UNKNOWN_FIELD_NAME")
}

func TestService_Execute_Skipped(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		client := new(MockRecordCreator)
		cfg := createValidConfig()
		cfg.Enabled = false

		output, err := newTestService(t, client, cfg).Execute(context.Background(), &Input{
			Fields: map[string]interface{}{"FirstName": "Ada"},
		})

		require.NoError(t, err)
		assert.False(t, output.Success)
		client.AssertNotCalled(t, "CreateRecord", mock.Anything, mock.Anything)
	})

	t.Run("nothing to map", func(t *testing.T) {
		client := new(MockRecordCreator)
		cfg := createValidConfig()
		cfg.FieldMap = []config.FieldMapping{{Source: "Missing", Target: "X"}}

		output, err := newTestService(t, client, cfg).Execute(context.Background(), &Input{
			Fields: map[string]interface{}{"FirstName": "Ada"},
		})

		require.NoError(t, err)
		assert.False(t, output.Success)
		client.AssertNotCalled(t, "CreateRecord", mock.Anything, mock.Anything)
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "disabled", mutate: func(c *Config) { c.Enabled = false; c.APIKey = "" }},
		{name: "missing key", mutate: func(c *Config) { c.APIKey = "" }, wantErr: "api_key"},
		{name: "missing base", mutate: func(c *Config) { c.BaseID = "" }, wantErr: "base_id"},
		{name: "missing table", mutate: func(c *Config) { c.TableName = "" }, wantErr: "table_name"},
		{
			name:    "half mapping",
			mutate:  func(c *Config) { c.FieldMap = []config.FieldMapping{{Source: "FirstName"}} },
			wantErr: "field_map[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := createValidConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
