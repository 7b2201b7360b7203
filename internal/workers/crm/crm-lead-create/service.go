package crmleadcreate

import (
	"context"
	"time"

	"lead-gateway/internal/common/errors"
	"lead-gateway/internal/common/logger"
)

// Fields never copied into the CRM, even when the field map is empty.
var excludedFields = map[string]bool{
	"recaptchaToken": true,
}

type Service struct {
	config *Config
	logger logger.Logger
	client RecordCreator
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config: config,
		logger: deps.Logger,
		client: deps.Client,
	}
}

// Execute mirrors one enriched lead into the CRM table.
func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	if !s.config.Enabled || s.client == nil {
		return &Output{
			Success: false,
			Message: "CRM mirror disabled",
		}, nil
	}

	record := s.mapFields(input.Fields)
	if len(record) == 0 {
		s.logger.Warn("No lead fields to mirror", map[string]interface{}{
			"provider": Provider,
		})
		return &Output{
			Success:     false,
			Message:     "No mappable lead fields",
			CRMProvider: Provider,
		}, nil
	}

	recordID, err := s.client.CreateRecord(ctx, record)
	if err != nil {
		return nil, errors.NewCRMSyncFailedError(err)
	}

	s.logger.Info("Lead mirrored to CRM", map[string]interface{}{
		"recordId": recordID,
		"provider": Provider,
		"fields":   len(record),
	})

	return &Output{
		Success:     true,
		Message:     "CRM record created successfully",
		RecordID:    recordID,
		CRMProvider: Provider,
		CreatedAt:   time.Now(),
	}, nil
}

// mapFields renames lead fields to CRM columns. With no field map every
// field is copied under its own name. Missing and empty sources are skipped.
func (s *Service) mapFields(fields map[string]interface{}) map[string]interface{} {
	record := make(map[string]interface{})
	if len(s.config.FieldMap) == 0 {
		for k, v := range fields {
			if excludedFields[k] || isEmpty(v) {
				continue
			}
			record[k] = v
		}
		return record
	}

	for _, m := range s.config.FieldMap {
		v, ok := fields[m.Source]
		if !ok || excludedFields[m.Source] || isEmpty(v) {
			continue
		}
		record[m.Target] = v
	}
	return record
}

func isEmpty(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	default:
		return false
	}
}
