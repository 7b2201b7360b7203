package crmleadcreate

import (
	"context"
	"time"

	"lead-gateway/internal/common/logger"
)

const Provider = "airtable"

type Input struct {
	Fields map[string]interface{} `json:"fields"`
}

type Output struct {
	Success     bool      `json:"success"`
	Message     string    `json:"message"`
	RecordID    string    `json:"recordId,omitempty"`
	CRMProvider string    `json:"crmProvider,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// RecordCreator is the part of the Airtable client the service needs.
type RecordCreator interface {
	CreateRecord(ctx context.Context, fields map[string]interface{}) (string, error)
}

type ServiceDependencies struct {
	Logger logger.Logger
	Client RecordCreator
}
