// Package errors provides the gateway's error taxonomy and its mapping onto HTTP responses.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode identifies a rejection or failure path of the submission pipeline.
type ErrorCode string

const (
	ErrCodeMethodNotAllowed     ErrorCode = "METHOD_NOT_ALLOWED"
	ErrCodeInvalidRequestBody   ErrorCode = "INVALID_REQUEST_BODY"
	ErrCodeSpamDetected         ErrorCode = "SPAM_DETECTED"
	ErrCodeSubmissionTooFast    ErrorCode = "SUBMISSION_TOO_FAST"
	ErrCodeVerificationFailed   ErrorCode = "VERIFICATION_FAILED"
	ErrCodeVerificationLowScore ErrorCode = "VERIFICATION_LOW_SCORE"
	ErrCodeVerificationReplayed ErrorCode = "VERIFICATION_REPLAYED"

	// Never surfaced to the caller: verification outages fail open.
	ErrCodeVerificationUnavailable ErrorCode = "VERIFICATION_UNAVAILABLE"

	ErrCodeAuthenticationFailed     ErrorCode = "AUTHENTICATION_FAILED"
	ErrCodeUpstreamTransportFailure ErrorCode = "UPSTREAM_TRANSPORT_FAILURE"
	ErrCodeCRMSyncFailed            ErrorCode = "CRM_SYNC_FAILED"
	ErrCodeInternal                 ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured gateway error. Message is the text
// shown to the caller; Details carries diagnostic detail.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// ==========================
// 2. Error Constructors
// ==========================

func NewMethodNotAllowedError(method string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMethodNotAllowed,
		Message:   "Method not allowed",
		Metadata:  map[string]interface{}{"method": method},
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidRequestBodyError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidRequestBody,
		Message:   "Invalid request body",
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

// NewSpamDetectedError is returned when the honeypot field was filled in.
func NewSpamDetectedError(field string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSpamDetected,
		Message:   "Please complete the form properly.",
		Metadata:  map[string]interface{}{"field": field},
		Timestamp: time.Now().UTC(),
	}
}

// NewSubmissionTooFastError is returned when the form was submitted sooner
// after load than a person could have filled it in.
func NewSubmissionTooFastError(elapsed, minimum time.Duration) *StandardError {
	return &StandardError{
		Code:    ErrCodeSubmissionTooFast,
		Message: "Please take a moment to review your information before submitting.",
		Metadata: map[string]interface{}{
			"elapsedMs": elapsed.Milliseconds(),
			"minimumMs": minimum.Milliseconds(),
		},
		Timestamp: time.Now().UTC(),
	}
}

func NewVerificationFailedError(errorCodes []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeVerificationFailed,
		Message:   "reCAPTCHA verification failed",
		Details:   strings.Join(errorCodes, ","),
		Metadata:  map[string]interface{}{"errorCodes": errorCodes},
		Timestamp: time.Now().UTC(),
	}
}

func NewVerificationLowScoreError(score, threshold float64) *StandardError {
	return &StandardError{
		Code:    ErrCodeVerificationLowScore,
		Message: "Request blocked - suspicious activity detected",
		Metadata: map[string]interface{}{
			"score":     score,
			"threshold": threshold,
		},
		Timestamp: time.Now().UTC(),
	}
}

func NewVerificationReplayedError() *StandardError {
	return &StandardError{
		Code:      ErrCodeVerificationReplayed,
		Message:   "reCAPTCHA token already used",
		Timestamp: time.Now().UTC(),
	}
}

func NewVerificationUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeVerificationUnavailable,
		Message:   "Verification service unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewAuthenticationFailedError carries the upstream "error" member verbatim,
// whatever JSON type it has.
func NewAuthenticationFailedError(upstreamError interface{}) *StandardError {
	e := &StandardError{
		Code:      ErrCodeAuthenticationFailed,
		Message:   "Authentication failed",
		Timestamp: time.Now().UTC(),
	}
	if upstreamError != nil {
		e.Metadata = map[string]interface{}{"details": upstreamError}
	}
	return e
}

func NewUpstreamTransportFailureError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUpstreamTransportFailure,
		Message:   "Failed to submit lead",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewCRMSyncFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCRMSyncFailed,
		Message:   "Failed to mirror lead to CRM",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 3. HTTP Mapping
// ==========================

var httpStatusMapping = map[ErrorCode]int{
	ErrCodeMethodNotAllowed:         http.StatusMethodNotAllowed,
	ErrCodeInvalidRequestBody:       http.StatusBadRequest,
	ErrCodeSpamDetected:             http.StatusBadRequest,
	ErrCodeSubmissionTooFast:        http.StatusBadRequest,
	ErrCodeVerificationFailed:       http.StatusBadRequest,
	ErrCodeVerificationLowScore:     http.StatusBadRequest,
	ErrCodeVerificationReplayed:     http.StatusBadRequest,
	ErrCodeAuthenticationFailed:     http.StatusUnauthorized,
	ErrCodeUpstreamTransportFailure: http.StatusInternalServerError,
}

// HTTPStatus returns the status code a caller sees for the given code.
func HTTPStatus(code ErrorCode) int {
	if status, ok := httpStatusMapping[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// AsStandardError normalizes any error into a StandardError.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// HasCode reports whether err is a StandardError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	return stderrors.As(err, &stdErr) && stdErr.Code == code
}

// GetErrorCategory groups codes for metrics labels.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "VERIFICATION"):
		return "VERIFICATION"
	case code == ErrCodeSpamDetected || code == ErrCodeSubmissionTooFast:
		return "SPAM"
	case code == ErrCodeAuthenticationFailed || strings.HasPrefix(codeStr, "UPSTREAM"):
		return "UPSTREAM"
	case strings.Contains(codeStr, "INVALID") || code == ErrCodeMethodNotAllowed:
		return "REQUEST"
	default:
		return "OTHER"
	}
}
