package errors

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the JSON shape returned to the form on every rejection path.
type ErrorBody struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorHandler renders StandardErrors as HTTP responses.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle writes err to w and returns the status it used.
func (h *ErrorHandler) Handle(w http.ResponseWriter, err error) int {
	stdErr := AsStandardError(err)
	status := HTTPStatus(stdErr.Code)

	fields := map[string]interface{}{
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"status":        status,
		"errorCategory": GetErrorCategory(stdErr.Code),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("Lead submission failed", fields)
	} else {
		h.logger.Warn("Lead submission rejected", fields)
	}

	WriteJSON(w, status, ResponseBody(stdErr))
	return status
}

// ResponseBody builds the caller-visible body for stdErr.
func ResponseBody(stdErr *StandardError) ErrorBody {
	body := ErrorBody{Error: stdErr.Message}
	switch stdErr.Code {
	case ErrCodeAuthenticationFailed:
		if d, ok := stdErr.Metadata["details"]; ok {
			body.Details = d
		}
	case ErrCodeUpstreamTransportFailure, ErrCodeInvalidRequestBody, ErrCodeInternal:
		if stdErr.Details != "" {
			body.Details = stdErr.Details
		}
	}
	return body
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
