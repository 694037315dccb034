package net

import (
	"net/http"

	perr "opsroute/internal/platform/errors"
)

// Envelope is the body of every API response
type Envelope struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	CodeName   string         `json:"code_name,omitempty"`
	Error      string         `json:"error,omitempty"`
	Field      string         `json:"field,omitempty"`
	Op         string         `json:"op,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

// Success builds a success envelope; status 0 means 200
func Success(status int, data any, reqID string) (int, Envelope) {
	if status == 0 {
		status = http.StatusOK
	}
	return status, Envelope{
		StatusCode: status,
		Status:     http.StatusText(status),
		RequestID:  reqID,
		Data:       data,
	}
}

// Failure maps err to its status and an error envelope. A nil err is a 200
func Failure(err error, reqID string) (int, Envelope) {
	if err == nil {
		return Success(http.StatusOK, nil, reqID)
	}
	status, w := perr.HTTP(err)
	return status, Envelope{
		StatusCode: status,
		Status:     http.StatusText(status),
		Code:       w.Code,
		CodeName:   w.Code.String(),
		Error:      w.Message,
		Field:      w.Field,
		Op:         w.Op,
		RequestID:  reqID,
	}
}
