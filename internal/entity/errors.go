package entity

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrKarteNotFound  = errors.New("karte not found")
	ErrDuplicateKarte = errors.New("karte already exists for this user")
)

// UpstreamError wraps a failed call to the record store or messaging API.
// Detail holds the upstream error body when it was JSON, otherwise a string.
type UpstreamError struct {
	Service    string
	StatusCode int
	Detail     any
	Err        error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d: %v", e.Service, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Service, e.Err)
	default:
		return fmt.Sprintf("%s: status %d", e.Service, e.StatusCode)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError builds an UpstreamError from a non-2xx response body.
func NewUpstreamError(service string, status int, body []byte) *UpstreamError {
	var detail any
	if err := json.Unmarshal(body, &detail); err != nil || detail == nil {
		detail = string(body)
	}
	return &UpstreamError{Service: service, StatusCode: status, Detail: detail}
}

// Details returns what should be echoed back to API callers.
func (e *UpstreamError) Details() any {
	if e.Detail != nil {
		return e.Detail
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s returned status %d", e.Service, e.StatusCode)
}
