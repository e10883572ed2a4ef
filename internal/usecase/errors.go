package usecase

import (
	"errors"
	"fmt"
)

const (
	CodeKarteNotFound = "KARTE_NOT_FOUND"
	CodeUpstream      = "UPSTREAM_ERROR"
)

type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// IsNotFound reports whether err means no karte exists for the user.
func IsNotFound(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == CodeKarteNotFound
}

type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var techErr *TechnicalError
	return errors.As(err, &techErr)
}

func errKarteNotFound(userID string) error {
	return &DomainError{
		Code:    CodeKarteNotFound,
		Message: fmt.Sprintf("karte not found for user %s", userID),
	}
}

func upstreamError(op string, err error) error {
	return &TechnicalError{
		Code:    CodeUpstream,
		Message: op + ": " + err.Error(),
		Err:     err,
	}
}
