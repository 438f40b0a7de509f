package model

import (
	"errors"
	"fmt"
)

// ErrInvalidInvoiceSource is returned when a VAT invoice request does not
// carry exactly one of image bytes, image URL or PDF.
var ErrInvalidInvoiceSource = errors.New("exactly one of image, url or pdf must be supplied")

// ErrInvalidInvoiceType is returned for an invoice type other than normal or roll.
var ErrInvalidInvoiceType = errors.New("invoice type must be normal or roll")

// AuthenticationError reports a failed access token fetch. Nothing is cached
// when it is returned.
type AuthenticationError struct {
	Err error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("aip authentication failed: %v", e.Err)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// ResourceFetchError reports a failure retrieving a remote document (a PDF
// supplied by URL) before it could be submitted inline.
type ResourceFetchError struct {
	URL        string
	StatusCode int // Zero for transport failures.
	Err        error
}

func (e *ResourceFetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetching resource %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetching resource %s: %v", e.URL, e.Err)
}

func (e *ResourceFetchError) Unwrap() error {
	return e.Err
}

// RemoteServiceError reports a domain endpoint failure at the transport or
// HTTP level. Code and Message are filled from the body when the service
// answered with a parsable error envelope.
type RemoteServiceError struct {
	Operation  string
	StatusCode int
	Code       int
	Message    string
	Err        error
}

func (e *RemoteServiceError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode == 0:
		return fmt.Sprintf("aip %s failed: %v", e.Operation, e.Err)
	case e.Code != 0:
		return fmt.Sprintf("aip %s returned status %d: error %d: %s", e.Operation, e.StatusCode, e.Code, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("aip %s returned status %d: %v", e.Operation, e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("aip %s returned status %d", e.Operation, e.StatusCode)
	}
}

func (e *RemoteServiceError) Unwrap() error {
	return e.Err
}

// ErrorEnvelope is the service-level failure body AIP returns on the success
// transport path. It travels as data inside a result rather than as a raised
// error, but implements error so callers can choose to raise it.
type ErrorEnvelope struct {
	LogID     int64  `json:"logId"`
	ErrorMsg  string `json:"errorMsg"`
	ErrorCode int    `json:"errorCode"`
}

func (e *ErrorEnvelope) Error() string {
	return fmt.Sprintf("aip error %d: %s (log id %d)", e.ErrorCode, e.ErrorMsg, e.LogID)
}
