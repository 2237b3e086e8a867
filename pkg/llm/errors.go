package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrAuth is returned before any network call when no API key is configured.
	ErrAuth = errors.New("perplexity api key is missing, add it in settings")

	ErrUnknownMode = errors.New("unknown analysis mode")
)

// APIError is a non-2xx answer from the provider.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Body)
}

// NetworkError wraps a transport failure (DNS, refused, timeout, cancelled).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// MalformedResponseError means the model answered twice without valid JSON.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed structured response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// IsUpstream reports whether err came from the provider side of a call.
func IsUpstream(err error) bool {
	var apiErr *APIError
	var netErr *NetworkError
	var malformed *MalformedResponseError
	return errors.As(err, &apiErr) || errors.As(err, &netErr) || errors.As(err, &malformed)
}
