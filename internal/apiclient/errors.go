package apiclient

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrServer       = errors.New("server error")
	ErrClient       = errors.New("request rejected")
	ErrNetwork      = errors.New("network error")
)

// HTTPError is a non-2xx response. Redirect is set when the caller should send
// the user back to the login page.
type HTTPError struct {
	Status   int
	Body     string
	Redirect string
	kind     error
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("http %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("http %d", e.Status)
}

func (e *HTTPError) Unwrap() error {
	return e.kind
}

// BusinessError is a 2xx response whose envelope carries a non-zero code.
type BusinessError struct {
	Code int
	Msg  string
}

func (e *BusinessError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("request failed with code %d", e.Code)
	}
	return e.Msg
}

func classify(status int) error {
	switch {
	case status == 401 || status == 403:
		return ErrUnauthorized
	case status >= 500:
		return ErrServer
	default:
		return ErrClient
	}
}
