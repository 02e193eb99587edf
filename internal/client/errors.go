package client

import (
	"errors"
	"fmt"
)

// Request error kinds
const (
	ErrorKindTransport = "transport"
	ErrorKindStatus    = "status"
	ErrorKindDecode    = "decode"
)

// RequestError is returned for every failed backend call
type RequestError struct {
	Kind       string
	Method     string
	Path       string
	StatusCode int
	Cause      error
}

func (e *RequestError) Error() string {
	switch e.Kind {
	case ErrorKindStatus:
		return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
	case ErrorKindDecode:
		return fmt.Sprintf("%s %s: invalid response body: %v", e.Method, e.Path, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Cause)
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}

// StatusCode extracts the HTTP status of a rejected request, 0 otherwise
func StatusCode(err error) int {
	var re *RequestError
	if errors.As(err, &re) && re.Kind == ErrorKindStatus {
		return re.StatusCode
	}
	return 0
}
