package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrStatus indicates the service answered with a non-2xx status.
type ErrStatus struct {
	Op         string
	StatusCode int
	Detail     string
}

func (e *ErrStatus) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: server returned %d: %s", e.Op, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s: server returned %d", e.Op, e.StatusCode)
}

// ErrUnavailable indicates the service could not be reached.
type ErrUnavailable struct {
	Op  string
	Err error
}

func (e *ErrUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: service unavailable: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: service unavailable", e.Op)
}

func (e *ErrUnavailable) Unwrap() error { return e.Err }

// ErrDecodeResponse indicates a 2xx response whose body could not be decoded.
type ErrDecodeResponse struct {
	Op  string
	Err error
}

func (e *ErrDecodeResponse) Error() string {
	return fmt.Sprintf("%s: decode response: %v", e.Op, e.Err)
}

func (e *ErrDecodeResponse) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a 404 from the service.
func IsNotFound(err error) bool {
	var se *ErrStatus
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}
