package kvstore

import (
	"errors"
	"fmt"
)

var (
	errMissingStore = errors.New("store is required")
	// ErrMissingAdapter is returned by constructors that need an Adapter but got nil.
	ErrMissingAdapter = errors.New("kvstore adapter is required")
)

// ServiceError carries a dotted code of the form "<operation>.<reason>" alongside the cause.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

// Code returns the dotted error code.
func (e *ServiceError) Code() string {
	return e.code
}

// NewServiceError builds a ServiceError for the given operation and reason.
func NewServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

// ErrorCode extracts the ServiceError code from err, or returns an empty string.
func ErrorCode(err error) string {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Code()
	}
	return ""
}
