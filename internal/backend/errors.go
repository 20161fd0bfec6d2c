package backend

import (
	"errors"
	"fmt"
)

// GenericFailure is reported when the service flags a failure without saying why
const GenericFailure = "the service reported a failure"

// NetworkError means the service could not be reached or the exchange was
// aborted before a response arrived.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServiceError means the service answered with a non-success status
type ServiceError struct {
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("service error: status %d: %s", e.StatusCode, e.Body)
}

// LogicalError means the service answered with a success status but
// reported its own failure in the body.
type LogicalError struct {
	Message string
	Err     error
}

func (e *LogicalError) Error() string {
	return "service failure: " + e.Message
}

func (e *LogicalError) Unwrap() error { return e.Err }

// Kind names the error class for logs, metrics and the journal
func Kind(err error) string {
	var (
		netErr   *NetworkError
		svcErr   *ServiceError
		logicErr *LogicalError
	)
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &netErr):
		return "network"
	case errors.As(err, &svcErr):
		return "service"
	case errors.As(err, &logicErr):
		return "logical"
	default:
		return "unknown"
	}
}

// LogAttrs returns the diagnostic fields of a transport error as slog
// key/value pairs.
func LogAttrs(err error) []any {
	attrs := []any{"kind", Kind(err), "error", err}

	var (
		netErr   *NetworkError
		svcErr   *ServiceError
		logicErr *LogicalError
	)
	switch {
	case errors.As(err, &netErr):
		attrs = append(attrs, "op", netErr.Op)
	case errors.As(err, &svcErr):
		attrs = append(attrs, "status", svcErr.StatusCode, "body", svcErr.Body)
	case errors.As(err, &logicErr):
		attrs = append(attrs, "service_message", logicErr.Message)
	}
	return attrs
}

// StatusCode returns the HTTP status carried by a ServiceError, or 0
func StatusCode(err error) int {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.StatusCode
	}
	return 0
}
