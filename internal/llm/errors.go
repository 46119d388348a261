package llm

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// StatusError is returned when the service answers with a non-200 status
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("AI service returned status %d", e.Code)
	}
	return fmt.Sprintf("AI service returned status %d: %s", e.Code, e.Body)
}

// Retryable reports whether a later attempt may succeed
func (e *StatusError) Retryable() bool {
	switch e.Code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// IsRetryable reports whether err is worth another attempt. Status codes
// from OpenRouter and from the Google API client (HTTP or gRPC) are
// classified; anything else, such as a transport failure, is treated as
// transient.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var ie *InitError
	if errors.As(err, &ie) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	var ge *googleapi.Error
	if errors.As(err, &ge) {
		return (&StatusError{Code: ge.Code}).Retryable()
	}
	if st, ok := status.FromError(err); ok {
		return retryableCode(st.Code())
	}
	return true
}

func retryableCode(c codes.Code) bool {
	switch c {
	case codes.Unavailable,
		codes.ResourceExhausted,
		codes.DeadlineExceeded,
		codes.Internal,
		codes.Aborted:
		return true
	default:
		return false
	}
}
