package llmclient

import "fmt"

// TimeoutError means the connect or read deadline elapsed.
type TimeoutError struct {
	Phase string // "connect" or "read"
}

func (e *TimeoutError) Error() string { return fmt.Sprintf("llmclient: %s timeout", e.Phase) }

// HTTPError means the LLM host returned a non-2xx status.
type HTTPError struct {
	Status int
}

func (e *HTTPError) Error() string { return fmt.Sprintf("llmclient: http status %d", e.Status) }

// NetworkError wraps a lower-level transport failure (DNS, connection
// refused, connection reset).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("llmclient: network error: %v", e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// SerializationError means the request or response body could not be
// encoded/decoded as the expected JSON shape.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("llmclient: serialization error: %v", e.Err)
}
func (e *SerializationError) Unwrap() error { return e.Err }

// APIError means the host responded with a well-formed error payload
// (a refusal or an application-level failure, not an HTTP status).
type APIError struct {
	Message string
}

func (e *APIError) Error() string { return fmt.Sprintf("llmclient: api error: %s", e.Message) }

// isTransient reports whether an error kind is eligible for retry:
// network errors (timeouts included) and HTTP 5xx only, never 4xx.
func isTransient(err error) bool {
	switch e := err.(type) {
	case *NetworkError:
		return true
	case *TimeoutError:
		return true
	case *HTTPError:
		return e.Status >= 500
	default:
		return false
	}
}
