// Package telemetry is the read-only client for the external telemetry API.
package telemetry

import "fmt"

// NotFoundError is returned for 404 responses: an unknown operation, call or
// pattern group.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Key)
}

// ServerError is returned for any other non-2xx response or transport
// failure. It is always retryable by the user, never automatically.
type ServerError struct {
	Status int // 0 for transport failures
	Err    error
}

func (e *ServerError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("telemetry API returned status %d", e.Status)
	}
	return fmt.Sprintf("telemetry API unreachable: %v", e.Err)
}

func (e *ServerError) Unwrap() error {
	return e.Err
}
