package domain

import "fmt"

// ValidationError indicates a request that fails input constraints.
// Surfaced to the caller as a 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// NotFoundError indicates an unknown session id. Surfaced as a 404.
type NotFoundError struct {
	SessionID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("session %s not found", e.SessionID)
}

// InvalidStateError indicates a mutation attempt on a terminal session.
// Surfaced as a 409.
type InvalidStateError struct {
	SessionID string
	Status    SessionStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("session %s is %s and accepts no further feedback", e.SessionID, e.Status)
}

// ExternalServiceError indicates a failed call to the agent platform. The
// session is left unchanged so the caller may retry. Surfaced as a 502
// with a generic message; the cause is logged server-side only.
type ExternalServiceError struct {
	Stage Stage
	Cause error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("agent stage %s failed", e.Stage)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Cause
}
