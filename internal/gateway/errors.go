package gateway

import (
	"encoding/json"
	"fmt"
)

// SubmissionError reports a failed submit call. Message is suitable for
// showing to a person.
type SubmissionError struct {
	Message    string
	StatusCode int // 0 when no HTTP response was received
	Err        error
}

func (e *SubmissionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("submission failed (HTTP %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("submission failed: %s", e.Message)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// ErrInvalidResponse indicates the backend returned a body that does not
// match the expected shape.
type ErrInvalidResponse struct {
	Body json.RawMessage
	Err  error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid backend response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }
