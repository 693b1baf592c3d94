package checkout

import (
	"fmt"
	"strings"
)

// ValidationError reports missing or malformed fields on the current step.
// It is recoverable: the user corrects the input and advances again.
type ValidationError struct {
	MissingFields []string
	Messages      []string
}

func (e *ValidationError) Error() string {
	if len(e.Messages) > 0 {
		return strings.Join(e.Messages, "; ")
	}
	return fmt.Sprintf("missing fields: %s", strings.Join(e.MissingFields, ", "))
}

// SubmissionError reports a failed order creation. The flow stays on the same
// step showing a rejected confirmation; the user may retry.
type SubmissionError struct {
	Message string
	Cause   error
}

func (e *SubmissionError) Error() string {
	return e.Message
}

func (e *SubmissionError) Unwrap() error {
	return e.Cause
}
