package analysis

import "fmt"

// FailureKind classifies why analyzing one image failed.
type FailureKind string

const (
	// FailureInvocation covers transport, authentication, and API-level
	// failures calling the model.
	FailureInvocation FailureKind = "model_invocation"
	// FailureValidation covers non-JSON replies and replies that do not
	// match the three-string-field schema.
	FailureValidation FailureKind = "response_validation"
	// FailureDecode covers uploads that are not usable JPEG data.
	FailureDecode FailureKind = "image_decode"
)

// Error is the per-image failure signal. One image failing never
// affects the outcome of any other image.
type Error struct {
	Kind FailureKind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func invocationError(err error) *Error {
	return &Error{Kind: FailureInvocation, Err: err}
}

func validationError(err error) *Error {
	return &Error{Kind: FailureValidation, Err: err}
}

func decodeError(err error) *Error {
	return &Error{Kind: FailureDecode, Err: err}
}
