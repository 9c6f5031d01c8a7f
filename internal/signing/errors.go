package signing

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
)

// Stable sentinel errors of the signing pipeline. Backend adapters signal
// user cancellation by returning an error wrapping ErrCancelled; the pipeline
// classifies it exactly once, at the backend call boundary.
var (
	// ErrCancelled carries the fixed user-facing message for a user-aborted
	// signing request. It is returned bare, without payload context.
	ErrCancelled = errors.New("signing request cancelled by user")

	// ErrConnectionFailed indicates the backend handle could not be
	// established or was lost.
	ErrConnectionFailed = errors.New("signing backend connection failed")

	// ErrDeviceRejected indicates the device refused the request for a
	// reason other than user cancellation (locked, wrong app, bad state).
	ErrDeviceRejected = errors.New("signing backend rejected the request")

	// ErrAmbiguousMessage is returned when a message request carries both or
	// neither of its text and raw byte forms.
	ErrAmbiguousMessage = errors.New("exactly one of message and message data must be provided")
)

// MissingFieldError reports a required request field that was not provided.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field %q", e.Field)
}

// InvalidTypeError reports a request field whose value could not be
// normalized into its canonical representation.
type InvalidTypeError struct {
	Field  string
	Reason string
}

func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("invalid value for field %q: %s", e.Field, e.Reason)
}

// GenericError wraps a non-cancellation backend failure together with a dump
// of the outgoing payload for diagnosis.
type GenericError struct {
	Cause       error
	PayloadDump string
}

func (e *GenericError) Error() string {
	return fmt.Sprintf("signing backend failed: %v\noutgoing payload:\n%s", e.Cause, e.PayloadDump)
}

func (e *GenericError) Unwrap() error {
	return e.Cause
}

// classifyBackendError maps a backend failure to the stable error taxonomy.
// Cancellation is surfaced as the bare ErrCancelled sentinel; every other
// failure keeps its original message plus the serialized payload.
func classifyBackendError(err error, payload any) error {
	if errors.Is(err, ErrCancelled) {
		return ErrCancelled
	}

	return &GenericError{
		Cause:       err,
		PayloadDump: spew.Sdump(payload),
	}
}
