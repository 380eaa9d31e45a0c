package decoder

import "errors"

var (
	ErrMissingField            = errors.New("missing field")
	ErrInvalidInput            = errors.New("invalid input")
	ErrUnsupportedManufacturer = errors.New("unsupported manufacturer")
	ErrOutOfRange              = errors.New("out of range")
	ErrResourceUnavailable     = errors.New("resource unavailable")
)

// Error carries a caller-facing message and one of the Err* kinds.
// Err holds the internal cause, if any; it is never shown to clients.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Message is the text safe to return to a client.
func (e *Error) Message() string { return e.Msg }

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// IsClientError reports whether err was caused by the request rather than
// the server.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrUnsupportedManufacturer) ||
		errors.Is(err, ErrOutOfRange)
}
