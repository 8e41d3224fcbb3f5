package domain

import "errors"

// Error kinds. Match with errors.Is.
var (
	ErrInput      = errors.New("invalid input")
	ErrTransport  = errors.New("provider unreachable")
	ErrProvider   = errors.New("provider error")
	ErrMalformed  = errors.New("malformed provider response")
	ErrNotFound   = errors.New("location not found")
	ErrJobPending = errors.New("provider job still pending")
	ErrConfig     = errors.New("configuration missing")
)

// Error carries one of the kinds above plus diagnostics for the caller.
type Error struct {
	Kind    error
	Msg     string
	Details string // provider body or raw text, may be empty
	Err     error
}

func NewError(kind error, msg, details string) *Error {
	return &Error{Kind: kind, Msg: msg, Details: details}
}

func WrapError(kind error, msg string, err error) *Error {
	e := &Error{Kind: kind, Msg: msg, Err: err}
	if err != nil {
		e.Details = err.Error()
	}
	return e
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Kind != nil {
		msg = e.Kind.Error()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Message returns the human-readable summary without the wrapped cause.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Msg != "" {
			return e.Msg
		}
		if e.Kind != nil {
			return e.Kind.Error()
		}
	}
	return err.Error()
}

// Details returns the diagnostics attached to err, if any.
func Details(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Details
	}
	return ""
}
