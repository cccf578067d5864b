package errcode

import (
	"errors"

	"tinygo.org/x/drivers/aht20"
)

// Code is a stable error identifier carried through construction results.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Construction codes.
const (
	None                    Code = "none"
	FailureToParseJSON      Code = "failure_to_parse_json"
	NoHWKeyFound            Code = "no_hw_key_found"
	InvalidHWKeyFound       Code = "invalid_hw_key_found"
	MissingRegistryForHW    Code = "missing_registry_for_hw"
	MissingRegistryForEntry Code = "missing_registry_for_entry"
	InvalidEntry            Code = "invalid_entry"
	WrongKind               Code = "wrong_kind"
)

// Device and runtime codes.
const (
	InvalidParams Code = "invalid_params"
	UnknownBus    Code = "unknown_bus"
	SetupFailed   Code = "setup_failed"
	Timeout       Code = "timeout"

	Error Code = "error" // generic fallback
)

// Optional wrapper when we want to keep context and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Wrap builds an *E for op with the given code and cause.
func Wrap(c Code, op string, err error) *E {
	e := &E{C: c, Op: op, Err: err}
	if err != nil {
		e.Msg = err.Error()
	}
	return e
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return None
	}
	var c Code
	if errors.As(err, &c) {
		return c
	}
	type coder interface{ Code() Code }
	var x coder
	if errors.As(err, &x) {
		return x.Code()
	}
	return Error
}

// MapDriverErr maps low-level driver errors to a Code.
func MapDriverErr(err error) Code {
	switch {
	case err == nil:
		return None
	case errors.Is(err, aht20.ErrTimeout):
		return Timeout
	default:
		return Error
	}
}
