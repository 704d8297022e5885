// Package errkind defines the typed error vocabulary shared by every
// component of the analysis engine.
package errkind

import "fmt"

// Kind identifies the category of failure raised by the engine. The set is
// closed and mirrors the four failure modes the pipeline can hit: a bad
// regex at compile time, a timestamp that no parsing strategy can make
// sense of, a source file that cannot be opened, and everything else that
// is a low-level read/parse problem (bad JSON, a missing template
// reference, an I/O error).
type Kind int

const (
	InvalidRegex Kind = iota
	InvalidTimestampFormat
	FileNotFound
	ParseError
)

func (k Kind) String() string {
	switch k {
	case InvalidRegex:
		return "invalid regex"
	case InvalidTimestampFormat:
		return "invalid timestamp format"
	case FileNotFound:
		return "file not found"
	case ParseError:
		return "parse error"
	default:
		return "unknown error"
	}
}

// Error is the engine's error type. It carries enough context (the
// offending input, format, or path) to diagnose a failure offline, per
// spec.md §7.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New builds an *Error for kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Is lets errors.Is match any *Error in the chain whose Kind equals the
// target *Error's Kind, whatever the messages say, e.g.:
//
//	errors.Is(err, errkind.New(errkind.InvalidRegex, ""))
//
// A bare Kind is not an error value and cannot be a target; Matches is
// the shorter check for an unwrapped *Error.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// Matches reports whether err is an *Error of the given kind.
func Matches(err error, kind Kind) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	return e.Kind == kind
}
