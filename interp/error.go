package interp

import "fmt"

// Kind classifies why Execute failed. The set is closed and mirrors the
// dynamic error taxonomy: every RTL evaluation failure is exactly one of
// these.
type Kind string

const (
	Unsupported      Kind = "unsupported"       // e.g. a for-loop, or an unknown intrinsic
	UnknownReference Kind = "unknown-reference"  // a name that resolves to nothing
	IndexOutOfRange  Kind = "index-out-of-range" // file/vector/memory index out of bounds
	TypeMismatch     Kind = "type-mismatch"      // an lvalue that isn't a register-like location
	ArithmeticTrap   Kind = "arithmetic-trap"    // division/modulo by zero
)

// Error is the single typed error Execute returns on failure. It carries
// enough context (Kind, a message, and the offending node/name) for a
// caller — notably the validator's dry-run — to turn it into a diagnostic.
type Error struct {
	Kind    Kind
	Message string
	Name    string // offending register/field/function name, when applicable
}

func (e *Error) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Name)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func errUnsupported(name, format string, args ...any) *Error {
	return &Error{Kind: Unsupported, Message: fmt.Sprintf(format, args...), Name: name}
}

func errUnknown(name, format string, args ...any) *Error {
	return &Error{Kind: UnknownReference, Message: fmt.Sprintf(format, args...), Name: name}
}

func errRange(name, format string, args ...any) *Error {
	return &Error{Kind: IndexOutOfRange, Message: fmt.Sprintf(format, args...), Name: name}
}

func errType(name, format string, args ...any) *Error {
	return &Error{Kind: TypeMismatch, Message: fmt.Sprintf(format, args...), Name: name}
}

func errTrap(name, format string, args ...any) *Error {
	return &Error{Kind: ArithmeticTrap, Message: fmt.Sprintf(format, args...), Name: name}
}
