package directory

import "fmt"

// Kind classifies a directory error so the HTTP layer can map it to a status code.
type Kind string

const (
	KindInvalidInput Kind = "invalid_input" // 400
	KindNotFound     Kind = "not_found"     // 404
	KindConflict     Kind = "conflict"      // 409
	KindInternal     Kind = "internal"      // 500
)

// Client-facing messages.
const (
	MsgMissingFields  = "Missing required fields: username or email"
	MsgInvalidJSON    = "Invalid JSON body"
	MsgDuplicateEmail = "User with this email already exists"
	MsgUserNotFound   = "User not found"
	MsgInternal       = "Internal server error"
)

// Error is returned by every Service operation that fails.
// Message is safe to show to clients, Cause is kept for logging.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// InvalidInput builds a KindInvalidInput error.
func InvalidInput(msg string, cause error) *Error {
	return &Error{Kind: KindInvalidInput, Message: msg, Cause: cause}
}

func notFound() *Error {
	return &Error{Kind: KindNotFound, Message: MsgUserNotFound}
}

func conflict() *Error {
	return &Error{Kind: KindConflict, Message: MsgDuplicateEmail}
}

func internal(op string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: MsgInternal, Cause: fmt.Errorf("%s: %w", op, cause)}
}
