// Package sqlerr defines the error taxonomy surfaced by the ORM core:
// misuse, schema, SQL (engine) and not-found errors, plus the MySQL
// errno-to-message mapping used to canonicalise engine errors.
package sqlerr

import (
	"errors"
	"fmt"
)

// Kind distinguishes the four error categories the core can raise.
type Kind int

const (
	// KindMisuse is a bad call shape caught before any SQL is dispatched.
	KindMisuse Kind = iota
	// KindSchema is an unknown field or reserved-name violation.
	KindSchema
	// KindSQL wraps an engine error.
	KindSQL
	// KindNotFound is raised by indexed access past the end of a result.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindMisuse:
		return "misuse"
	case KindSchema:
		return "schema"
	case KindSQL:
		return "sql"
	case KindNotFound:
		return "not-found"
	default:
		return "unknown"
	}
}

// Error is the single error type raised by every layer of the core. Kind
// selects the category; Err, when set, is the wrapped cause (typically an
// engine error for KindSQL).
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Misuse reports a bad call shape: a multi-key Q leaf, a type mismatch in
// aggregate/annotate/order_by, mismatched models across +/|/&, an empty
// aggregate call or an unsupported index type.
func Misuse(format string, args ...any) error {
	return &Error{Kind: KindMisuse, Msg: fmt.Sprintf(format, args...)}
}

// Schema reports an unknown field, a path segment absent from the owning
// model, a reserved name, or a name containing the reserved separator.
func Schema(format string, args ...any) error {
	return &Error{Kind: KindSchema, Msg: fmt.Sprintf(format, args...)}
}

// NotFound reports that an indexed or get() lookup found nothing.
func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

// errnoMessages locks the six engine error codes spec.md §7/§9 names.
// Codes 1054, 1062 and 1146 pass the engine message through verbatim;
// -1, 1064 and 1136 are canonicalised. Every other errno is pass-through,
// per the spec's "SQL error code table is incomplete" open question.
var errnoMessages = map[int]func(engineMsg string) string{
	-1:   func(string) string { return "unread result found inside of cursor" },
	1054: func(m string) string { return m },
	1062: func(m string) string { return m },
	1064: func(string) string { return "syntax error" },
	1136: func(string) string { return "column count does not match value count" },
	1146: func(m string) string { return m },
}

// SQL wraps an engine error, mapping errno through the curated message
// table when present and passing the engine's own message through
// unmodified for every other code.
func SQL(errno int, engineMsg string, cause error) error {
	msg := engineMsg
	if f, ok := errnoMessages[errno]; ok {
		msg = f(engineMsg)
	}
	return &Error{Kind: KindSQL, Msg: fmt.Sprintf("errno %d: %s", errno, msg), Err: cause}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return Is(err, KindNotFound) }
