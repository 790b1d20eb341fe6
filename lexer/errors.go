package lexer

import (
	"fmt"
	"strings"

	"github.com/plzero-lang/plzero/token"
)

// Error is a single lexical diagnostic, tied to the line it was found on.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// NewError builds a lexical diagnostic at the given source line.
func NewError(line int, message string) *Error {
	return &Error{Line: line, Message: message}
}

// ErrorList accumulates lexical diagnostics across an entire source file.
// Analysis never aborts on the first bad token: it keeps scanning and lets
// the caller decide, via HasErrors, whether the lexeme table is trustworthy.
type ErrorList struct {
	Errors []*Error
}

func (el *ErrorList) Add(line int, format string, args ...any) {
	el.Errors = append(el.Errors, NewError(line, fmt.Sprintf(format, args...)))
}

func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

func (el *ErrorList) Error() string {
	var sb strings.Builder
	for _, e := range el.Errors {
		sb.WriteString(e.Error())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Lexeme pairs a raw lexeme with its classified kind, mirroring the
// (lexeme, token_type) pairs the original analyzer stores.
type Lexeme struct {
	Text string
	Kind token.Kind
}
