// Package lexer implements the lexical analysis pass: it turns PL/0
// source text into a lexeme table of (lexeme, kind) pairs, reproducing
// the original analyzer's character-class state machine exactly,
// including its preserved quirks (see errors documented inline below).
package lexer

import (
	"fmt"
	"strings"

	"github.com/plzero-lang/plzero/token"
)

const (
	defaultMaxIdentifierLength = 11
	defaultMaxNumberLength     = 5
)

// Lexer scans PL/0 source text one byte at a time, matching the
// get()/peek() character-stream idiom of the original analyzer rather
// than a rune-aware scanner: PL/0 source is plain ASCII.
type Lexer struct {
	input               string
	pos                 int
	line                int
	maxIdentifierLength int
	maxNumberLength     int
	errors              *ErrorList
}

// New creates a Lexer using the specification's default length limits.
func New(input string) *Lexer {
	return NewWithLimits(input, defaultMaxIdentifierLength, defaultMaxNumberLength)
}

// NewWithLimits creates a Lexer with caller-supplied identifier/number
// length limits, wired from the config package's overridable defaults.
func NewWithLimits(input string, maxIdentifierLength, maxNumberLength int) *Lexer {
	return &Lexer{
		input:               input,
		line:                2, // offset matches the original's source-echo + first-line accounting
		maxIdentifierLength: maxIdentifierLength,
		maxNumberLength:     maxNumberLength,
		errors:              &ErrorList{},
	}
}

func (l *Lexer) peek() byte {
	if l.pos < len(l.input) {
		return l.input[l.pos]
	}
	return 0
}

func (l *Lexer) get() byte {
	ch := l.input[l.pos]
	l.pos++
	return ch
}

func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }
func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlnum(b byte) bool { return isAlpha(b) || isDigit(b) }
func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}

// Result is the outcome of a full pass over a source file.
type Result struct {
	Source  string
	Lexemes []Lexeme
	Errors  *ErrorList
}

// Lex runs a full lexical analysis pass with default length limits.
func Lex(source string) *Result {
	return NewWithLimits(source, defaultMaxIdentifierLength, defaultMaxNumberLength).Run()
}

// LexWithLimits runs a full pass with caller-supplied length limits.
func LexWithLimits(source string, maxIdentifierLength, maxNumberLength int) *Result {
	return NewWithLimits(source, maxIdentifierLength, maxNumberLength).Run()
}

// Run scans the entire input and returns the lexeme table plus any
// accumulated diagnostics. It never stops early on an error: every
// malformed token is reported and scanning continues, matching the
// original analyzer's "accumulate, don't abort" behavior.
func (l *Lexer) Run() *Result {
	var lexemes []Lexeme

	for l.peek() != 0 {
		ch := l.get()
		text := string(ch)

		var isWord, isNumber, isWhitespaceOrComment bool

		switch {
		case isAlpha(ch):
			isWord = true
			for isAlnum(l.peek()) {
				text += string(l.get())
			}
			if len(text) > l.maxIdentifierLength {
				l.errors.Add(l.line, "identifier token %s exceeds %d characters", text, l.maxIdentifierLength)
			}

		case isDigit(ch):
			isNumber = true
			if isAlpha(l.peek()) {
				l.errors.Add(l.line, "identifier token %s starts with a number which is not allowed", text)
			}
			for isDigit(l.peek()) {
				text += string(l.get())
			}
			if len(text) > l.maxNumberLength {
				l.errors.Add(l.line, "number token %s exceeds %d characters", text, l.maxNumberLength)
			}

		case isSpace(ch):
			if ch == '\n' {
				l.line++
			}
			isWhitespaceOrComment = true

		case ch == '<':
			switch l.peek() {
			case '=':
				l.get()
				text = "<="
			case '>':
				l.get()
				text = "<>"
			}

		case ch == '>':
			if l.peek() == '=' {
				l.get()
				text = ">="
			}

		case ch == ':':
			if l.peek() == '=' {
				l.get()
				text = ":="
			} else {
				l.errors.Add(l.line, "found : not followed by =")
			}

		case ch == '/':
			if l.peek() == '*' {
				l.get()
				isWhitespaceOrComment = l.skipComment()
			}
		}

		if !isWhitespaceOrComment && text != "" {
			switch {
			case isWord:
				if kind, ok := token.Reserved[text]; ok {
					lexemes = append(lexemes, Lexeme{Text: text, Kind: kind})
				} else {
					lexemes = append(lexemes, Lexeme{Text: text, Kind: token.Ident})
				}
			case isNumber:
				lexemes = append(lexemes, Lexeme{Text: text, Kind: token.Number})
			default:
				if kind, ok := token.Special[text]; ok {
					lexemes = append(lexemes, Lexeme{Text: text, Kind: kind})
				} else {
					l.errors.Add(l.line, "unknown symbol type found: %s", text)
				}
			}
		}
	}

	return &Result{Source: l.input, Lexemes: lexemes, Errors: l.errors}
}

// skipComment consumes a /* ... */ block comment, having already
// consumed the opening "/*". It reports an unterminated-comment
// diagnostic if EOF is reached first. Newlines inside a comment do not
// advance the line counter, matching the original analyzer — only the
// top-level whitespace branch does that.
func (l *Lexer) skipComment() bool {
	for l.peek() != 0 {
		ch := l.get()
		if ch == '*' && l.peek() == '/' {
			l.get()
			return true
		}
	}
	l.errors.Add(l.line, "comment started but never closed")
	return true
}

// Listing renders the three-section textual report the original
// analyzer writes: the echoed source, the lexeme table, and the flat
// lexeme list (kind numbers, with lexeme text for idents/numbers).
func (r *Result) Listing() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Source Program: \n%s\n\n", r.Source)

	fmt.Fprintf(&sb, "\nLexeme Table:\n%-10s%-10s\n", "lexeme", "token type")
	for _, lx := range r.Lexemes {
		fmt.Fprintf(&sb, "%-10s%-10d\n", lx.Text, int(lx.Kind))
	}

	sb.WriteString("\nLexeme List:\n")
	for _, lx := range r.Lexemes {
		fmt.Fprintf(&sb, "%d ", int(lx.Kind))
		if lx.Kind == token.Ident || lx.Kind == token.Number {
			fmt.Fprintf(&sb, "%s ", lx.Text)
		}
	}

	return sb.String()
}
