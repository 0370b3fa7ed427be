// Package lexer converts raw source bytes into instruction tokens.
//
// Two policies are supported. In Permissive mode every byte outside the
// eight instruction symbols is dropped and lexing never fails. In Strict
// mode whitespace and "//" line comments are skipped and any other byte is
// reported as a SyntaxError.
package lexer

import (
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/risor-io/tape/errors"
	"github.com/risor-io/tape/token"
)

// Mode selects how bytes outside the instruction set are handled.
type Mode int

const (
	// Permissive drops unrecognized bytes; they act as comments.
	Permissive Mode = iota
	// Strict rejects unrecognized bytes other than whitespace and "//" comments.
	Strict
)

// String returns the name of the mode.
func (m Mode) String() string {
	switch m {
	case Permissive:
		return "permissive"
	case Strict:
		return "strict"
	}
	return "unknown"
}

// Option is a configuration function for a Lexer.
type Option func(*Lexer)

// WithMode sets the lexing policy. The default is Permissive.
func WithMode(mode Mode) Option {
	return func(l *Lexer) {
		l.mode = mode
	}
}

// WithFilename sets the file name recorded in token positions.
func WithFilename(filename string) Option {
	return func(l *Lexer) {
		l.filename = filename
	}
}

// Lexer scans source bytes one token at a time.
type Lexer struct {
	input     []byte
	mode      Mode
	filename  string
	position  int // offset of the next byte to read
	line      int // 0-indexed line of the next byte
	lineStart int // offset of the start of the current line
}

// New returns a Lexer for the given input.
func New(input []byte, options ...Option) *Lexer {
	l := &Lexer{input: input}
	for _, opt := range options {
		opt(l)
	}
	return l
}

// SetFilename sets the file name recorded in token positions.
func (l *Lexer) SetFilename(filename string) {
	l.filename = filename
}

// Filename returns the file name recorded in token positions.
func (l *Lexer) Filename() string {
	return l.filename
}

// Mode returns the lexing policy in use.
func (l *Lexer) Mode() Mode {
	return l.mode
}

// Source returns the input being lexed.
func (l *Lexer) Source() []byte {
	return l.input
}

// GetLineText returns the source line containing the given token.
func (l *Lexer) GetLineText(tok token.Token) string {
	return errors.LineText(l.input, tok.Position)
}

// Next returns the next token. It returns io.EOF once the input is
// exhausted. In Strict mode an unrecognized byte yields a *SyntaxError; the
// offending byte is consumed so that lexing may continue afterwards.
func (l *Lexer) Next() (token.Token, error) {
	for l.position < len(l.input) {
		pos := l.currentPosition()
		ch := l.input[l.position]

		if typ, ok := token.Lookup(ch); ok {
			l.advance()
			return token.Token{Type: typ, Position: pos}, nil
		}
		if l.mode == Permissive {
			l.advance()
			continue
		}
		if isWhitespace(ch) {
			l.advance()
			continue
		}
		if ch == '/' && l.peek() == '/' {
			l.skipComment()
			continue
		}
		l.advance()
		return token.Token{}, &SyntaxError{Byte: ch, Position: pos, Source: l.input}
	}
	return token.Token{}, io.EOF
}

// Lex returns all remaining tokens, stopping at the first error.
func (l *Lexer) Lex() ([]token.Token, error) {
	tokens := make([]token.Token, 0, len(l.input))
	for {
		tok, err := l.Next()
		if err == io.EOF {
			return tokens, nil
		}
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
}

// Tokenize lexes the whole input in one call.
func Tokenize(input []byte, options ...Option) ([]token.Token, error) {
	return New(input, options...).Lex()
}

// Validate lexes the input in Strict mode and reports every invalid byte,
// not just the first. The returned error is a *multierror.Error whose
// entries are *SyntaxError values, or nil if the input is clean.
func Validate(input []byte, options ...Option) error {
	l := New(input, append(options[:len(options):len(options)], WithMode(Strict))...)
	var result *multierror.Error
	for {
		_, err := l.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (l *Lexer) currentPosition() token.Position {
	return token.Position{
		Char:      l.position,
		LineStart: l.lineStart,
		Line:      l.line,
		Column:    l.position - l.lineStart,
		File:      l.filename,
	}
}

func (l *Lexer) advance() {
	if l.input[l.position] == '\n' {
		l.line++
		l.lineStart = l.position + 1
	}
	l.position++
}

func (l *Lexer) peek() byte {
	if l.position+1 >= len(l.input) {
		return 0
	}
	return l.input[l.position+1]
}

// skipComment consumes a "//" comment up to, but not including, the newline.
func (l *Lexer) skipComment() {
	for l.position < len(l.input) && l.input[l.position] != '\n' {
		l.advance()
	}
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\v' || ch == '\f'
}
