// Package errors defines error codes and the diagnostic formatting shared by
// the lexer, parser and virtual machine.
package errors

import (
	"bytes"
	"fmt"

	"github.com/risor-io/tape/token"
)

// SourceLocation represents a position in source code.
type SourceLocation struct {
	Filename string
	Line     int    // 1-based line number
	Column   int    // 1-based column number
	Source   string // The line of source code
}

// String returns a formatted string representation of the source location.
func (s SourceLocation) String() string {
	if s.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsZero returns true if the location has not been set.
func (s SourceLocation) IsZero() bool {
	return s.Line == 0 && s.Column == 0
}

// NewSourceLocation converts a token position into a 1-based SourceLocation,
// filling in the text of the line when source is available.
func NewSourceLocation(pos token.Position, source []byte) SourceLocation {
	return SourceLocation{
		Filename: pos.File,
		Line:     pos.LineNumber(),
		Column:   pos.ColumnNumber(),
		Source:   LineText(source, pos),
	}
}

// LineText returns the text of the line containing pos, without the
// trailing newline. It returns an empty string if pos is out of range.
func LineText(source []byte, pos token.Position) string {
	if pos.LineStart < 0 || pos.LineStart > len(source) {
		return ""
	}
	line := source[pos.LineStart:]
	if end := bytes.IndexByte(line, '\n'); end >= 0 {
		line = line[:end]
	}
	return string(bytes.TrimRight(line, "\r"))
}

// FriendlyError is an interface for errors that have a human friendly message
// in addition to a the lower level default error message.
type FriendlyError interface {
	Error() string
	FriendlyErrorMessage() string
}

// FormattableError is an interface for errors that can be formatted with
// the enhanced error formatter (with colors, source context, etc).
type FormattableError interface {
	Error() string
	ToFormatted() *FormattedError
}

// FatalError is an interface for errors that may or may not be fatal.
type FatalError interface {
	Error() string
	IsFatal() bool
}

// IsFatal reports whether err should stop execution. Errors that don't
// implement FatalError are considered fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if f, ok := err.(FatalError); ok {
		return f.IsFatal()
	}
	return true
}
