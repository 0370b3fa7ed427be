package lexer

import (
	"fmt"

	"github.com/risor-io/tape/errors"
	"github.com/risor-io/tape/token"
)

// SyntaxError reports a byte outside the instruction set in Strict mode.
type SyntaxError struct {
	Byte     byte
	Position token.Position
	Source   []byte
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: invalid character %s at offset %d", quoteByte(e.Byte), e.Position.Char)
}

// Offset returns the byte offset of the invalid character.
func (e *SyntaxError) Offset() int {
	return e.Position.Char
}

func (e *SyntaxError) FriendlyErrorMessage() string {
	return errors.NewFormatter(false).Format(e.ToFormatted())
}

// ToFormatted converts the error to a FormattedError for display.
func (e *SyntaxError) ToFormatted() *errors.FormattedError {
	return &errors.FormattedError{
		Code:      errors.E1001,
		Kind:      "syntax error",
		Message:   fmt.Sprintf("invalid character %s", quoteByte(e.Byte)),
		Filename:  e.Position.File,
		Line:      e.Position.LineNumber(),
		Column:    e.Position.ColumnNumber(),
		EndColumn: e.Position.ColumnNumber(),
		SourceLines: []errors.SourceLineEntry{
			{Number: e.Position.LineNumber(), Text: errors.LineText(e.Source, e.Position), IsMain: true},
		},
		Hint: "only ><+-.,[] are allowed; start comments with //",
	}
}

func quoteByte(b byte) string {
	if b >= 0x20 && b < 0x7f {
		return fmt.Sprintf("%q", rune(b))
	}
	return fmt.Sprintf("'\\x%02x'", b)
}
