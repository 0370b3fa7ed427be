// Package token defines the instruction symbols recognized when lexing source code.
package token

// Type describes the type of a token as a string.
type Type string

// Position points to a particular location in an input byte sequence.
type Position struct {
	Char      int    // byte offset within the file
	LineStart int    // byte offset of the start of the current line
	Line      int    // 0-indexed line number
	Column    int    // 0-indexed column number
	File      string // filename
}

// LineNumber returns the 1-indexed line number for this position in the input.
func (p Position) LineNumber() int {
	return p.Line + 1
}

// ColumnNumber returns the 1-indexed column number for this position in the input.
func (p Position) ColumnNumber() int {
	return p.Column + 1
}

// Advance returns a new Position advanced by n bytes.
// Note: This assumes the advance does not cross line boundaries.
func (p Position) Advance(n int) Position {
	return Position{
		Char:      p.Char + n,
		LineStart: p.LineStart,
		Line:      p.Line,
		Column:    p.Column + n,
		File:      p.File,
	}
}

// IsValid returns true if this position has been set.
func (p Position) IsValid() bool {
	return p.File != "" || p.Line > 0 || p.Column > 0 || p.Char > 0
}

// NoPos is the zero value Position, representing an invalid/unset position.
var NoPos = Position{}

// Token represents one instruction symbol lexed from the input source code.
// A token carries no payload: its Type is its meaning. The position is kept
// only so that errors can point back into the source.
type Token struct {
	Type     Type
	Position Position
}

// End returns the position immediately after the token.
func (t Token) End() Position {
	return t.Position.Advance(1)
}

// String returns the source symbol of the token.
func (t Token) String() string {
	return string(t.Type)
}

// Token types
const (
	INCREMENT_POINTER Type = ">"
	DECREMENT_POINTER Type = "<"
	INCREMENT_VALUE   Type = "+"
	DECREMENT_VALUE   Type = "-"
	WRITE             Type = "."
	READ              Type = ","
	LOOP_BEGIN        Type = "["
	LOOP_END          Type = "]"
)

// Recognized instruction symbols
var symbols = map[byte]Type{
	'>': INCREMENT_POINTER,
	'<': DECREMENT_POINTER,
	'+': INCREMENT_VALUE,
	'-': DECREMENT_VALUE,
	'.': WRITE,
	',': READ,
	'[': LOOP_BEGIN,
	']': LOOP_END,
}

// Lookup returns the token type for the given source byte. The boolean is
// false for any byte outside the eight instruction symbols.
func Lookup(b byte) (Type, bool) {
	typ, ok := symbols[b]
	return typ, ok
}

// Symbol returns the source byte for the token type.
func (t Type) Symbol() byte {
	if len(t) != 1 {
		return 0
	}
	return t[0]
}

// Name returns a descriptive name for the token type.
func (t Type) Name() string {
	switch t {
	case INCREMENT_POINTER:
		return "IncrementPointer"
	case DECREMENT_POINTER:
		return "DecrementPointer"
	case INCREMENT_VALUE:
		return "IncrementValue"
	case DECREMENT_VALUE:
		return "DecrementValue"
	case WRITE:
		return "Write"
	case READ:
		return "Read"
	case LOOP_BEGIN:
		return "LoopBegin"
	case LOOP_END:
		return "LoopEnd"
	}
	return "Illegal"
}
