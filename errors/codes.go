package errors

// ErrorCode represents a unique identifier for error types.
// Codes are organized by category:
//   - E1xxx: Lex and parse errors
//   - E3xxx: Runtime errors
type ErrorCode string

const (
	// Lex and parse errors (E1xxx)
	E1001 ErrorCode = "E1001" // Invalid character
	E1002 ErrorCode = "E1002" // Unmatched loop end
	E1003 ErrorCode = "E1003" // Unmatched loop begin
	E1004 ErrorCode = "E1004" // Maximum nesting depth exceeded

	// Runtime errors (E3xxx)
	E3001 ErrorCode = "E3001" // Input exhausted
	E3002 ErrorCode = "E3002" // Output failure
	E3003 ErrorCode = "E3003" // Input failure
	E3004 ErrorCode = "E3004" // Execution halted
)

// codeDescriptions maps error codes to their short descriptions.
var codeDescriptions = map[ErrorCode]string{
	E1001: "invalid character",
	E1002: "unmatched loop end",
	E1003: "unmatched loop begin",
	E1004: "maximum nesting depth exceeded",

	E3001: "input exhausted",
	E3002: "output failure",
	E3003: "input failure",
	E3004: "execution halted",
}

// Description returns the short description for an error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}

// String returns the error code as a string.
func (c ErrorCode) String() string {
	return string(c)
}

// Category returns the error category based on the code prefix.
func (c ErrorCode) Category() string {
	if len(c) < 2 {
		return "unknown"
	}
	switch c[1] {
	case '1':
		return "parse"
	case '3':
		return "runtime"
	default:
		return "unknown"
	}
}
