// Package ast defines the instruction tree produced by the parser.
//
// The tree is built once and never mutated afterwards. A Loop exclusively
// owns its body; nesting is strictly hierarchical.
package ast

import (
	"strings"

	"github.com/risor-io/tape/token"
)

// Node represents a portion of the instruction tree. All nodes have position
// information indicating where they appear in the source code.
type Node interface {
	// Pos returns the position of the first character belonging to the node.
	Pos() token.Position

	// End returns the position of the first character immediately after the node.
	End() token.Position

	// String returns the canonical source text of the node, consisting only
	// of instruction symbols.
	String() string
}

// Instruction is a node that can appear in a Program or a Loop body. The set
// of implementations is closed: *Command and *Loop.
type Instruction interface {
	Node
	instructionNode()
}

// Op identifies one of the six direct-effect instructions.
type Op uint8

const (
	IncrementPointer Op = iota
	DecrementPointer
	IncrementValue
	DecrementValue
	Write
	Read
)

var opNames = [...]string{
	IncrementPointer: "IncrementPointer",
	DecrementPointer: "DecrementPointer",
	IncrementValue:   "IncrementValue",
	DecrementValue:   "DecrementValue",
	Write:            "Write",
	Read:             "Read",
}

var opSymbols = [...]token.Type{
	IncrementPointer: token.INCREMENT_POINTER,
	DecrementPointer: token.DECREMENT_POINTER,
	IncrementValue:   token.INCREMENT_VALUE,
	DecrementValue:   token.DECREMENT_VALUE,
	Write:            token.WRITE,
	Read:             token.READ,
}

// String returns the name of the op.
func (op Op) String() string {
	if int(op) < len(opNames) {
		return opNames[op]
	}
	return "Unknown"
}

// Symbol returns the source token type of the op.
func (op Op) Symbol() token.Type {
	if int(op) < len(opSymbols) {
		return opSymbols[op]
	}
	return ""
}

// OpFor maps a token type to its op. Loop tokens have no op.
func OpFor(t token.Type) (Op, bool) {
	switch t {
	case token.INCREMENT_POINTER:
		return IncrementPointer, true
	case token.DECREMENT_POINTER:
		return DecrementPointer, true
	case token.INCREMENT_VALUE:
		return IncrementValue, true
	case token.DECREMENT_VALUE:
		return DecrementValue, true
	case token.WRITE:
		return Write, true
	case token.READ:
		return Read, true
	}
	return 0, false
}

// Command is a direct-effect instruction such as "+" or ".".
type Command struct {
	OpPos token.Position // position of the symbol
	Op    Op
}

func (x *Command) instructionNode() {}

func (x *Command) Pos() token.Position { return x.OpPos }
func (x *Command) End() token.Position { return x.OpPos.Advance(1) }
func (x *Command) String() string      { return string(x.Op.Symbol()) }

// Loop repeats its body while the current cell is non-zero.
type Loop struct {
	Lbrack token.Position // position of "["
	Body   []Instruction
	Rbrack token.Position // position of "]"
}

func (x *Loop) instructionNode() {}

func (x *Loop) Pos() token.Position { return x.Lbrack }
func (x *Loop) End() token.Position { return x.Rbrack.Advance(1) }

func (x *Loop) String() string {
	var out strings.Builder
	out.WriteString(string(token.LOOP_BEGIN))
	writeInstructions(&out, x.Body)
	out.WriteString(string(token.LOOP_END))
	return out.String()
}

// Program is the root of the tree: the ordered top-level instructions.
type Program struct {
	Instructions []Instruction
}

func (p *Program) Pos() token.Position {
	if len(p.Instructions) > 0 {
		return p.Instructions[0].Pos()
	}
	return token.NoPos
}

func (p *Program) End() token.Position {
	if n := len(p.Instructions); n > 0 {
		return p.Instructions[n-1].End()
	}
	return token.NoPos
}

func (p *Program) String() string {
	var out strings.Builder
	writeInstructions(&out, p.Instructions)
	return out.String()
}

// writeInstructions renders without recursion so that deeply nested trees
// can be printed.
func writeInstructions(out *strings.Builder, instructions []Instruction) {
	type frame struct {
		body []Instruction
		next int
	}
	stack := []frame{{body: instructions}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next >= len(top.body) {
			stack = stack[:len(stack)-1]
			if len(stack) > 0 {
				out.WriteString(string(token.LOOP_END))
			}
			continue
		}
		instr := top.body[top.next]
		top.next++
		switch n := instr.(type) {
		case *Command:
			out.WriteString(string(n.Op.Symbol()))
		case *Loop:
			out.WriteString(string(token.LOOP_BEGIN))
			stack = append(stack, frame{body: n.Body})
		}
	}
}
