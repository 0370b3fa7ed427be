// Package parser builds the instruction tree for a program.
//
// A parser is created by calling New() with a token sequence as input. The
// parser should then be used only once, by calling parser.Parse() to produce
// the tree. Bracket pairs are resolved into nested loops with an explicit
// stack, so nesting depth is bounded only by memory unless WithMaxDepth is
// used.
package parser

import (
	"context"

	"github.com/risor-io/tape/ast"
	"github.com/risor-io/tape/errors"
	"github.com/risor-io/tape/lexer"
	"github.com/risor-io/tape/token"
)

// Parse the provided tokens and return the program tree.
func Parse(ctx context.Context, tokens []token.Token, options ...Option) (*ast.Program, error) {
	return New(tokens, options...).Parse(ctx)
}

// ParseSource lexes and parses the provided source. This is shorthand for
// creating a Lexer and Parser and then calling Parse. Lexing errors are
// returned before any parsing takes place.
func ParseSource(ctx context.Context, source []byte, options ...Option) (*ast.Program, error) {
	p := New(nil, append([]Option{WithSource(source)}, options...)...)
	l := lexer.New(source, lexer.WithMode(p.mode), lexer.WithFilename(p.filename))
	tokens, err := l.Lex()
	if err != nil {
		return nil, err
	}
	p.tokens = tokens
	return p.Parse(ctx)
}

// Option is a configuration function for a Parser.
type Option func(*Parser)

// WithFilename sets the file name reported in errors.
func WithFilename(filename string) Option {
	return func(p *Parser) {
		p.filename = filename
	}
}

// WithMaxDepth sets the maximum loop nesting depth. Zero, the default,
// means unlimited.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		p.maxDepth = depth
	}
}

// WithMode sets the lexing policy used by ParseSource.
func WithMode(mode lexer.Mode) Option {
	return func(p *Parser) {
		p.mode = mode
	}
}

// WithSource provides the source the tokens were lexed from, so that errors
// can include the offending line.
func WithSource(source []byte) Option {
	return func(p *Parser) {
		p.source = source
	}
}

// contextCheckInterval is the number of tokens between checks of ctx.Err().
const contextCheckInterval = 4096

// Parser object
type Parser struct {
	tokens   []token.Token
	source   []byte
	filename string
	mode     lexer.Mode
	maxDepth int
}

// New returns a Parser for the given tokens.
func New(tokens []token.Token, options ...Option) *Parser {
	p := &Parser{tokens: tokens}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// openLoop is a "[" whose matching "]" has not been seen yet.
type openLoop struct {
	offset int
	tok    token.Token
	body   []ast.Instruction
}

// Parse the tokens in a single left-to-right scan. At depth zero each token
// maps directly to an instruction, except that "[" opens a loop and a "]"
// is an error. Inside an open loop instructions accumulate in that loop's
// body, and the loop is emitted into its parent once its "]" is reached.
// The resulting tree is the same as that of a recursive scan over each
// balanced bracket span.
func (p *Parser) Parse(ctx context.Context) (*ast.Program, error) {
	var root []ast.Instruction
	var stack []openLoop

	emit := func(instr ast.Instruction) {
		if n := len(stack); n > 0 {
			stack[n-1].body = append(stack[n-1].body, instr)
		} else {
			root = append(root, instr)
		}
	}

	for offset, tok := range p.tokens {
		if offset%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		switch tok.Type {
		case token.LOOP_BEGIN:
			if p.maxDepth > 0 && len(stack) >= p.maxDepth {
				return nil, NewMaxDepthError(p.errorOpts(offset, tok), p.maxDepth)
			}
			stack = append(stack, openLoop{offset: offset, tok: tok})
		case token.LOOP_END:
			n := len(stack)
			if n == 0 {
				return nil, NewUnmatchedLoopEndError(p.errorOpts(offset, tok))
			}
			open := stack[n-1]
			stack = stack[:n-1]
			emit(&ast.Loop{
				Lbrack: open.tok.Position,
				Body:   open.body,
				Rbrack: tok.Position,
			})
		default:
			op, ok := ast.OpFor(tok.Type)
			if !ok {
				continue
			}
			emit(&ast.Command{OpPos: tok.Position, Op: op})
		}
	}

	if len(stack) > 0 {
		outermost := stack[0]
		return nil, NewUnmatchedLoopBeginError(p.errorOpts(outermost.offset, outermost.tok))
	}
	return &ast.Program{Instructions: root}, nil
}

func (p *Parser) errorOpts(offset int, tok token.Token) ErrorOpts {
	file := tok.Position.File
	if file == "" {
		file = p.filename
	}
	return ErrorOpts{
		Offset:        offset,
		File:          file,
		StartPosition: tok.Position,
		EndPosition:   tok.End(),
		SourceCode:    errors.LineText(p.source, tok.Position),
	}
}
