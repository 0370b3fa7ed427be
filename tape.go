// Package tape lexes, parses and runs programs for the eight-instruction
// tape language.
//
//	program, err := tape.Compile(source)
//	machine, err := tape.Run(ctx, program, tape.WithOutput(os.Stdout))
//
// Compile surfaces every structural error before anything runs, so a
// program is never partially executed.
package tape

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/risor-io/tape/ast"
	"github.com/risor-io/tape/lexer"
	"github.com/risor-io/tape/parser"
	"github.com/risor-io/tape/vm"
)

// Option configures a compilation or execution.
type Option func(*options)

type options struct {
	mode                 lexer.Mode
	filename             string
	maxDepth             int
	source               []byte
	input                io.Reader
	output               io.Writer
	logger               *zerolog.Logger
	observer             vm.Observer
	wrap                 vm.PointerWrap
	eof                  vm.EOFPolicy
	contextCheckInterval *int
}

func collectOptions(opts ...Option) *options {
	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func (o *options) parserOpts() []parser.Option {
	opts := []parser.Option{parser.WithMode(o.mode)}
	if o.filename != "" {
		opts = append(opts, parser.WithFilename(o.filename))
	}
	if o.maxDepth > 0 {
		opts = append(opts, parser.WithMaxDepth(o.maxDepth))
	}
	return opts
}

func (o *options) vmOpts() []vm.Option {
	opts := []vm.Option{
		vm.WithPointerWrap(o.wrap),
		vm.WithEOFPolicy(o.eof),
	}
	if o.input != nil {
		opts = append(opts, vm.WithInput(o.input))
	}
	if o.output != nil {
		opts = append(opts, vm.WithOutput(o.output))
	}
	if o.source != nil {
		opts = append(opts, vm.WithSource(o.source))
	}
	if o.logger != nil {
		opts = append(opts, vm.WithLogger(*o.logger))
	}
	if o.observer != nil {
		opts = append(opts, vm.WithObserver(o.observer))
	}
	if o.contextCheckInterval != nil {
		opts = append(opts, vm.WithContextCheckInterval(*o.contextCheckInterval))
	}
	return opts
}

// WithStrict rejects every byte that is not an instruction, whitespace or
// part of a // comment. By default such bytes are ignored.
func WithStrict(strict bool) Option {
	return func(o *options) {
		if strict {
			o.mode = lexer.Strict
		} else {
			o.mode = lexer.Permissive
		}
	}
}

// WithMode sets the lexer mode directly.
func WithMode(mode lexer.Mode) Option {
	return func(o *options) {
		o.mode = mode
	}
}

// WithFilename sets the filename reported in error messages.
func WithFilename(filename string) Option {
	return func(o *options) {
		o.filename = filename
	}
}

// WithMaxDepth limits loop nesting. Zero means unlimited.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithSource attaches the source text to runtime errors so they can show
// the offending line. Eval sets it automatically.
func WithSource(source []byte) Option {
	return func(o *options) {
		o.source = source
	}
}

// WithInput sets the stream that reads take bytes from.
func WithInput(r io.Reader) Option {
	return func(o *options) {
		o.input = r
	}
}

// WithOutput sets the stream that writes emit bytes to.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

// WithLogger sets the logger used during execution.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &logger
	}
}

// WithObserver sets an observer for execution steps. The observer can be
// used for tracing, statistics or step limits.
func WithObserver(observer vm.Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithPointerWrap sets how the data pointer wraps.
func WithPointerWrap(wrap vm.PointerWrap) Option {
	return func(o *options) {
		o.wrap = wrap
	}
}

// WithEOFPolicy sets what a read does at the end of input.
func WithEOFPolicy(policy vm.EOFPolicy) Option {
	return func(o *options) {
		o.eof = policy
	}
}

// WithContextCheckInterval sets how many steps run between checks for
// context cancellation.
func WithContextCheckInterval(interval int) Option {
	return func(o *options) {
		o.contextCheckInterval = &interval
	}
}

// Compile lexes and parses source into a program. The returned program is
// immutable and may be run any number of times, concurrently on separate
// Machines.
func Compile(source []byte, opts ...Option) (*ast.Program, error) {
	o := collectOptions(opts...)
	return parser.ParseSource(context.Background(), source, o.parserOpts()...)
}

// Run executes a compiled program on a fresh Machine. The Machine is
// returned even on error so that the tape can be inspected.
func Run(ctx context.Context, program *ast.Program, opts ...Option) (*vm.Machine, error) {
	o := collectOptions(opts...)
	return vm.Run(ctx, program, o.vmOpts()...)
}

// Eval compiles and runs source. It is equivalent to Compile followed by
// Run, with the source attached for runtime diagnostics.
func Eval(ctx context.Context, source []byte, opts ...Option) (*vm.Machine, error) {
	program, err := Compile(source, opts...)
	if err != nil {
		return nil, err
	}
	opts = append([]Option{WithSource(source)}, opts...)
	return Run(ctx, program, opts...)
}

// Interpret runs source against the given streams using the default
// configuration: permissive lexing, byte pointer wrap and a fatal end of
// input.
func Interpret(source []byte, out io.Writer, in io.Reader) error {
	_, err := Eval(context.Background(), source, WithOutput(out), WithInput(in))
	return err
}
