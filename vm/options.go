package vm

import (
	"io"

	"github.com/rs/zerolog"
)

// Option is a configuration function for a Machine.
type Option func(*Machine)

// WithInput sets the stream that reads take bytes from.
func WithInput(r io.Reader) Option {
	return func(m *Machine) {
		m.input = r
	}
}

// WithOutput sets the stream that writes emit bytes to. If the writer has a
// Flush() error method it is flushed before each read and at the end of a run.
func WithOutput(w io.Writer) Option {
	return func(m *Machine) {
		m.output = w
	}
}

// WithPointerWrap sets how the data pointer wraps. The default is WrapByte.
func WithPointerWrap(wrap PointerWrap) Option {
	return func(m *Machine) {
		m.wrap = wrap
	}
}

// WithEOFPolicy sets what a read does at end of input. The default is EOFAbort.
func WithEOFPolicy(policy EOFPolicy) Option {
	return func(m *Machine) {
		m.eof = policy
	}
}

// WithSource provides the program source so runtime errors can show the
// offending line.
func WithSource(source []byte) Option {
	return func(m *Machine) {
		m.source = source
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Machine) {
		m.logger = logger
	}
}

// WithContextCheckInterval sets how often the Machine checks ctx.Done()
// during execution, in steps. A value of 0 disables checking. The default is
// DefaultContextCheckInterval.
func WithContextCheckInterval(interval int) Option {
	return func(m *Machine) {
		m.contextCheckInterval = interval
	}
}

// WithObserver sets an observer for execution steps.
//
// Observer methods are called synchronously during execution, so
// implementations should be fast to avoid impacting performance.
// Returning false from OnStep halts execution immediately.
func WithObserver(observer Observer) Option {
	return func(m *Machine) {
		m.observer = observer
	}
}
