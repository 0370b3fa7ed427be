package main

import (
	"context"
	"io"
)

type readResult struct {
	data []byte
	err  error
}

// contextReader makes a blocking reader give up once ctx is done. The
// underlying Read runs in its own goroutine; a read abandoned on
// cancellation is left to finish in the background.
type contextReader struct {
	ctx     context.Context
	r       io.Reader
	results chan readResult // in-flight read, if any
	pending []byte
	err     error
}

func newContextReader(ctx context.Context, r io.Reader) *contextReader {
	return &contextReader{ctx: ctx, r: r}
}

func (r *contextReader) Read(p []byte) (int, error) {
	if len(r.pending) > 0 {
		return r.drain(p)
	}
	if r.err != nil {
		return 0, r.err
	}
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	if r.results == nil {
		results := make(chan readResult, 1)
		buf := make([]byte, len(p))
		go func() {
			n, err := r.r.Read(buf)
			results <- readResult{data: buf[:n], err: err}
		}()
		r.results = results
	}
	select {
	case res := <-r.results:
		r.results = nil
		r.pending = res.data
		r.err = res.err
		if len(r.pending) == 0 {
			return 0, r.err
		}
		return r.drain(p)
	case <-r.ctx.Done():
		return 0, r.ctx.Err()
	}
}

// drain copies buffered bytes into p. A stored error is reported once the
// buffer is empty.
func (r *contextReader) drain(p []byte) (int, error) {
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	if len(r.pending) == 0 && r.err != nil {
		return n, r.err
	}
	return n, nil
}
