package main

import (
	"errors"
	"io"
	"unicode/utf8"

	"atomicgo.dev/keyboard"
	"atomicgo.dev/keyboard/keys"
)

var errInterrupted = errors.New("interrupted")

type listenFunc func(onKeyPress func(key keys.Key) (stop bool, err error)) error

// keyReader is an io.Reader over single key presses on the terminal, so a
// program's reads see each key as soon as it is typed. Ctrl+D ends the
// input and Ctrl+C aborts the run.
type keyReader struct {
	listen  listenFunc
	pending []byte
}

func newKeyReader() *keyReader {
	return &keyReader{listen: keyboard.Listen}
}

func (r *keyReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for len(r.pending) == 0 {
		var eof, interrupted bool
		err := r.listen(func(key keys.Key) (bool, error) {
			switch key.Code {
			case keys.CtrlD:
				eof = true
				return true, nil
			case keys.CtrlC:
				interrupted = true
				return true, nil
			}
			b, ok := keyBytes(key)
			if !ok {
				return false, nil
			}
			r.pending = append(r.pending, b...)
			return true, nil
		})
		switch {
		case err != nil:
			return 0, err
		case interrupted:
			return 0, errInterrupted
		case eof:
			return 0, io.EOF
		}
	}
	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}

// keyBytes returns the bytes a key press stands for. Keys without a byte
// form, like the arrows, are skipped.
func keyBytes(key keys.Key) ([]byte, bool) {
	switch key.Code {
	case keys.RuneKey:
		var b []byte
		for _, r := range key.Runes {
			b = utf8.AppendRune(b, r)
		}
		return b, len(b) > 0
	case keys.Space:
		return []byte{' '}, true
	case keys.Enter:
		return []byte{'\n'}, true
	}
	if key.Code >= 0 && key.Code < utf8.RuneSelf {
		return []byte{byte(key.Code)}, true
	}
	return nil, false
}
