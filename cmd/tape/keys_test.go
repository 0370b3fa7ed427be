package main

import (
	"io"
	"testing"

	"atomicgo.dev/keyboard/keys"
	"github.com/stretchr/testify/require"
)

// fakeListen replays presses one call at a time, like a user typing.
func fakeListen(presses ...keys.Key) listenFunc {
	return func(onKeyPress func(keys.Key) (bool, error)) error {
		for len(presses) > 0 {
			key := presses[0]
			presses = presses[1:]
			stop, err := onKeyPress(key)
			if err != nil {
				return err
			}
			if stop {
				return nil
			}
		}
		return io.ErrUnexpectedEOF
	}
}

func runeKey(r ...rune) keys.Key {
	return keys.Key{Code: keys.RuneKey, Runes: r}
}

func TestKeyReader(t *testing.T) {
	r := &keyReader{listen: fakeListen(
		runeKey('h'),
		keys.Key{Code: keys.Up},
		runeKey('é'),
		keys.Key{Code: keys.Enter},
		keys.Key{Code: keys.CtrlD},
	)}
	buf := make([]byte, 1)
	var got []byte
	for {
		n, err := r.Read(buf)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, buf[:n]...)
	}
	require.Equal(t, []byte("hé\n"), got)
}

func TestKeyReaderInterrupt(t *testing.T) {
	r := &keyReader{listen: fakeListen(keys.Key{Code: keys.CtrlC})}
	_, err := r.Read(make([]byte, 1))
	require.ErrorIs(t, err, errInterrupted)
}

func TestKeyBytes(t *testing.T) {
	tests := []struct {
		key      keys.Key
		expected []byte
		ok       bool
	}{
		{runeKey('a'), []byte("a"), true},
		{keys.Key{Code: keys.Space}, []byte(" "), true},
		{keys.Key{Code: keys.Tab}, []byte("\t"), true},
		{keys.Key{Code: keys.Enter}, []byte("\n"), true},
		{keys.Key{Code: keys.Backspace}, []byte{0x7f}, true},
		{keys.Key{Code: keys.Left}, nil, false},
		{runeKey(), nil, false},
	}
	for _, tt := range tests {
		b, ok := keyBytes(tt.key)
		require.Equal(t, tt.ok, ok, tt.key.String())
		require.Equal(t, tt.expected, b, tt.key.String())
	}
}
