package main

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestContextReaderPassesThrough(t *testing.T) {
	r := newContextReader(context.Background(), strings.NewReader("hello"))
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))
}

func TestContextReaderSmallBuffer(t *testing.T) {
	r := newContextReader(context.Background(), strings.NewReader("abc"))
	buf := make([]byte, 1)
	var got []byte
	for {
		n, err := r.Read(buf)
		got = append(got, buf[:n]...)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	require.Equal(t, "abc", string(got))
}

func TestContextReaderCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	r := newContextReader(ctx, pr)
	_, err := r.Read(make([]byte, 1))
	require.True(t, errors.Is(err, context.Canceled))

	// Later reads fail immediately.
	_, err = r.Read(make([]byte, 1))
	require.True(t, errors.Is(err, context.Canceled))
}
