package testutil

import (
	"bytes"
	"errors"
)

// ErrSinkClosed is returned by FailingWriter once its budget is spent.
var ErrSinkClosed = errors.New("sink closed")

// FailingWriter accepts the first OK writes and rejects every later one
// with ErrSinkClosed. Accepted bytes are kept in Buf.
type FailingWriter struct {
	OK     int
	Buf    bytes.Buffer
	Writes int
}

func (w *FailingWriter) Write(p []byte) (int, error) {
	w.Writes++
	if w.Writes > w.OK {
		return 0, ErrSinkClosed
	}
	return w.Buf.Write(p)
}
