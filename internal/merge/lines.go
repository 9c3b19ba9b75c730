package merge

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
)

// LineSequence is a single-pass sequence of lines read from one file.
//
// Lines are returned without their terminator ("\n" or "\r\n"). A final line
// without a terminator is still returned; a trailing terminator does not
// produce an extra empty line.
type LineSequence struct {
	path   string
	closer io.Closer
	r      *bufio.Reader
	lines  int
	bytes  int64
	done   bool
}

// OpenLines opens path for reading as a LineSequence.
// The caller must Close the sequence.
func OpenLines(path string) (*LineSequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return newLineSequence(path, f, f), nil
}

// NewLineSequence wraps an already open reader. name is used in errors.
func NewLineSequence(name string, r io.Reader) *LineSequence {
	var c io.Closer
	if rc, ok := r.(io.Closer); ok {
		c = rc
	}
	return newLineSequence(name, r, c)
}

func newLineSequence(path string, r io.Reader, c io.Closer) *LineSequence {
	return &LineSequence{
		path:   path,
		closer: c,
		r:      bufio.NewReader(r),
	}
}

// Path returns the name the sequence was opened with.
func (s *LineSequence) Path() string {
	return s.path
}

// Lines returns the number of lines produced so far.
func (s *LineSequence) Lines() int {
	return s.lines
}

// Bytes returns the number of bytes consumed so far, terminators included.
func (s *LineSequence) Bytes() int64 {
	return s.bytes
}

// Next returns the next line. ok is false once the sequence is exhausted;
// after that every call returns ("", false, nil).
func (s *LineSequence) Next() (line string, ok bool, err error) {
	if s.done {
		return "", false, nil
	}
	raw, err := s.r.ReadString('\n')
	s.bytes += int64(len(raw))
	if err != nil && !errors.Is(err, io.EOF) {
		s.done = true
		return "", false, err
	}
	if err != nil && raw == "" {
		s.done = true
		return "", false, nil
	}
	if err != nil {
		// Unterminated last line.
		s.done = true
	}
	raw = strings.TrimSuffix(raw, "\n")
	raw = strings.TrimSuffix(raw, "\r")
	s.lines++
	return raw, true, nil
}

// Close releases the underlying file. It is safe to call more than once.
func (s *LineSequence) Close() error {
	s.done = true
	if s.closer == nil {
		return nil
	}
	c := s.closer
	s.closer = nil
	return c.Close()
}
