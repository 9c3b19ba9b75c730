package merge

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/col/internal/testutil"
)

func TestMerge_EmptyInput(t *testing.T) {
	buf := &bytes.Buffer{}

	err := Merge(nil, buf)
	require.NoError(t, err)
	assert.Zero(t, buf.Len())
}

func TestMerge_SingleFilePassthrough(t *testing.T) {
	dir := t.TempDir()
	a := testutil.WriteLines(t, dir, "a.txt", "1 a", "2 b")

	buf := &bytes.Buffer{}
	require.NoError(t, Merge([]string{a}, buf))
	assert.Equal(t, "1 a\n2 b\n", buf.String())
}

func TestMerge_MultiFile(t *testing.T) {
	dir := t.TempDir()
	file1 := testutil.WriteLines(t, dir, "file1.txt", "1 data1_file1", "2 data2_file1")
	file2 := testutil.WriteLines(t, dir, "file2.txt", "1 data1_file2", "2 data2_file2")

	buf := &bytes.Buffer{}
	require.NoError(t, Merge([]string{file1, file2}, buf))
	assert.Equal(t, "1 data1_file1 data1_file2\n2 data2_file1 data2_file2\n", buf.String())
}

func TestMerge_LineCountMismatch(t *testing.T) {
	tests := []struct {
		name  string
		a, b  []string
		want  string
		short string
		step  int
	}{
		{
			name:  "second_shorter",
			a:     []string{"1 a", "2 b"},
			b:     []string{"1 c"},
			want:  "1 a c\n",
			short: "b.txt",
			step:  2,
		},
		{
			name:  "first_shorter",
			a:     []string{"1 a"},
			b:     []string{"1 c", "2 d"},
			want:  "1 a c\n",
			short: "a.txt",
			step:  2,
		},
		{
			name:  "one_empty",
			a:     []string{},
			b:     []string{"1 c"},
			want:  "",
			short: "a.txt",
			step:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			a := testutil.WriteLines(t, dir, "a.txt", tt.a...)
			b := testutil.WriteLines(t, dir, "b.txt", tt.b...)

			buf := &bytes.Buffer{}
			err := Merge([]string{a, b}, buf)
			require.Error(t, err)
			assert.True(t, IsLineCountMismatch(err))
			assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
			assert.Contains(t, err.Error(), "different number of lines")

			var me *Error
			require.ErrorAs(t, err, &me)
			assert.Equal(t, filepath.Join(dir, tt.short), me.Path)
			assert.Equal(t, tt.step, me.Step)

			// Records before the failing step stay in the sink.
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestMerge_TimestampMismatch(t *testing.T) {
	dir := t.TempDir()
	a := testutil.WriteLines(t, dir, "a.txt", "1 x")
	b := testutil.WriteLines(t, dir, "b.txt", "2 y")

	buf := &bytes.Buffer{}
	err := Merge([]string{a, b}, buf)
	require.Error(t, err)
	assert.True(t, IsTimestampMismatch(err))
	assert.False(t, IsLineCountMismatch(err))
	assert.Contains(t, err.Error(), "timestamps do not match")
	assert.Zero(t, buf.Len(), "no record should be emitted for the first step")

	var me *Error
	require.ErrorAs(t, err, &me)
	assert.Equal(t, b, me.Path)
	assert.Equal(t, 1, me.Step)
}

func TestMerge_TimestampMismatchAfterMatches(t *testing.T) {
	dir := t.TempDir()
	a := testutil.WriteLines(t, dir, "a.txt", "1 x", "2 x", "3 x")
	b := testutil.WriteLines(t, dir, "b.txt", "1 y", "2 y", "4 y")
	c := testutil.WriteLines(t, dir, "c.txt", "1 z", "2 z", "3 z")

	buf := &bytes.Buffer{}
	err := Merge([]string{a, b, c}, buf)
	require.True(t, IsTimestampMismatch(err))
	assert.Equal(t, "1 x y z\n2 x y z\n", buf.String())

	var me *Error
	require.ErrorAs(t, err, &me)
	assert.Equal(t, b, me.Path)
	assert.Equal(t, 3, me.Step)
}

func TestMerge_TimestampsAreOpaque(t *testing.T) {
	dir := t.TempDir()
	// Numerically equal, textually different.
	a := testutil.WriteLines(t, dir, "a.txt", "1.0 x")
	b := testutil.WriteLines(t, dir, "b.txt", "1 y")

	err := Merge([]string{a, b}, io.Discard)
	assert.True(t, IsTimestampMismatch(err))
}

func TestMerge_MalformedLine(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"spaces", "   "},
		{"tabs", "\t \t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			a := testutil.WriteLines(t, dir, "a.txt", "1 a", tt.line)
			b := testutil.WriteLines(t, dir, "b.txt", "1 b", "2 b")

			buf := &bytes.Buffer{}
			err := Merge([]string{a, b}, buf)
			require.Error(t, err)
			assert.True(t, IsMalformedLine(err))
			assert.Contains(t, err.Error(), "line is empty or malformed")

			var me *Error
			require.ErrorAs(t, err, &me)
			assert.Equal(t, tt.line, me.Line)
			assert.Equal(t, a, me.Path)
			assert.Equal(t, 2, me.Step)
			assert.Equal(t, "1 a b\n", buf.String())
		})
	}
}

func TestMerge_MalformedCheckedBeforeTimestamps(t *testing.T) {
	dir := t.TempDir()
	a := testutil.WriteLines(t, dir, "a.txt", "1 a")
	b := testutil.WriteLines(t, dir, "b.txt", " ")

	err := Merge([]string{a, b}, io.Discard)
	assert.True(t, IsMalformedLine(err))
}

func TestMerge_LineCountCheckedBeforeParsing(t *testing.T) {
	dir := t.TempDir()
	a := testutil.WriteLines(t, dir, "a.txt", "")
	b := testutil.WriteLines(t, dir, "b.txt")

	err := Merge([]string{a, b}, io.Discard)
	assert.True(t, IsLineCountMismatch(err))
}

func TestMerge_TimestampOnlyLine(t *testing.T) {
	dir := t.TempDir()
	a := testutil.WriteLines(t, dir, "a.txt", "1", "2 b")
	b := testutil.WriteLines(t, dir, "b.txt", "1 x", "2")

	buf := &bytes.Buffer{}
	require.NoError(t, Merge([]string{a, b}, buf))
	assert.Equal(t, "1  x\n2 b \n", buf.String())
}

func TestMerge_WhitespaceCollapsed(t *testing.T) {
	dir := t.TempDir()
	a := testutil.WriteLines(t, dir, "a.txt", "  1   a \t b  ")
	b := testutil.WriteLines(t, dir, "b.txt", "1\tc")

	buf := &bytes.Buffer{}
	require.NoError(t, Merge([]string{a, b}, buf))
	assert.Equal(t, "1 a b c\n", buf.String())
}

func TestMerge_LineTerminators(t *testing.T) {
	dir := t.TempDir()
	crlf := testutil.WriteFile(t, dir, "crlf.txt", "1 a\r\n2 b\r\n")
	bare := testutil.WriteFile(t, dir, "bare.txt", "1 c\n2 d")

	buf := &bytes.Buffer{}
	require.NoError(t, Merge([]string{crlf, bare}, buf))
	assert.Equal(t, "1 a c\n2 b d\n", buf.String())
}

func TestMerge_Idempotent(t *testing.T) {
	dir := t.TempDir()
	a := testutil.WriteLines(t, dir, "a.txt", "1 a", "2 b", "3 c")
	b := testutil.WriteLines(t, dir, "b.txt", "1 x", "2 y", "3 z")

	first := &bytes.Buffer{}
	second := &bytes.Buffer{}
	require.NoError(t, Merge([]string{a, b}, first))
	require.NoError(t, Merge([]string{a, b}, second))
	assert.Equal(t, first.Bytes(), second.Bytes())
}

func TestMerge_OrderPreservation(t *testing.T) {
	dir := t.TempDir()
	z := testutil.WriteLines(t, dir, "z.txt", "1 from_z")
	a := testutil.WriteLines(t, dir, "a.txt", "1 from_a")
	m := testutil.WriteLines(t, dir, "m.txt", "1 from_m")

	buf := &bytes.Buffer{}
	require.NoError(t, Merge([]string{z, a, m}, buf))
	assert.Equal(t, "1 from_z from_a from_m\n", buf.String())

	buf.Reset()
	require.NoError(t, Merge([]string{m, z, a}, buf))
	assert.Equal(t, "1 from_m from_z from_a\n", buf.String())
}

func TestMerge_SameFileTwice(t *testing.T) {
	dir := t.TempDir()
	a := testutil.WriteLines(t, dir, "a.txt", "1 a", "2 b")

	buf := &bytes.Buffer{}
	require.NoError(t, Merge([]string{a, a}, buf))
	assert.Equal(t, "1 a a\n2 b b\n", buf.String())
}

func TestMerge_OpenFailure(t *testing.T) {
	dir := t.TempDir()
	a := testutil.WriteLines(t, dir, "a.txt", "1 a")
	missing := filepath.Join(dir, "missing.txt")

	buf := &bytes.Buffer{}
	err := Merge([]string{a, missing}, buf)
	require.Error(t, err)
	assert.True(t, IsIOError(err))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Zero(t, buf.Len(), "nothing is read before every file is open")

	var me *Error
	require.ErrorAs(t, err, &me)
	assert.Equal(t, ErrCodeOpen, me.Code)
	assert.Equal(t, missing, me.Path)
	assert.Zero(t, me.Step)
	assert.False(t, me.IsValidation())
}

func TestMerge_ReadFailure(t *testing.T) {
	dir := t.TempDir()

	// Opening a directory succeeds; reading it does not.
	err := Merge([]string{dir}, io.Discard)
	require.Error(t, err)

	var me *Error
	require.ErrorAs(t, err, &me)
	assert.Equal(t, ErrCodeRead, me.Code)
	assert.Equal(t, 1, me.Step)
	assert.True(t, IsIOError(err))
}

func TestMerge_WriteFailure(t *testing.T) {
	dir := t.TempDir()
	a := testutil.WriteLines(t, dir, "a.txt", "1 a", "2 b", "3 c")
	b := testutil.WriteLines(t, dir, "b.txt", "1 x", "2 y", "3 z")

	sink := &testutil.FailingWriter{OK: 1}
	err := Merge([]string{a, b}, sink)
	require.Error(t, err)
	assert.True(t, IsIOError(err))
	assert.ErrorIs(t, err, testutil.ErrSinkClosed)
	assert.Equal(t, "1 a x\n", sink.Buf.String())
	assert.Equal(t, 2, sink.Writes, "no writes after the failing step")

	var me *Error
	require.ErrorAs(t, err, &me)
	assert.Equal(t, ErrCodeWrite, me.Code)
	assert.Equal(t, 2, me.Step)
}

func TestMerger_OneWritePerRecord(t *testing.T) {
	dir := t.TempDir()
	a := testutil.WriteLines(t, dir, "a.txt", "1 a", "2 b", "3 c")

	sink := &testutil.FailingWriter{OK: 100}
	require.NoError(t, Merge([]string{a}, sink))
	assert.Equal(t, 3, sink.Writes)
}

func TestMerger_Separator(t *testing.T) {
	dir := t.TempDir()
	a := testutil.WriteLines(t, dir, "a.txt", "1 a a", "2")
	b := testutil.WriteLines(t, dir, "b.txt", "1 b", "2 c")

	buf := &bytes.Buffer{}
	m := &Merger{Separator: "|"}
	_, err := m.Run([]string{a, b}, buf)
	require.NoError(t, err)
	assert.Equal(t, "1|a a|b\n2||c\n", buf.String())
}

func TestMerger_Stats(t *testing.T) {
	dir := t.TempDir()
	a := testutil.WriteLines(t, dir, "a.txt", "1 a", "2 b")
	b := testutil.WriteLines(t, dir, "b.txt", "1 xy", "2 z")

	m := &Merger{RunIDs: NewFixedGenerator("run-1")}
	stats, err := m.Run([]string{a, b}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "run-1", stats.RunID)
	assert.Equal(t, 2, stats.Records)
	require.Len(t, stats.Files, 2)
	assert.Equal(t, FileStats{Path: a, Lines: 2, Bytes: 8}, stats.Files[0])
	assert.Equal(t, FileStats{Path: b, Lines: 2, Bytes: 9}, stats.Files[1])
}

func TestMerger_StatsOnFailure(t *testing.T) {
	dir := t.TempDir()
	a := testutil.WriteLines(t, dir, "a.txt", "1 a", "2 b")
	b := testutil.WriteLines(t, dir, "b.txt", "1 x")

	stats, err := (&Merger{}).Run([]string{a, b}, io.Discard)
	require.True(t, IsLineCountMismatch(err))
	assert.Equal(t, 1, stats.Records)
	require.Len(t, stats.Files, 2)
	assert.Equal(t, 2, stats.Files[0].Lines)
	assert.Equal(t, 1, stats.Files[1].Lines)
	assert.NotEmpty(t, stats.RunID)
}

func TestError_Predicates(t *testing.T) {
	err := newTimestampError("b.txt", 3, "1", "2")
	wrapped := errors.Join(errors.New("context"), err)

	assert.True(t, IsTimestampMismatch(wrapped))
	assert.False(t, IsMalformedLine(wrapped))
	assert.False(t, IsIOError(wrapped))
	assert.False(t, IsLineCountMismatch(errors.New("plain")))
	assert.Equal(t, `TIMESTAMP_MISMATCH: timestamps do not match across files: "2" != "1" (file=b.txt, line=3)`, err.Error())
}
