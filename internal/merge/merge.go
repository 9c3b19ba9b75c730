package merge

import (
	"context"
	"io"
	"log/slog"

	"github.com/roach88/col/internal/logging"
)

// DefaultSeparator separates the timestamp and data fields of a merged record.
const DefaultSeparator = " "

// Merger merges timestamped files into one synchronized stream.
//
// The zero value is ready to use: records are joined with DefaultSeparator,
// logs go to the "col.merge" logger and run ids are UUIDv7.
type Merger struct {
	// Separator is written before every data field. Empty means DefaultSeparator.
	Separator string

	// Logger receives diagnostics. Nil means logging.For("col.merge").
	Logger *slog.Logger

	// RunIDs generates the id attached to each run's log lines.
	// Nil means UUIDv7Generator.
	RunIDs RunIDGenerator
}

// FileStats summarises what was consumed from one input.
type FileStats struct {
	Path  string `json:"path"`
	Lines int    `json:"lines"`
	Bytes int64  `json:"bytes"`
}

// Stats summarises one merge run. It is filled in on failure too, up to the
// failing step.
type Stats struct {
	RunID   string      `json:"run_id"`
	Records int         `json:"records"`
	Files   []FileStats `json:"files"`
}

// Merge merges the files at paths into sink using the default settings.
// See Merger.Run.
func Merge(paths []string, sink io.Writer) error {
	_, err := (&Merger{}).Run(paths, sink)
	return err
}

// Run opens every path, left to right, and writes one merged record per line
// position to sink:
//
//	<timestamp> <data_1> <data_2> ... <data_N>\n
//
// Every input must have the same number of lines and the same leading token
// at each position. The first violation stops the run and is returned as an
// *Error; records written for earlier positions stay in sink. Each record is
// handed to sink in a single Write call. Zero paths write nothing.
//
// All files are closed before Run returns.
func (m *Merger) Run(paths []string, sink io.Writer) (stats Stats, err error) {
	stats.RunID = m.runIDs().Generate()
	log := m.logger().With("run", stats.RunID)

	if len(paths) == 0 {
		log.Debug("no input files")
		return stats, nil
	}

	seqs := make([]*LineSequence, 0, len(paths))
	defer func() {
		stats.Files = fileStats(seqs)
		for _, s := range seqs {
			if closeErr := s.Close(); closeErr != nil {
				log.Warn("error closing input", "path", s.Path(), "error", closeErr)
			}
		}
	}()

	for _, p := range paths {
		s, openErr := OpenLines(p)
		if openErr != nil {
			return stats, newOpenError(p, openErr)
		}
		seqs = append(seqs, s)
		log.Debug("opened input", "path", p)
	}

	sep := m.separator()
	lines := make([]string, len(seqs))
	fields := make([]Fields, len(seqs))
	var buf []byte

	for step := 1; ; step++ {
		exhausted := 0
		exhaustedPath := ""
		for i, s := range seqs {
			line, ok, readErr := s.Next()
			if readErr != nil {
				return stats, newReadError(s.Path(), step, readErr)
			}
			if !ok {
				exhausted++
				if exhaustedPath == "" {
					exhaustedPath = s.Path()
				}
				continue
			}
			lines[i] = line
		}

		if exhausted == len(seqs) {
			log.Debug("merge complete", "records", stats.Records, "files", len(seqs))
			return stats, nil
		}
		if exhausted > 0 {
			return stats, newLineCountError(exhaustedPath, step)
		}

		for i, line := range lines {
			f, parseErr := ParseLine(line)
			if parseErr != nil {
				return stats, newMalformedLineError(seqs[i].Path(), step, line)
			}
			fields[i] = f
		}

		ts := fields[0].Timestamp
		for i := 1; i < len(fields); i++ {
			if fields[i].Timestamp != ts {
				return stats, newTimestampError(seqs[i].Path(), step, ts, fields[i].Timestamp)
			}
		}

		buf = appendRecord(buf[:0], sep, fields)
		if _, writeErr := sink.Write(buf); writeErr != nil {
			return stats, newWriteError(step, writeErr)
		}
		stats.Records++
		log.Log(context.Background(), logging.LevelTrace, "record written", "step", step, "timestamp", ts)
	}
}

// appendRecord appends the merged record for fields to buf.
// Empty data still gets its separator.
func appendRecord(buf []byte, sep string, fields []Fields) []byte {
	buf = append(buf, fields[0].Timestamp...)
	for _, f := range fields {
		buf = append(buf, sep...)
		buf = append(buf, f.Data...)
	}
	return append(buf, '\n')
}

func fileStats(seqs []*LineSequence) []FileStats {
	out := make([]FileStats, len(seqs))
	for i, s := range seqs {
		out[i] = FileStats{Path: s.Path(), Lines: s.Lines(), Bytes: s.Bytes()}
	}
	return out
}

func (m *Merger) separator() string {
	if m.Separator == "" {
		return DefaultSeparator
	}
	return m.Separator
}

func (m *Merger) logger() *slog.Logger {
	if m.Logger == nil {
		return logging.For("col.merge")
	}
	return m.Logger
}

func (m *Merger) runIDs() RunIDGenerator {
	if m.RunIDs == nil {
		return UUIDv7Generator{}
	}
	return m.RunIDs
}
