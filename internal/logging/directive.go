package logging

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// Levels beyond the four slog defines.
const (
	LevelTrace = slog.LevelDebug - 4
	LevelOff   = slog.LevelError + 100
)

var directiveRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+(\.[a-zA-Z0-9_-]+)*:(?i:trace|debug|info|warn|error|off)$`)

// Directive overrides the level of a target and everything below it.
type Directive struct {
	Target string
	Level  slog.Level
}

// Matches reports whether target is d.Target or a descendant of it.
func (d Directive) Matches(target string) bool {
	return target == d.Target || strings.HasPrefix(target, d.Target+".")
}

// ParseLevel parses trace, debug, info, warn, error or off in any case.
func ParseLevel(s string) (slog.Level, error) {
	switch cases.Fold().String(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "off":
		return LevelOff, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// VerbosityLevel maps a -v count to the base level:
// 0 warn, 1 info, 2 debug, 3 or more trace.
func VerbosityLevel(verbosity int) slog.Level {
	switch {
	case verbosity <= 0:
		return slog.LevelWarn
	case verbosity == 1:
		return slog.LevelInfo
	case verbosity == 2:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}

// SplitDirectives splits every value on commas, trims the pieces and drops
// empty ones.
func SplitDirectives(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// ParseDirectives parses TARGET:LEVEL strings. Every invalid entry is
// reported in a single error.
func ParseDirectives(values []string) ([]Directive, error) {
	var (
		out []Directive
		bad []string
	)
	for _, v := range values {
		if !directiveRe.MatchString(v) {
			bad = append(bad, fmt.Sprintf("%q", v))
			continue
		}
		i := strings.LastIndex(v, ":")
		lvl, err := ParseLevel(v[i+1:])
		if err != nil {
			bad = append(bad, fmt.Sprintf("%q", v))
			continue
		}
		out = append(out, Directive{Target: v[:i], Level: lvl})
	}
	if len(bad) > 0 {
		return nil, fmt.Errorf("unexpected logging directives:\n - %s\n  Please use TARGET:LEVEL, for instance: %q",
			strings.Join(bad, "\n - "), "col.merge:DEBUG")
	}
	return out, nil
}
