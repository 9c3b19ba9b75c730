package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gookit/color"
)

// TargetKey is the attribute naming the component a logger belongs to.
const TargetKey = "target"

// DefaultTarget is used for records without a target.
const DefaultTarget = "col"

// TimeFormat is the layout of the --log-time prefix.
const TimeFormat = "2006-01-02 15:04:05 -0700"

// Options configures a Handler.
type Options struct {
	// Writer receives log lines. Nil means os.Stderr.
	Writer io.Writer

	// Verbosity is the -v count. See VerbosityLevel.
	Verbosity int

	// Directives override the verbosity level per target.
	Directives []Directive

	// Time prefixes every line with the local time.
	Time bool

	// Color renders the level letter, target and time in colour.
	Color bool

	// Now is the clock used for Time. Nil means time.Now.
	Now func() time.Time
}

type handlerState struct {
	mu         sync.Mutex
	w          io.Writer
	base       slog.Level
	directives []Directive
	time       bool
	color      bool
	now        func() time.Time
}

// Handler writes one line per record:
//
//	[time ]L target: message key=value ...
//
// where L is the first letter of the level.
type Handler struct {
	state  *handlerState
	target string
	prefix string // group prefix for attribute keys
	attrs  string // preformatted attributes
}

// NewHandler creates a Handler.
func NewHandler(opts Options) *Handler {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Handler{
		state: &handlerState{
			w:          w,
			base:       VerbosityLevel(opts.Verbosity),
			directives: opts.Directives,
			time:       opts.Time,
			color:      opts.Color,
			now:        now,
		},
		target: DefaultTarget,
	}
}

// Setup installs a Handler as the slog default and returns its logger.
func Setup(opts Options) *slog.Logger {
	l := slog.New(NewHandler(opts))
	slog.SetDefault(l)
	return l
}

// For returns the default logger tagged with target.
func For(target string) *slog.Logger {
	return slog.Default().With(TargetKey, target)
}

// LevelFor returns the minimum level enabled for target.
// The longest matching directive wins; later directives win ties.
func (h *Handler) LevelFor(target string) slog.Level {
	lvl := h.state.base
	best := -1
	for _, d := range h.state.directives {
		if d.Matches(target) && len(d.Target) >= best {
			best = len(d.Target)
			lvl = d.Level
		}
	}
	return lvl
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.LevelFor(h.target)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	nh := *h
	var sb strings.Builder
	sb.WriteString(h.attrs)
	for _, a := range attrs {
		if h.prefix == "" && a.Key == TargetKey {
			nh.target = a.Value.String()
			continue
		}
		writeAttr(&sb, h.prefix, a)
	}
	nh.attrs = sb.String()
	return &nh
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	nh := *h
	nh.prefix = h.prefix + name + "."
	return &nh
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	if h.state.time {
		t := r.Time
		if t.IsZero() {
			t = h.state.now()
		}
		sb.WriteString(h.paint(color.FgCyan, t.Local().Format(TimeFormat)))
		sb.WriteByte(' ')
	}
	sb.WriteString(h.levelLetter(r.Level))
	sb.WriteByte(' ')
	sb.WriteString(h.paint(color.FgYellow, h.target))
	sb.WriteString(": ")
	sb.WriteString(r.Message)
	sb.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&sb, h.prefix, a)
		return true
	})
	sb.WriteByte('\n')

	h.state.mu.Lock()
	defer h.state.mu.Unlock()
	_, err := io.WriteString(h.state.w, sb.String())
	return err
}

func (h *Handler) levelLetter(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return h.paint(color.FgLightRed, "E")
	case level >= slog.LevelWarn:
		return h.paint(color.FgLightYellow, "W")
	case level >= slog.LevelInfo:
		return h.paint(color.FgLightGreen, "I")
	case level >= slog.LevelDebug:
		return h.paint(color.FgBlue, "D")
	default:
		return h.paint(color.FgBlack, "T")
	}
}

func (h *Handler) paint(c color.Color, s string) string {
	if !h.state.color {
		return s
	}
	return c.Render(s)
}

func writeAttr(sb *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			writeAttr(sb, p, ga)
		}
		return
	}
	sb.WriteByte(' ')
	sb.WriteString(prefix)
	sb.WriteString(a.Key)
	sb.WriteByte('=')
	v := a.Value.String()
	if v == "" || strings.ContainsAny(v, " \t\n\"=") {
		v = strconv.Quote(v)
	}
	sb.WriteString(v)
}
