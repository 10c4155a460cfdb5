// Package logger is the League Notifier log sink: a slog handler that writes
// one line per record to a size-rotated file.
//
// Line layout:
//
//	2006-01-02T15:04:05.000Z [LEVEL] message | key=value, key2=value2
//
// Values containing separators or quotes are written Go-quoted so a Riot ID
// like "Smith, J#EUW" stays on one field. Group attributes are flattened to
// dotted keys ("cycle.roster=12").
//
// Two levels extend the slog set: LevelTrace (-8) for per-cycle chatter and
// LevelFail (12) for errors that end the process.
package logger

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// ///////////////////////////////////////////////
// Levels
// ///////////////////////////////////////////////

const (
	LevelTrace slog.Level = -8
	LevelDebug slog.Level = slog.LevelDebug
	LevelInfo  slog.Level = slog.LevelInfo
	LevelWarn  slog.Level = slog.LevelWarn
	LevelError slog.Level = slog.LevelError
	LevelFail  slog.Level = 12
)

// levels is ordered by severity. A record is labelled with the first entry
// whose level is >= the record's.
var levels = []struct {
	level slog.Level
	name  string
}{
	{LevelTrace, "TRACE"},
	{LevelDebug, "DEBUG"},
	{LevelInfo, "INFO"},
	{LevelWarn, "WARN"},
	{LevelError, "ERROR"},
	{LevelFail, "FAIL"},
}

func levelName(l slog.Level) string {
	for _, e := range levels {
		if l <= e.level {
			return e.name
		}
	}
	return "FAIL"
}

// LookupLevel resolves a level name such as "debug" or "TRACE".
func LookupLevel(name string) (slog.Level, bool) {
	for _, e := range levels {
		if strings.EqualFold(name, e.name) {
			return e.level, true
		}
	}
	return LevelInfo, false
}

// ParseLevel is [LookupLevel] with unknown names mapped to LevelInfo.
func ParseLevel(name string) slog.Level {
	l, _ := LookupLevel(name)
	return l
}

// ///////////////////////////////////////////////
// Handler
// ///////////////////////////////////////////////

const timeLayout = "2006-01-02T15:04:05.000Z"

var newline = func() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}()

// Handler is a slog.Handler producing the package's line layout. Handlers
// derived through WithAttrs and WithGroup share the parent's writer lock.
type Handler struct {
	w     io.Writer
	mu    *sync.Mutex
	level slog.Level

	// prefix is the dotted group path applied to record attributes.
	prefix string
	// preset holds WithAttrs attributes, already rendered as key=value.
	preset []string
}

// NewHandler returns a Handler writing records at or above level to w.
func NewHandler(w io.Writer, level slog.Level) *Handler {
	return &Handler{w: w, mu: &sync.Mutex{}, level: level}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 128)
	if !r.Time.IsZero() {
		buf = r.Time.UTC().AppendFormat(buf, timeLayout)
		buf = append(buf, ' ')
	}
	buf = append(buf, '[')
	buf = append(buf, levelName(r.Level)...)
	buf = append(buf, "] "...)
	buf = append(buf, r.Message...)

	fields := append([]string(nil), h.preset...)
	r.Attrs(func(a slog.Attr) bool {
		fields = appendAttr(fields, h.prefix, a)
		return true
	})
	if len(fields) > 0 {
		buf = append(buf, " | "...)
		buf = append(buf, strings.Join(fields, ", ")...)
	}
	buf = append(buf, newline...)

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf)
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	preset := append([]string(nil), h.preset...)
	for _, a := range attrs {
		preset = appendAttr(preset, h.prefix, a)
	}
	clone := *h
	clone.preset = preset
	return &clone
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

// appendAttr renders a as one or more key=value fields. Groups are
// flattened, empty attributes dropped.
func appendAttr(fields []string, prefix string, a slog.Attr) []string {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return fields
	}
	if a.Value.Kind() == slog.KindGroup {
		inner := prefix
		if a.Key != "" {
			inner += a.Key + "."
		}
		for _, g := range a.Value.Group() {
			fields = appendAttr(fields, inner, g)
		}
		return fields
	}
	return append(fields, prefix+a.Key+"="+formatValue(a.Value))
}

// formatValue quotes values that would be ambiguous in the field list.
func formatValue(v slog.Value) string {
	var s string
	if v.Kind() == slog.KindTime {
		s = v.Time().UTC().Format(timeLayout)
	} else {
		s = v.String()
	}
	if strings.ContainsAny(s, ",|\"\r\n") {
		return strconv.Quote(s)
	}
	return s
}

// ///////////////////////////////////////////////
// File Logger
// ///////////////////////////////////////////////

// Options configures [New].
type Options struct {
	// Path is the log file. Rotated copies sit next to it.
	Path string
	// Level is the minimum level written.
	Level slog.Level
	// MaxSizeMB is the size at which the file rotates.
	MaxSizeMB int
	// Mirror, when set, receives every line as well (the -console flag).
	Mirror io.Writer
}

// Rotation retention for old log files.
const (
	keepBackups = 3
	keepDays    = 28
)

// New returns a logger writing to a rotating file. Close the returned
// io.Closer on shutdown.
func New(o Options) (*slog.Logger, io.Closer, error) {
	if o.Path == "" {
		return nil, nil, errors.New("log path is empty")
	}
	file := &lumberjack.Logger{
		Filename:   o.Path,
		MaxSize:    o.MaxSizeMB,
		MaxBackups: keepBackups,
		MaxAge:     keepDays,
	}
	var w io.Writer = file
	if o.Mirror != nil {
		w = io.MultiWriter(file, o.Mirror)
	}
	return slog.New(NewHandler(w, o.Level)), file, nil
}

// Trace logs msg at LevelTrace.
func Trace(l *slog.Logger, msg string, args ...any) {
	l.Log(context.Background(), LevelTrace, msg, args...)
}

// Fail logs msg at LevelFail.
func Fail(l *slog.Logger, msg string, args ...any) {
	l.Log(context.Background(), LevelFail, msg, args...)
}

// ///////////////////////////////////////////////
// Tail
// ///////////////////////////////////////////////

// ReadTail returns the last n lines of the file at path, joined with "\n".
func ReadTail(path string, n int) (string, error) {
	if n <= 0 {
		return "", nil
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	tail := make([]string, 0, n)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if len(tail) == n {
			tail = tail[1:]
		}
		tail = append(tail, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	return strings.Join(tail, "\n"), nil
}
