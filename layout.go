// FILE: lixenwraith/vlog/layout.go
package vlog

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/lixenwraith/vlog/formatter"
	"github.com/lixenwraith/vlog/sanitizer"
)

// Layout turns an event into the text a sink writes.
type Layout interface {
	Format(e *Event) string
}

// LayoutFactory builds a Layout from configuration. Each sink gets its own instance.
type LayoutFactory func(cfg *Config) Layout

var (
	layoutsMu sync.RWMutex
	layouts   = map[string]LayoutFactory{}
)

// Built-in layout names
const (
	LayoutLine = "line"
	LayoutJSON = "json"
)

func init() {
	RegisterLayout(LayoutLine, func(cfg *Config) Layout { return NewLineLayout(newFormatter(cfg)) })
	RegisterLayout(LayoutJSON, func(cfg *Config) Layout { return NewJSONLayout(newFormatter(cfg)) })
}

// RegisterLayout makes a layout available by name, replacing any previous one.
func RegisterLayout(name string, factory LayoutFactory) {
	layoutsMu.Lock()
	defer layoutsMu.Unlock()
	layouts[strings.ToLower(name)] = factory
}

// NewLayout builds the layout registered under name.
func NewLayout(name string, cfg *Config) (Layout, error) {
	layoutsMu.RLock()
	factory, ok := layouts[strings.ToLower(name)]
	layoutsMu.RUnlock()
	if !ok {
		return nil, fmtErrorf("%w: '%s' (registered: %s)", ErrUnknownLayout, name, strings.Join(LayoutNames(), ", "))
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return factory(cfg), nil
}

// LayoutNames returns the registered layout names, sorted.
func LayoutNames() []string {
	layoutsMu.RLock()
	defer layoutsMu.RUnlock()
	names := make([]string, 0, len(layouts))
	for name := range layouts {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func layoutRegistered(name string) bool {
	layoutsMu.RLock()
	defer layoutsMu.RUnlock()
	_, ok := layouts[strings.ToLower(name)]
	return ok
}

func newFormatter(cfg *Config) *formatter.Formatter {
	var san *sanitizer.Sanitizer
	if cfg.Sanitize {
		san = sanitizer.New().Policy(sanitizer.PolicyTxt)
	}
	return formatter.New(san).TimestampFormat(cfg.TimestampFormat)
}

// LineLayout renders
//
//	[time] [thread] [LEVEL] [logger] - message
//
// followed by the error, if any, on its own line.
type LineLayout struct {
	f *formatter.Formatter
}

func NewLineLayout(f *formatter.Formatter) *LineLayout {
	if f == nil {
		f = formatter.New()
	}
	return &LineLayout{f: f}
}

func (l *LineLayout) Format(e *Event) string {
	if e == nil {
		return ""
	}
	var sb strings.Builder
	writeItem(&sb, eventTime(l.f, e))
	writeItem(&sb, orUndefined(e.ThreadName))
	writeItem(&sb, e.Level.String())
	writeItem(&sb, orUndefined(e.LoggerName))
	if e.Trace != "" {
		writeItem(&sb, e.Trace)
	}
	sb.WriteString("- ")
	sb.WriteString(l.f.Message(e.Message, e.Arguments))
	if e.Err != nil {
		sb.WriteByte('\n')
		sb.WriteString(l.f.Sanitize(errorText(e.Err)))
	}
	sb.WriteByte('\n')
	return sb.String()
}

func writeItem(sb *strings.Builder, item string) {
	sb.WriteByte('[')
	sb.WriteString(item)
	sb.WriteString("] ")
}

// JSONLayout renders one JSON object per line with the keys eventTime,
// threadName, level, loggerName, message and, when present, trace and exception.
type JSONLayout struct {
	f *formatter.Formatter
}

func NewJSONLayout(f *formatter.Formatter) *JSONLayout {
	if f == nil {
		f = formatter.New()
	}
	return &JSONLayout{f: f}
}

func (l *JSONLayout) Format(e *Event) string {
	if e == nil {
		return ""
	}
	buf := make([]byte, 0, 256)
	buf = append(buf, '{')
	buf = appendJSONItem(buf, "eventTime", eventTime(l.f, e), false)
	buf = appendJSONItem(buf, "threadName", orUndefined(e.ThreadName), true)
	buf = appendJSONItem(buf, "level", e.Level.String(), true)
	buf = appendJSONItem(buf, "loggerName", orUndefined(e.LoggerName), true)
	buf = appendJSONItem(buf, "message", l.f.Message(e.Message, e.Arguments), true)
	if e.Trace != "" {
		buf = appendJSONItem(buf, "trace", e.Trace, true)
	}
	if e.Err != nil {
		buf = appendJSONItem(buf, "exception", l.f.Sanitize(errorText(e.Err)), true)
	}
	buf = append(buf, '}', '\n')
	return string(buf)
}

func appendJSONItem(buf []byte, key, value string, comma bool) []byte {
	if comma {
		buf = append(buf, ',')
	}
	buf = sanitizer.AppendJSONString(buf, key)
	buf = append(buf, ':')
	return sanitizer.AppendJSONString(buf, value)
}

func eventTime(f *formatter.Formatter, e *Event) string {
	if e.Time.IsZero() {
		return undefinedField
	}
	return f.Timestamp(e.Time)
}

func orUndefined(s string) string {
	if s == "" {
		return undefinedField
	}
	return s
}

// errorText renders err with detail when the error type provides it.
func errorText(err error) string {
	return fmt.Sprintf("%+v", err)
}
