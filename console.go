// FILE: lixenwraith/vlog/console.go
package vlog

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// ANSI color per level, used only when the target stream is a terminal
var levelColors = map[Level]string{
	LevelTrace: "\x1b[90m",
	LevelDebug: "\x1b[36m",
	LevelInfo:  "\x1b[32m",
	LevelWarn:  "\x1b[33m",
	LevelError: "\x1b[31m",
}

const colorReset = "\x1b[0m"

// ConsoleSink writes ERROR events to the error stream and everything else to
// the output stream.
type ConsoleSink struct {
	out    io.Writer
	err    io.Writer
	layout Layout

	outColor bool
	errColor bool
}

// NewConsoleSink fails with ErrMissingStream if either stream is nil. A nil
// layout selects the line layout.
func NewConsoleSink(out, errOut io.Writer, layout Layout) (*ConsoleSink, error) {
	if out == nil || errOut == nil {
		return nil, fmtErrorf("%w: console sink needs both output and error streams", ErrMissingStream)
	}
	if layout == nil {
		layout = NewLineLayout(nil)
	}
	return &ConsoleSink{out: out, err: errOut, layout: layout}, nil
}

// Color enables level coloring for streams attached to a terminal.
func (c *ConsoleSink) Color(enabled bool) *ConsoleSink {
	c.outColor = enabled && isTerminal(c.out)
	c.errColor = enabled && isTerminal(c.err)
	return c
}

func (c *ConsoleSink) Support(e *Event) bool {
	return supportEvent(e)
}

func (c *ConsoleSink) Write(e *Event) error {
	text := c.layout.Format(e)

	target, color := c.out, c.outColor
	if e.Level == LevelError {
		target, color = c.err, c.errColor
	}

	if color {
		text = colorize(e.Level, text)
	}
	_, err := io.WriteString(target, text)
	return err
}

// Sync commits the streams when they are files. Terminals and pipes reject
// fsync, which is not an error here.
func (c *ConsoleSink) Sync() error {
	for _, w := range []io.Writer{c.out, c.err} {
		if f, ok := w.(*os.File); ok && !isTerminal(f) {
			_ = f.Sync()
		}
	}
	return nil
}

func colorize(level Level, text string) string {
	code, ok := levelColors[level]
	if !ok {
		return text
	}
	body := strings.TrimSuffix(text, "\n")
	return code + body + colorReset + text[len(body):]
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
