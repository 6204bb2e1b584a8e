// FILE: lixenwraith/vlog/utility.go
package vlog

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"unicode"
)

// internal diagnostics destination, swapped by Handle configuration and tests
var (
	internalErrorsEnabled atomic.Bool
	internalOutput        atomic.Value // stores outputHolder
)

type outputHolder struct {
	w io.Writer
}

func init() {
	internalErrorsEnabled.Store(true)
	internalOutput.Store(outputHolder{w: os.Stderr})
}

// SetInternalOutput redirects internal diagnostics. A nil writer restores stderr.
func SetInternalOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	internalOutput.Store(outputHolder{w: w})
}

// internalLog writes runtime diagnostics (write failures, recovered panics,
// cleanup errors) to the last-resort channel when enabled.
func internalLog(format string, args ...any) {
	if !internalErrorsEnabled.Load() {
		return
	}
	if !strings.HasPrefix(format, "vlog: ") {
		format = "vlog: " + format
	}
	if !strings.HasSuffix(format, "\n") {
		format += "\n"
	}
	out := internalOutput.Load().(outputHolder)
	fmt.Fprintf(out.w, format, args...)
}

// goroutineName returns the identity of the calling goroutine as "goroutine-<id>".
func goroutineName() string {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	s := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	if i := bytes.IndexByte(s, ' '); i > 0 {
		return "goroutine-" + string(s[:i])
	}
	return "goroutine-unknown"
}

// getTrace returns a function call trace string.
func getTrace(depth int64, skip int) string {
	if depth <= 0 || depth > maxTraceDepth {
		return ""
	}
	pc := make([]uintptr, int(depth))
	n := runtime.Callers(skip+1, pc) // +1 because Callers includes its own frame
	if n == 0 {
		return "(unknown)"
	}
	frames := runtime.CallersFrames(pc[:n])
	trace := make([]string, 0, n)
	for {
		frame, more := frames.Next()
		if frame.Function != "" {
			trace = append(trace, shortFuncName(frame.Function))
		}
		if !more || len(trace) >= int(depth) {
			break
		}
	}
	if len(trace) == 0 {
		return "(unknown)"
	}
	// Reverse for caller -> callee order
	for i, j := 0, len(trace)-1; i < j; i, j = i+1, j-1 {
		trace[i], trace[j] = trace[j], trace[i]
	}
	return strings.Join(trace, " -> ")
}

func shortFuncName(fn string) string {
	parts := strings.Split(filepath.Base(fn), ".")
	last := parts[len(parts)-1]
	if len(last) > 4 && strings.HasPrefix(last, "func") {
		for _, r := range last[4:] {
			if !unicode.IsDigit(r) {
				return last
			}
		}
		return fmt.Sprintf("(anonymous in %s)", strings.Join(parts[:len(parts)-1], "."))
	}
	return last
}

// fmtErrorf wrapper
func fmtErrorf(format string, args ...any) error {
	if !strings.HasPrefix(format, "vlog: ") {
		format = "vlog: " + format
	}
	return fmt.Errorf(format, args...)
}

// combineErrors helper
func combineErrors(err1, err2 error) error {
	if err1 == nil {
		return err2
	}
	if err2 == nil {
		return err1
	}
	return fmt.Errorf("%w; %w", err1, err2)
}

// parseKeyValue splits a "key=value" string.
func parseKeyValue(arg string) (string, string, error) {
	parts := strings.SplitN(strings.TrimSpace(arg), "=", 2)
	if len(parts) != 2 {
		return "", "", fmtErrorf("invalid format in override string '%s', expected key=value", arg)
	}
	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])
	if key == "" {
		return "", "", fmtErrorf("key cannot be empty in override string '%s'", arg)
	}
	return key, value, nil
}
