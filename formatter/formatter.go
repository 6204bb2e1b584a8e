// FILE: lixenwraith/vlog/formatter/formatter.go
// Package formatter renders event messages: "{}" placeholder substitution and
// conversion of arbitrary argument values to text.
package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"

	"github.com/lixenwraith/vlog/sanitizer"
)

// DefaultTimestampFormat renders local time with millisecond precision.
const DefaultTimestampFormat = "2006-01-02T15:04:05.000"

// Placeholder marks an argument position in a message template.
const Placeholder = "{}"

// dumper renders composite values; pointers are followed without their
// addresses and map keys sorted so output is stable across runs.
var dumper = &spew.ConfigState{
	Indent:                  " ",
	MaxDepth:                10,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Formatter renders messages and values. It keeps no per-call state and is
// safe for concurrent use once configured.
type Formatter struct {
	sanitizer       *sanitizer.Sanitizer
	timestampFormat string
}

// New creates a formatter with the provided sanitizer, passthrough if none.
func New(s ...*sanitizer.Sanitizer) *Formatter {
	san := sanitizer.New()
	if len(s) > 0 && s[0] != nil {
		san = s[0]
	}
	return &Formatter{
		sanitizer:       san,
		timestampFormat: DefaultTimestampFormat,
	}
}

// TimestampFormat sets the layout used for timestamps and time.Time arguments.
func (f *Formatter) TimestampFormat(format string) *Formatter {
	if format != "" {
		f.timestampFormat = format
	}
	return f
}

// Timestamp formats t in local time.
func (f *Formatter) Timestamp(t time.Time) string {
	return t.Local().Format(f.timestampFormat)
}

// Sanitize applies the configured sanitizer to s.
func (f *Formatter) Sanitize(s string) string {
	return f.sanitizer.Sanitize(s)
}

// Message substitutes args into template and sanitizes the result.
func (f *Formatter) Message(template string, args []any) string {
	return f.sanitizer.Sanitize(Substitute(template, args, f.Value))
}

// Substitute replaces each "{}" in template, left to right, with the next
// argument rendered by render. A '{' not followed by '}' is kept as is.
// Placeholders beyond the last argument stay "{}". With no arguments the
// template is returned unchanged.
func Substitute(template string, args []any, render func(any) string) string {
	if len(args) == 0 {
		return template
	}
	if render == nil {
		render = func(v any) string { return fmt.Sprint(v) }
	}

	var sb strings.Builder
	sb.Grow(len(template) + 16*len(args))

	next := 0
	for i := 0; i < len(template); i++ {
		c := template[i]
		if c == '{' && i+1 < len(template) && template[i+1] == '}' {
			if next < len(args) {
				sb.WriteString(render(args[next]))
				next++
			} else {
				sb.WriteString(Placeholder)
			}
			i++
			continue
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// Value converts a single argument to text.
func (f *Formatter) Value(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case int:
		return strconv.Itoa(val)
	case int8:
		return strconv.FormatInt(int64(val), 10)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint8:
		return strconv.FormatUint(uint64(val), 10)
	case uint16:
		return strconv.FormatUint(uint64(val), 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case nil:
		return "null"
	case time.Time:
		return val.Format(f.timestampFormat)
	case time.Duration:
		return val.String()
	case error:
		return val.Error()
	case fmt.Stringer:
		return val.String()
	default:
		// Sprintf ignores DisablePointerAddresses, Sdump honours it
		return compact(dumper.Sdump(val))
	}
}

// compact joins a multi-line dump into a single line.
func compact(dump string) string {
	lines := strings.Split(strings.TrimSpace(dump), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Join(lines, " ")
}

// Dump renders v across multiple lines for diagnostics.
func Dump(v any) string {
	return strings.TrimSpace(dumper.Sdump(v))
}
