// FILE: lixenwraith/vlog/sanitizer/sanitizer.go
// Package sanitizer rewrites untrusted text before it reaches a log sink,
// using composable filter/transform rules and JSON string encoding.
package sanitizer

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Filter flags for character matching
const (
	FilterNonPrintable uint64 = 1 << iota // Runes not printable per strconv.IsPrint
	FilterControl                         // unicode.IsControl
	FilterWhitespace                      // unicode.IsSpace
	FilterLineBreak                       // '\n' and '\r'
)

// Transform flags for character transformation
const (
	TransformStrip      uint64 = 1 << iota // Removes the character
	TransformHexEncode                     // Encodes the character's UTF-8 bytes as "<XXYY>"
	TransformJSONEscape                    // Backslash escapes, e.g. '\n', '\u0000'
)

// PolicyPreset names a pre-configured rule set
type PolicyPreset string

const (
	PolicyRaw  PolicyPreset = "raw"  // passthrough
	PolicyTxt  PolicyPreset = "txt"  // text log lines: control bytes hex encoded, line breaks kept
	PolicyLine PolicyPreset = "line" // single line output: line breaks escaped as well
	PolicyJSON PolicyPreset = "json" // strings embedded in JSON
)

type rule struct {
	filter    uint64
	transform uint64
}

var policyRules = map[PolicyPreset][]rule{
	PolicyRaw: {},
	PolicyTxt: {
		{filter: FilterLineBreak, transform: 0},
		{filter: FilterNonPrintable, transform: TransformHexEncode},
	},
	PolicyLine: {
		{filter: FilterLineBreak, transform: TransformJSONEscape},
		{filter: FilterNonPrintable, transform: TransformHexEncode},
	},
	PolicyJSON: {{filter: FilterControl, transform: TransformJSONEscape}},
}

// checked in flag order so rule evaluation is deterministic
var filterOrder = []struct {
	flag  uint64
	check func(rune) bool
}{
	{FilterNonPrintable, func(r rune) bool { return !strconv.IsPrint(r) }},
	{FilterControl, unicode.IsControl},
	{FilterWhitespace, unicode.IsSpace},
	{FilterLineBreak, func(r rune) bool { return r == '\n' || r == '\r' }},
}

// Sanitizer is an ordered rule list. It holds no buffers and is safe for
// concurrent use once configured.
type Sanitizer struct {
	rules []rule
}

// New creates a passthrough Sanitizer
func New() *Sanitizer {
	return &Sanitizer{}
}

// Rule appends a custom rule; earlier rules win. A zero transform keeps the
// matched rune unchanged.
func (s *Sanitizer) Rule(filter uint64, transform uint64) *Sanitizer {
	s.rules = append(s.rules, rule{filter: filter, transform: transform})
	return s
}

// Policy appends the rules of a preset. Unknown presets add nothing.
func (s *Sanitizer) Policy(preset PolicyPreset) *Sanitizer {
	if rules, ok := policyRules[preset]; ok {
		s.rules = append(s.rules, rules...)
	}
	return s
}

// Sanitize applies the rules to data.
func (s *Sanitizer) Sanitize(data string) string {
	if s == nil || len(s.rules) == 0 {
		return data
	}
	return string(s.Append(make([]byte, 0, len(data)), data))
}

// Append applies the rules to data, appending the result to buf.
func (s *Sanitizer) Append(buf []byte, data string) []byte {
	for _, r := range data {
		matched := false
		for _, rl := range s.rules {
			if matchesFilter(r, rl.filter) {
				buf = applyTransform(buf, r, rl.transform)
				matched = true
				break
			}
		}
		if !matched {
			buf = utf8.AppendRune(buf, r)
		}
	}
	return buf
}

func matchesFilter(r rune, filterMask uint64) bool {
	for _, f := range filterOrder {
		if filterMask&f.flag != 0 && f.check(r) {
			return true
		}
	}
	return false
}

func applyTransform(buf []byte, r rune, transformMask uint64) []byte {
	switch {
	case transformMask&TransformStrip != 0:
		return buf

	case transformMask&TransformHexEncode != 0:
		var runeBytes [utf8.UTFMax]byte
		n := utf8.EncodeRune(runeBytes[:], r)
		buf = append(buf, '<')
		buf = append(buf, hex.EncodeToString(runeBytes[:n])...)
		return append(buf, '>')

	case transformMask&TransformJSONEscape != 0:
		return appendEscapedRune(buf, r)
	}
	return utf8.AppendRune(buf, r)
}

func appendEscapedRune(buf []byte, r rune) []byte {
	switch r {
	case '\n':
		return append(buf, '\\', 'n')
	case '\r':
		return append(buf, '\\', 'r')
	case '\t':
		return append(buf, '\\', 't')
	case '\b':
		return append(buf, '\\', 'b')
	case '\f':
		return append(buf, '\\', 'f')
	case '"':
		return append(buf, '\\', '"')
	case '\\':
		return append(buf, '\\', '\\')
	}
	if r < 0x20 || r == 0x7f {
		return append(buf, fmt.Sprintf("\\u%04x", r)...)
	}
	return utf8.AppendRune(buf, r)
}

// AppendJSONString appends s as a quoted JSON string.
func AppendJSONString(buf []byte, s string) []byte {
	buf = append(buf, '"')
	for i := 0; i < len(s); {
		c := s[i]
		if c >= ' ' && c != '"' && c != '\\' && c < 0x7f {
			start := i
			for i < len(s) && s[i] >= ' ' && s[i] != '"' && s[i] != '\\' && s[i] < 0x7f {
				i++
			}
			buf = append(buf, s[start:i]...)
			continue
		}
		if c < utf8.RuneSelf {
			buf = appendEscapedRune(buf, rune(c))
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			buf = append(buf, `�`...)
		} else {
			buf = append(buf, s[i:i+size]...)
		}
		i += size
	}
	return append(buf, '"')
}
