// FILE: lixenwraith/vlog/utility_test.go
package vlog

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKeyValue(t *testing.T) {
	tests := []struct {
		input     string
		wantKey   string
		wantValue string
		wantErr   bool
	}{
		{"key=value", "key", "value", false},
		{" key = value ", "key", "value", false},
		{"key=value=with=equals", "key", "value=with=equals", false},
		{"noequals", "", "", true},
		{"=value", "", "", true},
		{"key=", "key", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			key, value, err := parseKeyValue(tt.input)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantKey, key)
				assert.Equal(t, tt.wantValue, value)
			}
		})
	}
}

func TestFmtErrorf(t *testing.T) {
	err := fmtErrorf("test error: %s", "details")
	assert.Equal(t, "vlog: test error: details", err.Error())

	err = fmtErrorf("vlog: already prefixed")
	assert.Equal(t, "vlog: already prefixed", err.Error())

	err = fmtErrorf("wrapped: %w", ErrNotStarted)
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestCombineErrors(t *testing.T) {
	a := errors.New("a")
	b := errors.New("b")

	assert.Nil(t, combineErrors(nil, nil))
	assert.Same(t, a, combineErrors(a, nil))
	assert.Same(t, b, combineErrors(nil, b))

	both := combineErrors(a, b)
	assert.Equal(t, "a; b", both.Error())
	assert.ErrorIs(t, both, a)
	assert.ErrorIs(t, both, b)
}

func TestGetTrace(t *testing.T) {
	tests := []struct {
		depth int64
		check func(string)
	}{
		{0, func(s string) { assert.Empty(t, s) }},
		{1, func(s string) { assert.NotEmpty(t, s) }},
		{3, func(s string) {
			assert.NotEmpty(t, s)
			assert.True(t, strings.Contains(s, "->") || s == "(unknown)")
		}},
		{11, func(s string) { assert.Empty(t, s) }}, // Over limit
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("depth_%d", tt.depth), func(t *testing.T) {
			trace := getTrace(tt.depth, 0)
			tt.check(trace)
		})
	}
}

func TestShortFuncName(t *testing.T) {
	assert.Equal(t, "Info", shortFuncName("github.com/lixenwraith/vlog.(*Logger).Info"))
	assert.Equal(t, "main", shortFuncName("main.main"))
	assert.Equal(t, "(anonymous in main.worker)", shortFuncName("main.worker.func1"))
	assert.Equal(t, "funcName", shortFuncName("pkg.funcName"))
}

func TestGoroutineName(t *testing.T) {
	name := goroutineName()
	assert.True(t, strings.HasPrefix(name, "goroutine-"))

	other := make(chan string)
	go func() { other <- goroutineName() }()
	assert.NotEqual(t, name, <-other)
}

func TestInternalLog(t *testing.T) {
	buf := captureInternal(t)

	internalLog("disk %s", "full")
	assert.Equal(t, "vlog: disk full\n", buf.String())

	internalErrorsEnabled.Store(false)
	internalLog("suppressed")
	assert.Equal(t, "vlog: disk full\n", buf.String())
}
