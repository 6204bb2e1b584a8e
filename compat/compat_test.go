// FILE: lixenwraith/vlog/compat/compat_test.go
package compat

import (
	"bufio"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/vlog"
)

// captureSink records events synchronously
type captureSink struct {
	mu      sync.Mutex
	started bool
	events  []*vlog.Event
}

func (c *captureSink) Start() error                { c.mu.Lock(); c.started = true; c.mu.Unlock(); return nil }
func (c *captureSink) Stop() error                 { c.mu.Lock(); c.started = false; c.mu.Unlock(); return nil }
func (c *captureSink) Started() bool               { c.mu.Lock(); defer c.mu.Unlock(); return c.started }
func (c *captureSink) Support(e *vlog.Event) bool { return e != nil }
func (c *captureSink) Append(e *vlog.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *captureSink) snapshot() []*vlog.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*vlog.Event(nil), c.events...)
}

// createTestCompatBuilder creates a handle with a capturing sink at debug level
func createTestCompatBuilder(t *testing.T) (*Builder, *vlog.Handle, *captureSink) {
	t.Helper()
	capture := &captureSink{}
	h, err := vlog.NewBuilder().
		EnableConsole(false).
		LevelString("debug").
		Sink(capture).
		Build()
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Shutdown(time.Second) })

	return NewBuilder().WithHandle(h), h, capture
}

func TestCompatBuilder(t *testing.T) {
	t.Run("with existing handle", func(t *testing.T) {
		builder, h, _ := createTestCompatBuilder(t)

		gnetAdapter, err := builder.BuildGnet()
		require.NoError(t, err)
		assert.Same(t, h.GetLogger(GnetLoggerName), gnetAdapter.logger)

		got, err := builder.GetHandle()
		require.NoError(t, err)
		assert.Same(t, h, got)
	})

	t.Run("with config", func(t *testing.T) {
		cfg := vlog.DefaultConfig()
		cfg.EnableConsole = false
		cfg.Level = "warn"

		builder := NewBuilder().WithConfig(cfg)
		adapter, err := builder.BuildFastHTTP()
		require.NoError(t, err)
		assert.Equal(t, vlog.LevelWarn, adapter.logger.Level())

		h, err := builder.GetHandle()
		require.NoError(t, err)
		require.NoError(t, h.Shutdown(time.Second))
	})

	t.Run("nil handle", func(t *testing.T) {
		_, err := NewBuilder().WithHandle(nil).BuildGnet()
		assert.Error(t, err)
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := vlog.DefaultConfig()
		cfg.Layout = "nope"
		_, err := NewBuilder().WithConfig(cfg).BuildGnet()
		assert.ErrorIs(t, err, vlog.ErrUnknownLayout)
	})
}

func TestGnetAdapter(t *testing.T) {
	builder, _, capture := createTestCompatBuilder(t)

	var fatalMsg string
	adapter, err := builder.BuildGnet(WithFatalHandler(func(msg string) { fatalMsg = msg }))
	require.NoError(t, err)

	adapter.Debugf("gnet debug id=%d", 1)
	adapter.Infof("gnet info id=%d", 2)
	adapter.Warnf("gnet warn id=%d", 3)
	adapter.Errorf("gnet error id=%d", 4)
	adapter.Fatalf("gnet fatal id=%d", 5)

	assert.Equal(t, "gnet fatal id=5", fatalMsg)

	events := capture.snapshot()
	require.Len(t, events, 5)

	expected := []struct {
		level vlog.Level
		text  string
	}{
		{vlog.LevelDebug, "gnet debug id=1"},
		{vlog.LevelInfo, "gnet info id=2"},
		{vlog.LevelWarn, "gnet warn id=3"},
		{vlog.LevelError, "gnet error id=4"},
		{vlog.LevelError, "gnet fatal id=5"},
	}
	for i, exp := range expected {
		assert.Equal(t, exp.level, events[i].Level)
		assert.Equal(t, GnetLoggerName, events[i].LoggerName)
		assert.Equal(t, []any{exp.text}, events[i].Arguments)
	}
	assert.Equal(t, "fatal: {}", events[4].Message)
}

func TestGnetAdapterKeepsBraces(t *testing.T) {
	builder, _, capture := createTestCompatBuilder(t)
	adapter, err := builder.BuildGnet()
	require.NoError(t, err)

	adapter.Infof("payload {} %s", "x")

	events := capture.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, "{}", events[0].Message)
	assert.Equal(t, []any{"payload {} x"}, events[0].Arguments)
}

func TestFastHTTPAdapter(t *testing.T) {
	builder, _, capture := createTestCompatBuilder(t)
	adapter, err := builder.BuildFastHTTP()
	require.NoError(t, err)

	testMessages := []struct {
		msg   string
		level vlog.Level
	}{
		{"this is some informational message", vlog.LevelInfo},
		{"a debug message for the developers", vlog.LevelDebug},
		{"warning: something might be wrong", vlog.LevelWarn},
		{"an error occurred while processing", vlog.LevelError},
		{"request failed", vlog.LevelError},
	}
	for _, m := range testMessages {
		adapter.Printf("%s", m.msg)
	}

	events := capture.snapshot()
	require.Len(t, events, len(testMessages))
	for i, m := range testMessages {
		assert.Equal(t, m.level, events[i].Level, m.msg)
		assert.Equal(t, FastHTTPLoggerName, events[i].LoggerName)
	}
}

func TestFastHTTPAdapterOptions(t *testing.T) {
	_, h, capture := createTestCompatBuilder(t)

	adapter := NewFastHTTPAdapter(h.GetLogger("custom"),
		WithDefaultLevel(vlog.LevelWarn),
		WithLevelDetector(nil),
	)
	adapter.Printf("request failed")

	events := capture.snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, vlog.LevelWarn, events[0].Level)
}

func TestDetectLogLevel(t *testing.T) {
	level, ok := DetectLogLevel("panic in handler")
	assert.True(t, ok)
	assert.Equal(t, vlog.LevelError, level)

	level, ok = DetectLogLevel("deprecated option")
	assert.True(t, ok)
	assert.Equal(t, vlog.LevelWarn, level)

	_, ok = DetectLogLevel("listening on :8080")
	assert.False(t, ok)
}

func TestAdaptersWriteToFile(t *testing.T) {
	dir := t.TempDir()
	h, err := vlog.NewBuilder().
		EnableConsole(false).
		Directory(dir).
		Layout(vlog.LayoutJSON).
		LevelString("debug").
		Build()
	require.NoError(t, err)

	builder := NewBuilder().WithHandle(h)
	gnetAdapter, err := builder.BuildGnet()
	require.NoError(t, err)
	fastAdapter, err := builder.BuildFastHTTP()
	require.NoError(t, err)

	gnetAdapter.Infof("engine started")
	fastAdapter.Printf("GET /health")

	require.NoError(t, h.Shutdown(2*time.Second))

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)

	f, err := os.Open(filepath.Join(dir, files[0].Name()))
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"loggerName":"gnet"`)
	assert.Contains(t, lines[0], `"message":"engine started"`)
	assert.Contains(t, lines[1], `"loggerName":"fasthttp"`)
}
