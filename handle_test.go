// FILE: lixenwraith/vlog/handle_test.go
package vlog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDefaults(t *testing.T) {
	h, err := Init(nil)
	require.NoError(t, err)
	defer h.Shutdown(time.Second)

	sinks := h.Sink().Sinks()
	require.Len(t, sinks, 1, "defaults enable the console only")
	assert.Equal(t, "console", sinks[0].(*AsyncSink).Name())
	assert.True(t, sinks[0].Started())
	assert.Equal(t, LevelInfo, h.Level())
}

func TestInitRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Level = "loud"
	_, err := Init(cfg)
	assert.ErrorIs(t, err, ErrInvalidLevel)

	cfg = DefaultConfig()
	cfg.Layout = "xml"
	_, err = Init(cfg)
	assert.ErrorIs(t, err, ErrUnknownLayout)
}

func TestInitStopsSinksWhenOneFails(t *testing.T) {
	captureInternal(t)
	healthy := &captureSink{}
	broken := &captureSink{startErr: errors.New("no device")}

	cfg := DefaultConfig()
	cfg.EnableConsole = false
	_, err := Init(cfg, healthy, broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no device")
	assert.False(t, healthy.Started(), "started sinks are stopped again")
}

func TestHandleWritesToFile(t *testing.T) {
	h, tmpDir := createTestHandle(t)

	logger := h.GetLogger("app")
	logger.Info("hello {}", "world")
	logger.ErrorErr(errors.New("boom"), "request {} failed", 7)

	require.NoError(t, h.Shutdown(2*time.Second))

	files := listLogFiles(t, tmpDir)
	require.Equal(t, []string{time.Now().Format(dayLayout) + ".log"}, files)

	content, err := os.ReadFile(filepath.Join(tmpDir, files[0]))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "[INFO] [app] - hello world")
	assert.Contains(t, lines[1], "[ERROR] [app] - request 7 failed")
	assert.Equal(t, "boom", lines[2])
}

func TestGetLoggerMemoized(t *testing.T) {
	h, _ := createTestHandle(t)

	a := h.GetLogger("a")
	assert.Same(t, a, h.GetLogger("a"))
	assert.NotSame(t, a, h.GetLogger("b"))
	assert.Equal(t, "a", a.Name())

	var wg sync.WaitGroup
	loggers := make([]*Logger, 20)
	for i := range loggers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			loggers[i] = h.GetLogger("shared")
		}(i)
	}
	wg.Wait()
	for _, l := range loggers {
		assert.Same(t, loggers[0], l)
	}
}

func TestHandleSetLevel(t *testing.T) {
	extra := &captureSink{}
	h, _ := createTestHandle(t, extra)

	before := h.GetLogger("before")
	h.SetLevel(LevelWarn)
	after := h.GetLogger("after")

	assert.Equal(t, LevelWarn, h.Level())
	assert.Equal(t, LevelWarn, before.Level())
	assert.Equal(t, LevelWarn, after.Level())
	assert.Equal(t, "warn", h.GetConfig().Level)

	before.Info("dropped")
	after.Warn("kept")
	events := extra.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "kept", events[0].Message)
}

func TestHandleSetTraceDepth(t *testing.T) {
	extra := &captureSink{}
	h, _ := createTestHandle(t, extra)
	logger := h.GetLogger("traced")

	require.NoError(t, h.SetTraceDepth(2))
	assert.Equal(t, int64(2), h.GetConfig().TraceDepth)
	logger.Info("with trace")
	require.Len(t, extra.Events(), 1)
	assert.NotEmpty(t, extra.Events()[0].Trace)

	assert.Error(t, h.SetTraceDepth(11))
	assert.Error(t, h.SetTraceDepth(-1))
	assert.Equal(t, int64(2), h.GetConfig().TraceDepth)
}

func TestHandleAddSink(t *testing.T) {
	h, _ := createTestHandle(t)
	late := &captureSink{}

	require.NoError(t, h.AddSink(late))
	assert.True(t, late.Started(), "sinks added to a running handle are started")

	h.GetLogger("late").Info("reaches the new sink")
	assert.Len(t, late.Events(), 1)

	require.NoError(t, h.Shutdown(time.Second))
	assert.ErrorIs(t, h.AddSink(&captureSink{}), ErrShutdown)
}

func TestHandleShutdown(t *testing.T) {
	w := &recordingWriter{delay: time.Millisecond}
	slow := NewAsyncSink("slow", w, AsyncOptions{})
	h, _ := createTestHandle(t, slow)

	logger := h.GetLogger("app")
	for i := 0; i < 100; i++ {
		logger.Info("event {}", i)
	}

	require.NoError(t, h.Shutdown(5*time.Second))
	assert.Len(t, w.Events(), 100, "shutdown drains before stopping")
	assert.False(t, slow.Started())

	// Idempotent, and loggers become no-ops
	assert.NoError(t, h.Shutdown(time.Second))
	assert.False(t, logger.Enabled(LevelError))
	assert.False(t, h.GetLogger("new").Enabled(LevelError))
	logger.Error("ignored")
	assert.Len(t, w.Events(), 100)

	// Level changes after shutdown do not revive loggers
	h.SetLevel(LevelTrace)
	assert.False(t, logger.Enabled(LevelError))
}

func TestHandleSetLevelRacingShutdown(t *testing.T) {
	for i := 0; i < 50; i++ {
		cfg := DefaultConfig()
		cfg.EnableConsole = false
		h, err := Init(cfg, &captureSink{})
		require.NoError(t, err)

		loggers := []*Logger{h.GetLogger("a"), h.GetLogger("b"), h.GetLogger("c")}

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				h.SetLevel(LevelTrace)
			}
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, h.Shutdown(time.Second))
		}()
		wg.Wait()

		for _, l := range loggers {
			assert.False(t, l.Enabled(LevelError), "logger %s revived after shutdown", l.Name())
		}
	}
}

func TestHandleShutdownTimeout(t *testing.T) {
	captureInternal(t)
	w := &recordingWriter{delay: 50 * time.Millisecond}
	h, _ := createTestHandle(t, NewAsyncSink("slow", w, AsyncOptions{StopTimeout: time.Second}))

	logger := h.GetLogger("app")
	for i := 0; i < 20; i++ {
		logger.Info("event {}", i)
	}

	err := h.Shutdown(20 * time.Millisecond)
	assert.ErrorIs(t, err, ErrDrainTimeout)
	assert.Less(t, len(w.Events()), 20)
}

func TestHandleStatsAndFlush(t *testing.T) {
	h, _ := createTestHandle(t)
	logger := h.GetLogger("stats")
	for i := 0; i < 10; i++ {
		logger.Debug("event {}", i)
	}
	require.NoError(t, h.Drain(2*time.Second))
	require.NoError(t, h.Flush(time.Second))

	stats := h.Stats()
	require.Len(t, stats, 1)
	st := stats[0]
	assert.Equal(t, "file", st.Name)
	assert.True(t, st.Started)
	assert.Equal(t, uint64(10), st.Written)
	assert.NotEmpty(t, st.CurrentFile)
	assert.Positive(t, st.CurrentSize)

	text := st.String()
	assert.Contains(t, text, "file: started=true")
	assert.Contains(t, text, "written=10")
	assert.Contains(t, text, "rotations=0")
}

func TestHeartbeatEvent(t *testing.T) {
	h, _ := createTestHandle(t)

	e := h.heartbeatEvent()
	assert.Equal(t, LevelInfo, e.Level)
	assert.Equal(t, "vlog.heartbeat", e.LoggerName)
	assert.Equal(t, uint64(1), e.Arguments[0])
	assert.Contains(t, e.Message, "dir_size={}")
	assert.Equal(t, strings.Count(e.Message, "{}"), len(e.Arguments))

	assert.Equal(t, uint64(2), h.heartbeatEvent().Arguments[0], "sequence increments")

	cfg := DefaultConfig()
	cfg.EnableConsole = false
	bare, err := Init(cfg)
	require.NoError(t, err)
	defer bare.Shutdown(time.Second)
	assert.NotContains(t, bare.heartbeatEvent().Message, "dir_size")
}

func TestHeartbeatScheduled(t *testing.T) {
	extra := &captureSink{}
	cfg := DefaultConfig()
	cfg.EnableConsole = false
	cfg.Level = "error" // heartbeats bypass the threshold
	cfg.HeartbeatIntervalS = 1

	h, err := Init(cfg, extra)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		for _, e := range extra.Events() {
			if e.LoggerName == heartbeatLoggerName {
				return true
			}
		}
		return false
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, h.Shutdown(time.Second))
	count := len(extra.Events())
	time.Sleep(1500 * time.Millisecond)
	assert.Len(t, extra.Events(), count, "no heartbeats after shutdown")
}
