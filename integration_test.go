// FILE: lixenwraith/vlog/integration_test.go
package vlog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readJSONLines returns the decoded records of every log file in dir, in file
// sequence order
func readJSONLines(t *testing.T, dir string) []map[string]string {
	t.Helper()
	names := listLogFiles(t, dir)
	sort.Slice(names, func(i, j int) bool {
		_, si, _ := parseLogFileName(names[i])
		_, sj, _ := parseLogFileName(names[j])
		return si < sj
	})

	var records []map[string]string
	for _, name := range names {
		f, err := os.Open(filepath.Join(dir, name))
		require.NoError(t, err)
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			var m map[string]string
			require.NoError(t, json.Unmarshal(scanner.Bytes(), &m), scanner.Text())
			records = append(records, m)
		}
		require.NoError(t, scanner.Err())
		f.Close()
	}
	return records
}

func TestFullLifecycle(t *testing.T) {
	tmpDir := t.TempDir()

	h, err := NewBuilder().
		Directory(tmpDir).
		LevelString("debug").
		Layout(LayoutJSON).
		MaxFileSize("2KiB").
		EnableConsole(false).
		FlushInterval(10 * time.Millisecond).
		Build()
	require.NoError(t, err)

	const workers, perWorker = 4, 100
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			logger := h.GetLogger("worker")
			for i := 0; i < perWorker; i++ {
				logger.Info("worker {} step {}", w, i)
			}
		}(w)
	}
	wg.Wait()

	h.GetLogger("worker").Trace("below the threshold")
	require.NoError(t, h.Shutdown(5*time.Second))

	files := listLogFiles(t, tmpDir)
	assert.Greater(t, len(files), 1, "small files force rotation")
	for _, name := range files {
		info, err := os.Stat(filepath.Join(tmpDir, name))
		require.NoError(t, err)
		assert.LessOrEqual(t, info.Size(), int64(2048), name)
	}

	records := readJSONLines(t, tmpDir)
	require.Len(t, records, workers*perWorker)

	// Each worker's events appear in emission order across the rotated files
	next := map[string]int{}
	threadOf := map[string]string{}
	for _, r := range records {
		assert.Equal(t, "INFO", r["level"])
		assert.Equal(t, "worker", r["loggerName"])

		fields := strings.Fields(r["message"])
		require.Len(t, fields, 4)
		worker, step := fields[1], fields[3]

		if thread, ok := threadOf[worker]; ok {
			assert.Equal(t, thread, r["threadName"])
		} else {
			threadOf[worker] = r["threadName"]
		}
		n, err := strconv.Atoi(step)
		require.NoError(t, err)
		assert.Equal(t, next[worker], n, "worker %s out of order", worker)
		next[worker]++
	}
}

func TestRestartResumesFiles(t *testing.T) {
	tmpDir := t.TempDir()
	build := func() *Handle {
		h, err := NewBuilder().Directory(tmpDir).EnableConsole(false).Build()
		require.NoError(t, err)
		return h
	}

	h1 := build()
	h1.GetLogger("run").Info("first run")
	require.NoError(t, h1.Shutdown(2*time.Second))

	h2 := build()
	h2.GetLogger("run").Info("second run")
	require.NoError(t, h2.Shutdown(2*time.Second))

	files := listLogFiles(t, tmpDir)
	require.Len(t, files, 1, "a restart appends to the day's latest file")
	content, err := os.ReadFile(filepath.Join(tmpDir, files[0]))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(content), "\n"))
	assert.Less(t, strings.Index(string(content), "first run"), strings.Index(string(content), "second run"))
}
