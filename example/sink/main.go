// FILE: example/sink/main.go
package main

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lixenwraith/vlog"
)

const logDirectory = "./temp_logs"

// warnCounter is a custom writer that only accepts WARN and above and
// tallies them per logger.
type warnCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

func (w *warnCounter) Support(e *vlog.Event) bool {
	return e != nil && e.Level >= vlog.LevelWarn
}

func (w *warnCounter) Write(e *vlog.Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.counts[e.LoggerName]++
	return nil
}

func main() {
	if err := os.RemoveAll(logDirectory); err != nil {
		fmt.Printf("Warning: could not remove old log directory: %v\n", err)
	}

	counter := &warnCounter{counts: make(map[string]int)}
	custom := vlog.NewAsyncSink("warn-counter", counter, vlog.AsyncOptions{})

	h, err := vlog.NewBuilder().
		Directory(logDirectory).
		MaxFileBytes(4096).
		RetentionDays(3).
		LevelString("debug").
		Sink(custom).
		Build()
	if err != nil {
		fmt.Printf("Fatal: %v\n", err)
		os.Exit(1)
	}

	var wg sync.WaitGroup
	for _, name := range []string{"api", "db", "cache"} {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			logger := h.GetLogger(name)
			for i := 0; i < 100; i++ {
				switch i % 10 {
				case 0:
					logger.Error("{} failure #{}", name, i)
				case 1, 2:
					logger.Warn("{} slow call #{}", name, i)
				default:
					logger.Debug("{} call #{}", name, i)
				}
			}
		}(name)
	}
	wg.Wait()

	if err := h.Shutdown(2 * time.Second); err != nil {
		fmt.Printf("Shutdown error: %v\n", err)
	}

	counter.mu.Lock()
	for name, n := range counter.counts {
		fmt.Printf("%-6s warn+ events: %d\n", name, n)
	}
	counter.mu.Unlock()

	entries, _ := os.ReadDir(logDirectory)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	fmt.Printf("files in %s: %s\n", logDirectory, strings.Join(names, ", "))
	for _, st := range h.Stats() {
		fmt.Println(st)
	}
}
