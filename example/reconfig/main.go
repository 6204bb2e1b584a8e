// FILE: example/reconfig/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/vlog"
)

// Rewrites the config file while a goroutine logs at every level, showing the
// threshold follow the file.
func main() {
	dir, err := os.MkdirTemp("", "vlog-reconfig")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "vlog.toml")
	writeLevel(path, "error")

	cfg, err := vlog.NewConfigFromFile(path)
	if err != nil {
		panic(err)
	}
	h, err := vlog.Init(cfg)
	if err != nil {
		panic(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := h.WatchConfig(ctx, path); err != nil {
		panic(err)
	}

	var count atomic.Int64
	logger := h.GetLogger("reconfig")
	go func() {
		for i := 0; ctx.Err() == nil; i++ {
			for _, level := range vlog.Levels() {
				logger.Log(level, nil, "tick {} at {}", i, level)
			}
			count.Add(1)
			time.Sleep(100 * time.Millisecond)
		}
	}()

	for _, level := range []string{"warn", "info", "debug", "trace", "error"} {
		time.Sleep(500 * time.Millisecond)
		writeLevel(path, level)
	}
	time.Sleep(500 * time.Millisecond)

	cancel()
	if err := h.Shutdown(2 * time.Second); err != nil {
		fmt.Printf("Shutdown error: %v\n", err)
	}
	fmt.Printf("Ticks: %d, final level: %s\n", count.Load(), h.Level())
}

func writeLevel(path, level string) {
	content := fmt.Sprintf("[vlog]\nlevel = %q\n", level)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0644); err != nil {
		panic(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		panic(err)
	}
}
