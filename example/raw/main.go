// FILE: example/raw/main.go
package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/lixenwraith/vlog"
)

// TestPayload exercises rendering of composite arguments
type TestPayload struct {
	RequestID uint64
	User      string
	Metrics   map[string]float64
	Parent    *TestPayload
}

func main() {
	fmt.Println("--- Argument rendering ---")

	payload := &TestPayload{
		RequestID: 9223372036854775807,
		User:      "test_user",
		Metrics: map[string]float64{
			"latency_ms": 15.7,
			"cpu_percent": 88.2,
		},
		Parent: &TestPayload{RequestID: 1, User: "parent"},
	}

	for _, sanitize := range []bool{false, true} {
		for _, layout := range []string{vlog.LayoutLine, vlog.LayoutJSON} {
			fmt.Printf("\n[layout=%s sanitize=%t]\n", layout, sanitize)

			h, err := vlog.NewBuilder().
				Layout(layout).
				Sanitize(sanitize).
				LevelString("trace").
				Build()
			if err != nil {
				panic(err)
			}

			logger := h.GetLogger("raw")
			logger.Info("bytes={}", []byte("binary\ndata\twith\x00null"))
			logger.Info("payload={}", payload)
			logger.Debug("mixed {} {} {} {}", 42, 3.14, true, nil)
			logger.Warn("at {} after {}", time.Now(), 1500*time.Millisecond)
			logger.ErrorErr(errors.New("disk quota exceeded"), "write failed for {}", "user-42")

			if err := h.Shutdown(time.Second); err != nil {
				fmt.Printf("Shutdown error: %v\n", err)
			}
		}
	}
}
