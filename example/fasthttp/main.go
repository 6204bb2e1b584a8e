// FILE: example/fasthttp/main.go
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/lixenwraith/vlog"
	"github.com/lixenwraith/vlog/compat"
)

func main() {
	cfg, err := vlog.NewConfigFromOverrides(
		"directory=/var/log/fasthttp",
		"level=info",
		"layout=line",
		"buffer_size=2048",
	)
	if err != nil {
		panic(err)
	}
	h, err := vlog.Init(cfg)
	if err != nil {
		panic(err)
	}
	defer h.Shutdown(2 * time.Second)

	adapter := compat.NewFastHTTPAdapter(
		h.GetLogger(compat.FastHTTPLoggerName),
		compat.WithDefaultLevel(vlog.LevelInfo),
		compat.WithLevelDetector(customLevelDetector),
	)

	access := h.GetLogger("access")
	server := &fasthttp.Server{
		Handler: func(ctx *fasthttp.RequestCtx) {
			ctx.SetContentType("text/plain")
			fmt.Fprintf(ctx, "Hello, world! Path: %s\n", ctx.Path())
			access.Info("{} {} {}", string(ctx.Method()), string(ctx.Path()), ctx.Response.StatusCode())
		},
		Logger: adapter,

		Name:              "vlog-example",
		Concurrency:       fasthttp.DefaultConcurrency,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		TCPKeepalive:      true,
		ReduceMemoryUsage: true,
	}

	h.GetLogger("main").Info("starting server on {}", ":8080")
	if err := server.ListenAndServe(":8080"); err != nil {
		panic(err)
	}
}

// customLevelDetector maps known fasthttp messages before falling back to keywords
func customLevelDetector(msg string) (vlog.Level, bool) {
	if strings.Contains(msg, "connection cannot be served") {
		return vlog.LevelWarn, true
	}
	if strings.Contains(msg, "error when serving connection") {
		return vlog.LevelError, true
	}
	return compat.DetectLogLevel(msg)
}
