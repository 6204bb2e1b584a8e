// FILE: cmd/vlogdemo/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"

	"github.com/lixenwraith/vlog"
)

func main() {
	app := cli.NewApp()
	app.Name = "vlogdemo"
	app.Usage = "Drive the vlog pipeline from the command line"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "TOML file with a [vlog] table, watched for changes",
		},
		&cli.StringFlag{
			Name:  "dir",
			Usage: "Directory for rolling files (empty disables the file sink)",
		},
		&cli.StringFlag{
			Name:  "level",
			Usage: "Threshold: trace, debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:  "layout",
			Usage: "Output layout: " + strings.Join(vlog.LayoutNames(), ", "),
		},
		&cli.Int64Flag{
			Name:  "retention",
			Value: -1,
			Usage: "Days of rolling files kept (0 keeps everything)",
		},
		&cli.StringFlag{
			Name:  "max-size",
			Usage: "Rotation size such as 512KB or 10MiB",
		},
		&cli.StringFlag{
			Name:  "metrics-addr",
			Usage: "Serve sink counters on this address at /metrics",
		},
	}
	app.Commands = []*cli.Command{
		{
			Name:  "emit",
			Usage: "Write one event per level",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "count", Value: 1, Usage: "Rounds of events"},
			},
			Action: runEmit,
		},
		{
			Name:  "stress",
			Usage: "Log random messages from many goroutines",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "goroutines", Value: 50},
				&cli.IntFlag{Name: "count", Value: 1000, Usage: "Events per goroutine"},
				&cli.IntFlag{Name: "max-message", Value: 2048, Usage: "Upper bound of random message size"},
			},
			Action: runStress,
		},
		{
			Name:  "heartbeat",
			Usage: "Emit heartbeat events until interrupted",
			Flags: []cli.Flag{
				&cli.DurationFlag{Name: "interval", Value: time.Second},
			},
			Action: runHeartbeat,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// loadConfig layers file, environment and flags, in that order
func loadConfig(c *cli.Context) (*vlog.Config, error) {
	cfg := vlog.DefaultConfig()
	if path := c.String("config"); path != "" {
		fileCfg, err := vlog.NewConfigFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	cfg, err := vlog.ApplyEnv(cfg)
	if err != nil {
		return nil, err
	}

	var overrides []string
	if c.IsSet("dir") {
		overrides = append(overrides, "directory="+c.String("dir"))
	}
	if c.IsSet("level") {
		overrides = append(overrides, "level="+c.String("level"))
	}
	if c.IsSet("layout") {
		overrides = append(overrides, "layout="+c.String("layout"))
	}
	if c.Int64("retention") >= 0 {
		overrides = append(overrides, fmt.Sprintf("retention_days=%d", c.Int64("retention")))
	}
	if c.IsSet("max-size") {
		overrides = append(overrides, "max_file_size="+c.String("max-size"))
	}
	if len(overrides) > 0 {
		if err := cfg.ApplyOverride(overrides...); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// setup builds the handle and starts the optional watcher and metrics endpoint.
// The returned stop function shuts everything down.
func setup(c *cli.Context, cfg *vlog.Config) (*vlog.Handle, func(), error) {
	h, err := vlog.Init(cfg)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithCancel(c.Context)
	if path := c.String("config"); path != "" {
		if err := h.WatchConfig(ctx, path); err != nil {
			cancel()
			_ = h.Shutdown(time.Second)
			return nil, nil, err
		}
	}

	var server *http.Server
	if addr := c.String("metrics-addr"); addr != "" {
		reg := prometheus.NewRegistry()
		if err := h.RegisterMetrics(reg); err != nil {
			cancel()
			_ = h.Shutdown(time.Second)
			return nil, nil, err
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		server = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				h.GetLogger("vlogdemo").ErrorErr(err, "metrics endpoint on {} failed", addr)
			}
		}()
	}

	stop := func() {
		cancel()
		if server != nil {
			shutdownCtx, done := context.WithTimeout(context.Background(), time.Second)
			_ = server.Shutdown(shutdownCtx)
			done()
		}
		timeout := time.Duration(cfg.StopTimeoutMs) * time.Millisecond
		if err := h.Shutdown(timeout + 3*time.Second); err != nil {
			fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
		}
	}
	return h, stop, nil
}

func runEmit(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	h, stop, err := setup(c, cfg)
	if err != nil {
		return err
	}
	defer stop()

	logger := h.GetLogger("vlogdemo.emit")
	for i := 0; i < c.Int("count"); i++ {
		logger.Trace("round {} trace", i)
		logger.Debug("round {} debug", i)
		logger.Info("round {} info", i)
		logger.Warn("round {} warn", i)
		logger.ErrorErr(errors.New("sample failure"), "round {} error", i)
	}
	return nil
}

func runStress(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	h, stop, err := setup(c, cfg)
	if err != nil {
		return err
	}
	defer stop()

	workers := c.Int("goroutines")
	perWorker := c.Int("count")
	maxMessage := c.Int("max-message")
	if maxMessage < 1 {
		maxMessage = 1
	}

	var emitted atomic.Int64
	var volume atomic.Int64
	start := time.Now()

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			logger := h.GetLogger(fmt.Sprintf("vlogdemo.stress.%d", worker%8))
			levels := vlog.Levels()
			for i := 0; i < perWorker; i++ {
				msg := randomMessage(rand.Intn(maxMessage) + 1)
				logger.Log(levels[rand.Intn(len(levels))], nil, "wkr={} seq={} {}", worker, i, msg)
				emitted.Add(1)
				volume.Add(int64(len(msg)))
			}
		}(w)
	}
	wg.Wait()

	if err := h.Drain(30 * time.Second); err != nil {
		fmt.Fprintf(os.Stderr, "drain: %v\n", err)
	}
	elapsed := time.Since(start)

	fmt.Printf("emitted %s events (%s of messages) in %v\n",
		humanize.Comma(emitted.Load()), humanize.Bytes(uint64(volume.Load())), elapsed.Round(time.Millisecond))
	for _, st := range h.Stats() {
		fmt.Println(st)
	}
	return nil
}

func runHeartbeat(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	interval := c.Duration("interval")
	if interval < time.Second {
		interval = time.Second
	}
	cfg.HeartbeatIntervalS = int64(interval / time.Second)

	_, stop, err := setup(c, cfg)
	if err != nil {
		return err
	}
	defer stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
	case <-c.Context.Done():
	}
	return nil
}

func randomMessage(size int) string {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 "
	var sb strings.Builder
	sb.Grow(size)
	for i := 0; i < size; i++ {
		sb.WriteByte(chars[rand.Intn(len(chars))])
	}
	return sb.String()
}
