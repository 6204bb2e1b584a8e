// FILE: example/gnet/main.go
package main

import (
	"time"

	"github.com/panjf2000/gnet/v2"

	"github.com/lixenwraith/vlog"
	"github.com/lixenwraith/vlog/compat"
)

// echoServer echoes every inbound buffer
type echoServer struct {
	gnet.BuiltinEventEngine
	logger *vlog.Logger
}

func (es *echoServer) OnBoot(eng gnet.Engine) gnet.Action {
	es.logger.Info("echo server booted")
	return gnet.None
}

func (es *echoServer) OnTraffic(c gnet.Conn) gnet.Action {
	buf, _ := c.Next(-1)
	es.logger.Debug("echo {} bytes to {}", len(buf), c.RemoteAddr())
	_, _ = c.Write(buf)
	return gnet.None
}

func main() {
	h, err := vlog.NewBuilder().
		Directory("/var/log/gnet").
		LevelString("debug").
		Layout(vlog.LayoutJSON).
		MaxFileSize("10MB").
		Build()
	if err != nil {
		panic(err)
	}
	defer h.Shutdown(2 * time.Second)

	adapter, err := compat.NewBuilder().WithHandle(h).BuildGnet()
	if err != nil {
		panic(err)
	}

	err = gnet.Run(
		&echoServer{logger: h.GetLogger("echo")},
		"tcp://127.0.0.1:9000",
		gnet.WithMulticore(true),
		gnet.WithLogger(adapter),
		gnet.WithReusePort(true),
	)
	if err != nil {
		panic(err)
	}
}
