// FILE: lixenwraith/vlog/compat/builder.go
package compat

import (
	"fmt"

	"github.com/lixenwraith/vlog"
)

// Logger names used for adapter output
const (
	GnetLoggerName     = "gnet"
	FastHTTPLoggerName = "fasthttp"
)

// Builder creates adapters for gnet and fasthttp sharing one vlog Handle.
// It uses an existing Handle or initializes one from a Config.
type Builder struct {
	handle *vlog.Handle
	cfg    *vlog.Config
	err    error
}

// NewBuilder creates a new adapter builder
func NewBuilder() *Builder {
	return &Builder{}
}

// WithHandle uses an existing handle; WithConfig is then ignored
func (b *Builder) WithHandle(h *vlog.Handle) *Builder {
	if h == nil {
		b.err = fmt.Errorf("vlog/compat: provided handle cannot be nil")
		return b
	}
	b.handle = h
	return b
}

// WithConfig provides a configuration for a new handle, used only when no
// handle was given. Without either, the defaults are used.
func (b *Builder) WithConfig(cfg *vlog.Config) *Builder {
	b.cfg = cfg
	return b
}

// getHandle resolves the handle, initializing one on first use
func (b *Builder) getHandle() (*vlog.Handle, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.handle != nil {
		return b.handle, nil
	}

	h, err := vlog.Init(b.cfg)
	if err != nil {
		return nil, err
	}
	b.handle = h
	return h, nil
}

// BuildGnet creates a gnet adapter logging as "gnet". Fatalf drains the
// handle before the fatal handler runs.
func (b *Builder) BuildGnet(opts ...GnetOption) (*GnetAdapter, error) {
	h, err := b.getHandle()
	if err != nil {
		return nil, err
	}
	opts = append([]GnetOption{WithDrainer(h, 0)}, opts...)
	return NewGnetAdapter(h.GetLogger(GnetLoggerName), opts...), nil
}

// BuildFastHTTP creates a fasthttp adapter logging as "fasthttp"
func (b *Builder) BuildFastHTTP(opts ...FastHTTPOption) (*FastHTTPAdapter, error) {
	h, err := b.getHandle()
	if err != nil {
		return nil, err
	}
	return NewFastHTTPAdapter(h.GetLogger(FastHTTPLoggerName), opts...), nil
}

// GetHandle returns the underlying handle, initializing it if needed
func (b *Builder) GetHandle() (*vlog.Handle, error) {
	return b.getHandle()
}
