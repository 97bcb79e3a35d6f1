package service

import (
	"context"
	"fmt"

	"github.com/kbukum/httpservice/component"
)

// compile-time assertions
var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// Component wraps a Service with lifecycle management so it can be
// registered in a component.Registry.
type Component struct {
	config Config
	opts   []Option
	svc    *Service
}

// NewComponent creates a Service component. The Service is built in Start.
func NewComponent(cfg Config, opts ...Option) *Component {
	return &Component{config: cfg, opts: opts}
}

// Name returns the component name.
func (c *Component) Name() string {
	if c.config.Name == "" {
		return "httpservice"
	}
	return c.config.Name
}

// Start builds the Service.
func (c *Component) Start(_ context.Context) error {
	svc, err := New(c.config, c.opts...)
	if err != nil {
		return err
	}
	c.svc = svc
	return nil
}

// Stop disconnects and releases any persistent channel.
func (c *Component) Stop(_ context.Context) error {
	if c.svc == nil {
		return nil
	}
	return c.svc.Close()
}

// Health probes the endpoint by connecting and disconnecting.
func (c *Component) Health(ctx context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	if c.svc == nil {
		h.Status = component.StatusUnhealthy
		h.Message = "not started"
		return h
	}
	if !c.svc.Connect(ctx) {
		h.Status = component.StatusUnhealthy
		h.Message = "cannot connect to " + c.svc.cfg.Address()
		return h
	}
	if !c.svc.Disconnect() {
		h.Status = component.StatusDegraded
		h.Message = "disconnect failed"
	}
	return h
}

// Describe returns the component description.
func (c *Component) Describe() component.Description {
	cfg := c.config
	cfg.ApplyDefaults()
	details := cfg.Address()
	if cfg.Persistent {
		details += " persistent"
	}
	return component.Description{
		Name:    c.Name(),
		Type:    "http-service",
		Details: fmt.Sprintf("%s timeout=%s", details, cfg.Timeout),
		Port:    cfg.Port,
	}
}

// Service returns the underlying Service. Must be called after Start.
func (c *Component) Service() *Service {
	return c.svc
}
