package service

import (
	"context"
	"errors"
	"testing"

	"github.com/kbukum/httpservice/component"
	"github.com/kbukum/httpservice/logger"
	"github.com/kbukum/httpservice/transport"
)

func TestComponent_Lifecycle(t *testing.T) {
	ft := &fakeTransport{response: []byte(okJSON)}
	c := NewComponent(Config{Name: "users-api", Persistent: true},
		WithLogger(logger.Nop()),
		WithTransportFactory(func(transport.Config) (transport.Transport, error) { return ft, nil }),
	)
	ctx := context.Background()

	if c.Name() != "users-api" {
		t.Errorf("unexpected name %q", c.Name())
	}
	if h := c.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before Start, got %s", h.Status)
	}

	reg := component.NewRegistry()
	if err := reg.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := reg.StartAll(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Service() == nil {
		t.Fatal("expected the Service to be built by Start")
	}

	health := reg.HealthAll(ctx)
	if len(health) != 1 || health[0].Status != component.StatusHealthy {
		t.Errorf("expected healthy component, got %+v", health)
	}
	if c.Service().Connected() {
		t.Error("expected the health probe to disconnect")
	}

	ft.openErr = errors.New("refused")
	if h := c.Health(ctx); h.Status != component.StatusUnhealthy || h.Message != "cannot connect to tcp://localhost:80" {
		t.Errorf("unexpected health %+v", h)
	}
	ft.openErr = nil
	ft.closeErr = errors.New("reset")
	if h := c.Health(ctx); h.Status != component.StatusDegraded {
		t.Errorf("expected degraded health, got %+v", h)
	}
	ft.closeErr = nil

	if err := reg.StopAll(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Service().Connected() {
		t.Error("expected Stop to disconnect")
	}
}

func TestComponent_StartInvalidConfig(t *testing.T) {
	c := NewComponent(Config{Protocol: "carrier-pigeon"})
	if err := c.Start(context.Background()); !IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
	if err := c.Stop(context.Background()); err != nil {
		t.Errorf("expected Stop on an unstarted component to succeed, got %v", err)
	}
}

func TestComponent_Describe(t *testing.T) {
	c := NewComponent(Config{Host: "api.example", Port: 8080, Persistent: true})
	d := c.Describe()
	if d.Name != "httpservice" || d.Type != "http-service" || d.Port != 8080 {
		t.Errorf("unexpected description %+v", d)
	}
	if want := "tcp://api.example:8080 persistent timeout=1s"; d.Details != want {
		t.Errorf("expected details %q, got %q", want, d.Details)
	}
}
