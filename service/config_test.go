package service

import (
	"testing"
	"time"

	"github.com/kbukum/httpservice/security"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	want := Config{
		Protocol: "tcp",
		Host:     "localhost",
		Version:  "1.1",
		Auth:     "Basic",
		Login:    "root",
		Port:     80,
		Timeout:  time.Second,
		Encoding: "UTF-8",
	}
	if cfg.Persistent {
		t.Error("expected Persistent to default to false")
	}
	if cfg.Protocol != want.Protocol || cfg.Host != want.Host || cfg.Version != want.Version ||
		cfg.Auth != want.Auth || cfg.Login != want.Login || cfg.Password != "" ||
		cfg.Port != want.Port || cfg.Timeout != want.Timeout || cfg.Encoding != want.Encoding {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestConfig_ApplyDefaults_KeepsValues(t *testing.T) {
	cfg := Config{Protocol: "TLS", Host: "api.example", Port: 8443, Timeout: 5 * time.Second, Login: "svc"}
	cfg.ApplyDefaults()
	if cfg.Protocol != "tls" || cfg.Host != "api.example" || cfg.Port != 8443 ||
		cfg.Timeout != 5*time.Second || cfg.Login != "svc" {
		t.Errorf("expected explicit values to survive, got %+v", cfg)
	}

	unix := Config{Protocol: "unix", Host: "/tmp/app.sock"}
	unix.ApplyDefaults()
	if unix.Port != 0 {
		t.Errorf("expected no default port for unix, got %d", unix.Port)
	}
	if got := unix.Address(); got != "unix:///tmp/app.sock" {
		t.Errorf("unexpected address %q", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"protocol", func(c *Config) { c.Protocol = "quic" }},
		{"version", func(c *Config) { c.Version = "2.0" }},
		{"port", func(c *Config) { c.Port = 70000 }},
		{"encoding", func(c *Config) { c.Encoding = "klingon" }},
		{"header", func(c *Config) { c.Headers = map[string]string{"Bad Name": "x"} }},
		{"tls", func(c *Config) { c.TLS = &security.TLSConfig{CertFile: "client.pem"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
			if _, err := New(cfg); !IsValidation(err) {
				t.Errorf("expected New to return a validation error, got %v", err)
			}
		})
	}
}

func TestConfig_AuthInfo(t *testing.T) {
	cfg := Config{Auth: "Basic", Login: "admin", Password: "secret"}
	auth := cfg.AuthInfo()
	if auth.Method != "Basic" || auth.Username != "admin" || auth.Password != "secret" {
		t.Errorf("unexpected auth %+v", auth)
	}
}

func TestService_ConfigIsCopied(t *testing.T) {
	headers := map[string]string{"X-Tenant": "acme"}
	svc, err := New(Config{Headers: headers, TLS: &security.TLSConfig{ServerName: "a"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	headers["X-Tenant"] = "changed"

	cfg := svc.Config()
	if cfg.Headers["X-Tenant"] != "acme" {
		t.Error("expected the Service to own its headers")
	}
	cfg.Headers["X-Tenant"] = "mutated"
	cfg.TLS.ServerName = "b"
	again := svc.Config()
	if again.Headers["X-Tenant"] != "acme" || again.TLS.ServerName != "a" {
		t.Error("expected Config to return an independent copy")
	}
	if again.Port != 80 || again.Timeout != time.Second {
		t.Errorf("expected defaults to be applied at construction, got %+v", again)
	}
}
