package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type endpointConfig struct {
	Host    string            `mapstructure:"host"`
	Port    int               `mapstructure:"port"`
	Timeout time.Duration     `mapstructure:"timeout"`
	Headers map[string]string `mapstructure:"headers"`
	TLS     *tlsSection       `mapstructure:"tls"`
}

type tlsSection struct {
	SkipVerify bool `mapstructure:"skip_verify"`
}

type testConfig struct {
	AppConfig `yaml:",inline" mapstructure:",squash"`
	Service   endpointConfig `mapstructure:"service"`
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestAppConfig_ApplyDefaults(t *testing.T) {
	t.Run("development logs at debug", func(t *testing.T) {
		cfg := AppConfig{}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if cfg.Logging.Level != "debug" {
			t.Errorf("expected debug level, got %q", cfg.Logging.Level)
		}
		if cfg.Telemetry.Endpoint != "localhost:4318" || cfg.Telemetry.SampleRate != 1.0 {
			t.Errorf("unexpected telemetry defaults: %+v", cfg.Telemetry)
		}
	})

	t.Run("production keeps info", func(t *testing.T) {
		cfg := AppConfig{Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Logging.Level != "info" {
			t.Errorf("expected info level, got %q", cfg.Logging.Level)
		}
	})
}

func TestAppConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{"valid", func(*AppConfig) {}, ""},
		{"bad environment", func(c *AppConfig) { c.Environment = "qa" }, "config.environment must be one of"},
		{"bad log level", func(c *AppConfig) { c.Logging.Level = "loud" }, "config.logging"},
		{"bad sample rate", func(c *AppConfig) { c.Telemetry.SampleRate = 2 }, "sample_rate"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := AppConfig{}
			cfg.ApplyDefaults()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "httpservice.yml", `
name: orders
environment: staging
logging:
  level: warn
service:
  host: api.example
  port: 8080
  timeout: 250ms
  headers:
    X-Api-Key: secret
  tls:
    skip_verify: true
`)

	var cfg testConfig
	if err := Load("httpservice-test", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Name != "orders" || cfg.Environment != "staging" || cfg.Logging.Level != "warn" {
		t.Errorf("unexpected app config: %+v", cfg.AppConfig)
	}
	if cfg.Service.Host != "api.example" || cfg.Service.Port != 8080 {
		t.Errorf("unexpected service config: %+v", cfg.Service)
	}
	if cfg.Service.Timeout != 250*time.Millisecond {
		t.Errorf("expected 250ms timeout, got %v", cfg.Service.Timeout)
	}
	if cfg.Service.Headers["x-api-key"] != "secret" && cfg.Service.Headers["X-Api-Key"] != "secret" {
		t.Errorf("expected header to be loaded, got %v", cfg.Service.Headers)
	}
	if cfg.Service.TLS == nil || !cfg.Service.TLS.SkipVerify {
		t.Errorf("expected tls.skip_verify, got %+v", cfg.Service.TLS)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "httpservice.yml", "service:\n  host: from-file\n  port: 80\n")
	t.Setenv("ORDERS_SERVICE_HOST", "from-env")
	t.Setenv("ORDERS_SERVICE_TIMEOUT", "2s")

	var cfg testConfig
	if err := Load("orders", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Service.Host != "from-env" {
		t.Errorf("expected env to override host, got %q", cfg.Service.Host)
	}
	if cfg.Service.Port != 80 {
		t.Errorf("expected port from file, got %d", cfg.Service.Port)
	}
	if cfg.Service.Timeout != 2*time.Second {
		t.Errorf("expected 2s timeout from env, got %v", cfg.Service.Timeout)
	}
}

func TestLoad_EnvPrefix(t *testing.T) {
	t.Setenv("CUSTOM_ENVIRONMENT", "production")

	var cfg testConfig
	if err := Load("orders", &cfg, WithEnvPrefix("CUSTOM"), WithFileSystem(&mockFS{})); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Environment != "production" {
		t.Errorf("expected environment from CUSTOM_ENVIRONMENT, got %q", cfg.Environment)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	envPath := writeFile(t, ".env", "DOTENV_SERVICE_PORT=9090\n")
	t.Cleanup(func() { os.Unsetenv("DOTENV_SERVICE_PORT") })

	var cfg testConfig
	if err := Load("dotenv", &cfg, WithEnvFile(envPath), WithFileSystem(RealFileSystem{})); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Service.Port != 9090 {
		t.Errorf("expected port from .env, got %d", cfg.Service.Port)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	var cfg testConfig
	err := Load("orders", &cfg, WithConfigFile("/nonexistent/path.yml"))
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoad_NoFiles(t *testing.T) {
	var cfg testConfig
	if err := Load("orders", &cfg, WithFileSystem(&mockFS{})); err != nil {
		t.Fatalf("expected Load to succeed without files, got %v", err)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeFile(t, "bad.yml", "service: [unclosed\n")
	var cfg testConfig
	if err := Load("orders", &cfg, WithConfigFile(path)); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

type mockFS struct {
	files   map[string]bool
	envErr  error
	envRead []string
}

func (m *mockFS) Exists(path string) bool { return m.files[path] }

func (m *mockFS) LoadEnv(path string) error {
	m.envRead = append(m.envRead, path)
	return m.envErr
}

func TestResolver_ResolveFiles(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./config/orders.yaml": true,
		"./config.yml":         true,
		".env":                 true,
	}}
	resolver := &Resolver{FileSystem: fs}

	files := resolver.ResolveFiles("orders", LoaderConfig{})
	if files.ConfigFile != "./config/orders.yaml" {
		t.Errorf("expected ./config/orders.yaml, got %q", files.ConfigFile)
	}
	if files.EnvFile != ".env" {
		t.Errorf("expected .env, got %q", files.EnvFile)
	}

	files = resolver.ResolveFiles("orders", LoaderConfig{ConfigFile: "/etc/orders.yml", EnvFile: "/etc/orders.env"})
	if files.ConfigFile != "/etc/orders.yml" || files.EnvFile != "/etc/orders.env" {
		t.Errorf("expected explicit files to win, got %+v", files)
	}
}

func TestLoad_EnvFileErrorIsNotFatal(t *testing.T) {
	fs := &mockFS{files: map[string]bool{".env": true}, envErr: errors.New("permission denied")}
	var cfg testConfig
	if err := Load("orders", &cfg, WithFileSystem(fs)); err != nil {
		t.Fatalf("expected env file errors to be logged only, got %v", err)
	}
	if len(fs.envRead) != 1 {
		t.Errorf("expected the env file to be read once, got %v", fs.envRead)
	}
}

func TestEnvPrefix(t *testing.T) {
	if got := envPrefix("http-service.v2"); got != "HTTP_SERVICE_V2" {
		t.Errorf("expected HTTP_SERVICE_V2, got %q", got)
	}
}
