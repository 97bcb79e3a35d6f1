package security

import (
	"crypto/tls"
	"testing"

	"github.com/kbukum/httpservice/security/tlstest"
)

func TestTLSConfig_ClientConfig_Nil(t *testing.T) {
	var cfg *TLSConfig
	got, err := cfg.ClientConfig("api.example")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ServerName != "api.example" {
		t.Errorf("expected ServerName api.example, got %q", got.ServerName)
	}
	if got.MinVersion != tls.VersionTLS12 {
		t.Errorf("expected TLS1.2 minimum, got %d", got.MinVersion)
	}
}

func TestTLSConfig_ClientConfig_Overrides(t *testing.T) {
	cfg := &TLSConfig{SkipVerify: true, ServerName: "other", MinVersion: tls.VersionTLS13}
	got, err := cfg.ClientConfig("api.example")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.InsecureSkipVerify {
		t.Error("expected InsecureSkipVerify")
	}
	if got.ServerName != "other" {
		t.Errorf("expected ServerName other, got %q", got.ServerName)
	}
	if got.MinVersion != tls.VersionTLS13 {
		t.Errorf("expected TLS1.3, got %d", got.MinVersion)
	}
}

func TestTLSConfig_ClientConfig_Files(t *testing.T) {
	certs := tlstest.Issue(t)
	cfg := &TLSConfig{CAFile: certs.CAFile, CertFile: certs.CertFile, KeyFile: certs.KeyFile}
	got, err := cfg.ClientConfig("localhost")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.RootCAs == nil {
		t.Error("expected RootCAs")
	}
	if len(got.Certificates) != 1 {
		t.Errorf("expected 1 client certificate, got %d", len(got.Certificates))
	}
}

func TestTLSConfig_ClientConfig_BadFiles(t *testing.T) {
	tests := []struct {
		name string
		cfg  *TLSConfig
	}{
		{"missing CA", &TLSConfig{CAFile: "/nonexistent/ca.pem"}},
		{"invalid CA", &TLSConfig{CAFile: tlstest.WriteInvalidPEM(t, "bad.pem")}},
		{"missing pair", &TLSConfig{CertFile: "/nonexistent/c.pem", KeyFile: "/nonexistent/k.pem"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.cfg.ClientConfig("localhost"); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestTLSConfig_Validate(t *testing.T) {
	var nilCfg *TLSConfig
	if err := nilCfg.Validate(); err != nil {
		t.Errorf("nil config should validate: %v", err)
	}
	if err := (&TLSConfig{CertFile: "cert.pem"}).Validate(); err == nil {
		t.Error("expected error for cert without key")
	}
	if err := (&TLSConfig{CertFile: "c", KeyFile: "k"}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
