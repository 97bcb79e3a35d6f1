// Package security holds the TLS settings used by the ssl/tls stream
// protocols.
//
//	cfg := security.TLSConfig{CAFile: "/path/to/ca.pem"}
//	tlsConfig, err := cfg.ClientConfig("api.example")
package security
