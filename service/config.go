package service

import (
	"maps"
	"strings"
	"time"

	"github.com/kbukum/httpservice/message"
	"github.com/kbukum/httpservice/security"
	"github.com/kbukum/httpservice/transport"
	"github.com/kbukum/httpservice/validation"
)

const (
	defaultProtocol = transport.ProtocolTCP
	defaultHost     = "localhost"
	defaultVersion  = "1.1"
	defaultAuth     = "Basic"
	defaultLogin    = "root"
	defaultPort     = 80
	defaultTimeout  = time.Second
	defaultEncoding = "UTF-8"

	unixRequestHost = "localhost"
)

// AuthNone disables the Authorization header.
const AuthNone = "none"

// Config configures a Service. It is fixed once the Service is built.
type Config struct {
	// Name identifies the service in logs, metrics and component registries.
	Name string `yaml:"name" mapstructure:"name"`

	// Persistent asks the transport to keep its channel open between calls.
	Persistent bool `yaml:"persistent" mapstructure:"persistent"`

	// Protocol is one of tcp, udp, unix, ssl or tls. Defaults to tcp.
	Protocol string `yaml:"protocol" mapstructure:"protocol" validate:"oneof=tcp udp unix ssl tls"`

	// Host is the remote host, or the socket path for unix. Defaults to localhost.
	Host string `yaml:"host" mapstructure:"host" validate:"required"`

	// Version is the HTTP version, 1.0 or 1.1. Defaults to 1.1.
	Version string `yaml:"version" mapstructure:"version" validate:"oneof=1.0 1.1"`

	// Auth is the Authorization scheme. Defaults to Basic; "none" disables it.
	Auth string `yaml:"auth" mapstructure:"auth"`
	// Login defaults to root.
	Login    string `yaml:"login" mapstructure:"login"`
	Password string `yaml:"password" mapstructure:"password"`

	// Port defaults to 80.
	Port int `yaml:"port" mapstructure:"port" validate:"min=0,max=65535"`

	// Timeout bounds connecting and reading a response. Defaults to 1s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`

	// Encoding is the character set of request payloads. Defaults to UTF-8.
	Encoding string `yaml:"encoding" mapstructure:"encoding" validate:"charset"`

	// TLS configures the ssl and tls protocols.
	TLS *security.TLSConfig `yaml:"tls" mapstructure:"tls"`

	// Headers are sent with every request. Per-call headers override them.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() Config {
	var c Config
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills in zero-value fields with the documented defaults.
func (c *Config) ApplyDefaults() {
	if c.Protocol == "" {
		c.Protocol = defaultProtocol
	}
	c.Protocol = strings.ToLower(c.Protocol)
	if c.Host == "" {
		c.Host = defaultHost
	}
	if c.Version == "" {
		c.Version = defaultVersion
	}
	if c.Auth == "" {
		c.Auth = defaultAuth
	}
	if c.Login == "" {
		c.Login = defaultLogin
	}
	if c.Port == 0 && c.Protocol != transport.ProtocolUnix {
		c.Port = defaultPort
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Encoding == "" {
		c.Encoding = defaultEncoding
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.TLS.Validate(); err != nil {
		return err
	}
	probe := message.Request{}
	for name, value := range c.Headers {
		if err := probe.SetHeader(name, value); err != nil {
			return err
		}
	}
	return nil
}

// AuthInfo folds the auth, login and password fields into the credential
// record attached to requests.
func (c *Config) AuthInfo() message.Auth {
	return message.Auth{Method: c.Auth, Username: c.Login, Password: c.Password}
}

// Address renders the endpoint for logs, e.g. "tcp://localhost:80".
func (c *Config) Address() string {
	if c.Protocol == transport.ProtocolUnix {
		return "unix://" + c.Host
	}
	return c.Protocol + "://" + c.transportConfig().Address()
}

// requestHost returns the host and port named in the Host header. A unix
// socket path is only dialed; requests name localhost.
func (c *Config) requestHost() (string, int) {
	if c.Protocol == transport.ProtocolUnix {
		return unixRequestHost, 0
	}
	return c.Host, c.Port
}

func (c *Config) transportConfig() transport.Config {
	return transport.Config{
		Protocol:   c.Protocol,
		Host:       c.Host,
		Port:       c.Port,
		Persistent: c.Persistent,
		Timeout:    c.Timeout,
		TLS:        c.TLS,
	}
}

func (c Config) clone() Config {
	c.Headers = maps.Clone(c.Headers)
	if c.TLS != nil {
		tls := *c.TLS
		c.TLS = &tls
	}
	return c
}
