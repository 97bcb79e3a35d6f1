package transport

import (
	"context"
	"errors"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/kbukum/httpservice/security"
)

// Protocols accepted by NewStream.
const (
	ProtocolTCP  = "tcp"
	ProtocolUDP  = "udp"
	ProtocolUnix = "unix"
	ProtocolSSL  = "ssl"
	ProtocolTLS  = "tls"
)

// ErrNotOpen is returned by Write and Read before a successful Open.
var ErrNotOpen = errors.New("transport: not open")

// Transport is a bidirectional byte channel carrying one request and one
// response per exchange.
type Transport interface {
	Open(ctx context.Context) error
	Write(p []byte) error
	Read() ([]byte, error)
	Close() error
}

// Shutdowner is implemented by transports that hold a channel across Close
// calls. Shutdown releases it unconditionally.
type Shutdowner interface {
	Shutdown() error
}

// TimeoutSetter is implemented by transports whose I/O deadline can change
// between exchanges.
type TimeoutSetter interface {
	SetTimeout(d time.Duration)
}

// Config describes the remote endpoint.
type Config struct {
	Protocol   string
	Host       string
	Port       int
	Persistent bool
	// Timeout bounds dialing and each Write/Read. Zero means no deadline.
	Timeout time.Duration
	// TLS is used by the ssl and tls protocols.
	TLS *security.TLSConfig
}

// Address returns the dial address: host:port, or the socket path for unix.
func (c Config) Address() string {
	if c.Protocol == ProtocolUnix {
		return c.Host
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Factory creates a Transport for a configuration.
type Factory func(cfg Config) (Transport, error)

// DefaultFactory creates Streams.
func DefaultFactory(cfg Config) (Transport, error) {
	return NewStream(cfg)
}

// IsTimeout reports whether err was caused by an expired deadline.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
