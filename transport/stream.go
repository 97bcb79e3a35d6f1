package transport

import (
	"bufio"
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/textproto"
	"strconv"
	"strings"
	"sync"
	"time"
)

const maxDatagram = 64 * 1024

// Stream is a socket Transport. It is safe for concurrent use, although a
// single exchange (Write then Read) must not be interleaved with another.
type Stream struct {
	cfg Config

	mu      sync.Mutex
	timeout time.Duration
	conn    net.Conn
	br      *bufio.Reader
	// reusable is cleared once the peer signals the stream ends.
	reusable bool
	head     bool
}

// NewStream returns an unopened Stream for cfg.
func NewStream(cfg Config) (*Stream, error) {
	switch cfg.Protocol {
	case ProtocolTCP, ProtocolUDP, ProtocolUnix, ProtocolSSL, ProtocolTLS:
	default:
		return nil, fmt.Errorf("transport: unsupported protocol %q", cfg.Protocol)
	}
	if cfg.Protocol != ProtocolUnix && cfg.Host == "" {
		return nil, fmt.Errorf("transport: host is required")
	}
	return &Stream{cfg: cfg, timeout: cfg.Timeout}, nil
}

// Config returns the configuration the stream was created with.
func (s *Stream) Config() Config {
	return s.cfg
}

// SetTimeout changes the deadline applied to subsequent Write and Read calls.
func (s *Stream) SetTimeout(d time.Duration) {
	s.mu.Lock()
	s.timeout = d
	s.mu.Unlock()
}

// IsOpen reports whether the stream holds a socket.
func (s *Stream) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

// Open dials the endpoint. A stream that is already open is left as is.
func (s *Stream) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		return nil
	}

	network := s.cfg.Protocol
	encrypted := network == ProtocolSSL || network == ProtocolTLS
	if encrypted {
		network = ProtocolTCP
	}

	d := net.Dialer{Timeout: s.cfg.Timeout}
	conn, err := d.DialContext(ctx, network, s.cfg.Address())
	if err != nil {
		return fmt.Errorf("transport: dial %s %s: %w", s.cfg.Protocol, s.cfg.Address(), err)
	}

	if encrypted {
		tlsCfg, err := s.cfg.TLS.ClientConfig(s.cfg.Host)
		if err != nil {
			_ = conn.Close()
			return fmt.Errorf("transport: %w", err)
		}
		hsCtx := ctx
		if s.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			hsCtx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
			defer cancel()
		}
		tc := tls.Client(conn, tlsCfg)
		if err := tc.HandshakeContext(hsCtx); err != nil {
			_ = conn.Close()
			return fmt.Errorf("transport: tls handshake with %s: %w", s.cfg.Address(), err)
		}
		conn = tc
	}

	s.conn = conn
	s.br = bufio.NewReader(conn)
	s.reusable = true
	return nil
}

// Write sends p in full.
func (s *Stream) Write(p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return ErrNotOpen
	}
	if err := s.conn.SetWriteDeadline(s.deadline()); err != nil {
		return fmt.Errorf("transport: set write deadline: %w", err)
	}
	s.head = bytes.HasPrefix(p, []byte("HEAD "))
	if _, err := s.conn.Write(p); err != nil {
		s.reusable = false
		return fmt.Errorf("transport: write: %w", err)
	}
	return nil
}

// Read returns the next response message as raw bytes.
func (s *Stream) Read() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil, ErrNotOpen
	}
	if err := s.conn.SetReadDeadline(s.deadline()); err != nil {
		return nil, fmt.Errorf("transport: set read deadline: %w", err)
	}

	if s.cfg.Protocol == ProtocolUDP {
		buf := make([]byte, maxDatagram)
		n, err := s.conn.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("transport: read: %w", err)
		}
		return buf[:n], nil
	}

	msg, err := s.readMessage()
	if err != nil {
		s.reusable = false
		return nil, fmt.Errorf("transport: read: %w", err)
	}
	return msg, nil
}

// Close releases the socket unless the stream is persistent and the peer
// left it usable.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	if s.cfg.Persistent && s.reusable {
		return nil
	}
	return s.closeConn()
}

// Shutdown releases the socket regardless of persistence.
func (s *Stream) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	return s.closeConn()
}

func (s *Stream) closeConn() error {
	err := s.conn.Close()
	s.conn = nil
	s.br = nil
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("transport: close: %w", err)
	}
	return nil
}

func (s *Stream) deadline() time.Time {
	if s.timeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(s.timeout)
}

// frame is what readHead learns about the body that follows.
type frame struct {
	status        int
	contentLength int64
	chunked       bool
	closes        bool
}

// readMessage returns the final response. Interim 1xx heads other than
// 101 Switching Protocols are discarded.
func (s *Stream) readMessage() ([]byte, error) {
	var msg bytes.Buffer
	var f frame
	for {
		msg.Reset()
		var err error
		if f, err = s.readHead(&msg); err != nil {
			return nil, err
		}
		if !isInterim(f.status) {
			break
		}
	}
	if f.closes {
		s.reusable = false
	}

	switch {
	case s.head, f.status == 204, f.status == 304, f.status >= 100 && f.status < 200:
	case f.chunked:
		if err := s.readChunked(&msg); err != nil {
			return nil, err
		}
	case f.contentLength >= 0:
		if _, err := io.CopyN(&msg, s.br, f.contentLength); err != nil {
			return nil, unexpected(err)
		}
	default:
		if _, err := io.Copy(&msg, s.br); err != nil {
			return nil, err
		}
		s.reusable = false
	}
	return msg.Bytes(), nil
}

// readHead copies the status line and headers into msg.
func (s *Stream) readHead(msg *bytes.Buffer) (frame, error) {
	f := frame{contentLength: -1}
	first := true
	for {
		line, err := s.br.ReadBytes('\n')
		msg.Write(line)
		if err != nil {
			if errors.Is(err, io.EOF) && first && len(line) == 0 {
				return f, fmt.Errorf("connection closed before response: %w", io.ErrUnexpectedEOF)
			}
			return f, unexpected(err)
		}
		text := strings.TrimRight(string(line), "\r\n")
		if first {
			first = false
			proto, rest, _ := strings.Cut(text, " ")
			code, _, _ := strings.Cut(strings.TrimLeft(rest, " "), " ")
			if f.status, err = strconv.Atoi(code); err != nil {
				return f, fmt.Errorf("malformed status line %q", text)
			}
			if proto == "HTTP/1.0" {
				f.closes = true
			}
			continue
		}
		if text == "" {
			return f, nil
		}

		name, value, ok := strings.Cut(text, ":")
		if !ok {
			continue
		}
		value = textproto.TrimString(value)
		switch textproto.CanonicalMIMEHeaderKey(textproto.TrimString(name)) {
		case "Content-Length":
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil || n < 0 {
				return f, fmt.Errorf("bad Content-Length %q", value)
			}
			f.contentLength = n
		case "Transfer-Encoding":
			f.chunked = strings.EqualFold(value, "chunked")
		case "Connection":
			switch strings.ToLower(value) {
			case "close":
				f.closes = true
			case "keep-alive":
				f.closes = false
			}
		}
	}
}

// readChunked copies a chunked body, chunk framing and trailers included.
func (s *Stream) readChunked(msg *bytes.Buffer) error {
	for {
		line, err := s.br.ReadBytes('\n')
		msg.Write(line)
		if err != nil {
			return unexpected(err)
		}
		sizeText, _, _ := strings.Cut(strings.TrimRight(string(line), "\r\n"), ";")
		size, err := strconv.ParseInt(strings.TrimSpace(sizeText), 16, 64)
		if err != nil || size < 0 {
			return fmt.Errorf("bad chunk size %q", sizeText)
		}
		if size == 0 {
			break
		}
		if _, err := io.CopyN(msg, s.br, size+2); err != nil {
			return unexpected(err)
		}
	}
	for {
		line, err := s.br.ReadBytes('\n')
		msg.Write(line)
		if err != nil {
			return unexpected(err)
		}
		if strings.TrimRight(string(line), "\r\n") == "" {
			return nil
		}
	}
}

func isInterim(status int) bool {
	return status >= 100 && status < 200 && status != 101
}

func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
