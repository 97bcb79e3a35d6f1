package service

import (
	"context"
	"sync"
	"testing"

	"github.com/kbukum/httpservice/logger"
	"github.com/kbukum/httpservice/transport"
)

// fakeTransport records writes and replays a canned response.
type fakeTransport struct {
	mu sync.Mutex

	openErr  error
	writeErr error
	readErr  error
	closeErr error
	response []byte

	written [][]byte
	opens   int
	closes  int
	open    bool
}

func (f *fakeTransport) Open(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opens++
	if f.openErr != nil {
		return f.openErr
	}
	f.open = true
	return nil
}

func (f *fakeTransport) Write(p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return transport.ErrNotOpen
	}
	if f.writeErr != nil {
		return f.writeErr
	}
	f.written = append(f.written, append([]byte(nil), p...))
	return nil
}

func (f *fakeTransport) Read() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.response, nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	if f.closeErr != nil {
		return f.closeErr
	}
	f.open = false
	return nil
}

func (f *fakeTransport) lastWritten() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.written) == 0 {
		return ""
	}
	return string(f.written[len(f.written)-1])
}

const okJSON = "HTTP/1.1 200 OK\r\nContent-Type: application/json\r\nContent-Length: 11\r\n\r\n{\"ok\":true}"

// newFakeService returns a Service wired to a fake transport and the
// number of times the transport factory ran.
func newFakeService(t testing.TB, cfg Config, ft *fakeTransport, opts ...Option) (*Service, *int) {
	t.Helper()
	created := 0
	factory := func(transport.Config) (transport.Transport, error) {
		created++
		return ft, nil
	}
	opts = append([]Option{WithTransportFactory(factory), WithLogger(logger.Nop())}, opts...)
	svc, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return svc, &created
}
