package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/httpservice/logger"
	"github.com/kbukum/httpservice/media"
	"github.com/kbukum/httpservice/message"
	"github.com/kbukum/httpservice/observability"
	"github.com/kbukum/httpservice/transport"
)

// Exchange is a request together with the response it produced.
type Exchange struct {
	Request  *message.Request
	Response *message.Response
}

// Service sends HTTP requests to one configured endpoint over a transport
// it owns. Calls on one Service are serialized.
type Service struct {
	cfg      Config
	auth     message.Auth
	registry *media.Registry
	factory  transport.Factory
	log      *logger.Logger
	inst     *observability.Instrumentation

	mu        sync.Mutex
	transport transport.Transport
	connected bool
	last      *Exchange
}

// New builds a Service from cfg with defaults applied. No connection is
// made until the first call.
func New(cfg Config, opts ...Option) (*Service, error) {
	cfg = cfg.clone()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, newError(ErrCodeValidation, err)
	}

	s := &Service{
		cfg:      cfg,
		auth:     cfg.AuthInfo(),
		registry: media.Default(),
		factory:  transport.DefaultFactory,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Global()
	}
	s.log = s.log.WithComponent(s.Name())
	return s, nil
}

// Name returns the configured name, or "httpservice".
func (s *Service) Name() string {
	if s.cfg.Name == "" {
		return "httpservice"
	}
	return s.cfg.Name
}

// Config returns a copy of the effective configuration.
func (s *Service) Config() Config {
	return s.cfg.clone()
}

// Registry returns the media registry used to encode and decode payloads.
func (s *Service) Registry() *media.Registry {
	return s.registry
}

// Last returns the most recent successful exchange, or nil.
func (s *Service) Last() *Exchange {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil
	}
	last := *s.last
	return &last
}

// Connected reports whether the transport is open.
func (s *Service) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Connect creates the transport on first use and opens it. It reports
// whether the Service is connected afterwards.
func (s *Service) Connect(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connect(ctx) == nil
}

// Disconnect closes the transport. It reports whether the Service is
// disconnected afterwards, which includes having never connected.
func (s *Service) Disconnect() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disconnect() == nil
}

// Close disconnects and releases a channel the transport kept open for
// persistence.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.disconnect(); err != nil {
		return err
	}
	if sd, ok := s.transport.(transport.Shutdowner); ok {
		return sd.Shutdown()
	}
	return nil
}

func (s *Service) connect(ctx context.Context) error {
	if s.connected {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.transport == nil {
		t, err := s.factory(s.cfg.transportConfig())
		if err != nil {
			s.log.Warn("transport creation failed", logger.ErrorFields("connect", err))
			return fmt.Errorf("create transport: %w", err)
		}
		s.transport = t
	}
	if err := s.transport.Open(ctx); err != nil {
		s.log.Warn("connect failed", logger.Fields(
			logger.FieldHost, s.cfg.Address(),
			logger.FieldError, err.Error(),
		))
		return err
	}
	s.connected = true
	s.log.Debug("connected", logger.Fields(logger.FieldHost, s.cfg.Address()))
	return nil
}

func (s *Service) disconnect() error {
	if !s.connected {
		return nil
	}
	if err := s.transport.Close(); err != nil {
		s.log.Warn("disconnect failed", logger.ErrorFields("disconnect", err))
		return err
	}
	s.connected = false
	s.log.Debug("disconnected", logger.Fields(logger.FieldHost, s.cfg.Address()))
	return nil
}

// Get sends a GET request. data becomes the query string.
func (s *Service) Get(ctx context.Context, path string, data any, opts ...RequestOption) (any, error) {
	return s.Send(ctx, http.MethodGet, path, data, opts...)
}

// Post sends a POST request. data becomes the body.
func (s *Service) Post(ctx context.Context, path string, data any, opts ...RequestOption) (any, error) {
	return s.Send(ctx, http.MethodPost, path, data, opts...)
}

// Put sends a PUT request. data becomes the body.
func (s *Service) Put(ctx context.Context, path string, data any, opts ...RequestOption) (any, error) {
	return s.Send(ctx, http.MethodPut, path, data, opts...)
}

// Delete sends a DELETE request. data becomes the query string.
func (s *Service) Delete(ctx context.Context, path string, data any, opts ...RequestOption) (any, error) {
	return s.Send(ctx, http.MethodDelete, path, data, opts...)
}

// Send performs one exchange: connect, build, write, read, parse, record,
// disconnect. It returns the decoded response body, or the
// *message.Response when called WithReturn(ReturnResponse).
//
// HTTP error statuses are not errors. Connection and write failures return
// a nil result and leave Last unchanged.
func (s *Service) Send(ctx context.Context, method, path string, data any, opts ...RequestOption) (any, error) {
	o, err := s.callOptions(opts)
	if err != nil {
		return nil, err
	}
	resp, err := s.exchange(ctx, method, path, data, o)
	if err != nil {
		return nil, err
	}
	if o.ret == ReturnResponse {
		return resp, nil
	}
	body, err := resp.Body()
	if err != nil {
		return nil, newErrorf(ErrCodeRead, "decode %s body: %w", resp.ContentType(), err)
	}
	return body, nil
}

// Do is Send returning the full response.
func (s *Service) Do(ctx context.Context, method, path string, data any, opts ...RequestOption) (*message.Response, error) {
	o, err := s.callOptions(opts)
	if err != nil {
		return nil, err
	}
	return s.exchange(ctx, method, path, data, o)
}

func (s *Service) exchange(ctx context.Context, method, path string, data any, o *callOptions) (*message.Response, error) {
	start := time.Now()
	requestID := uuid.NewString()
	log := s.log.WithFields(logger.Fields(
		logger.FieldRequestID, requestID,
		logger.FieldMethod, method,
		logger.FieldPath, path,
	))

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, call := s.inst.Start(ctx, observability.CallInfo{
		Service:   s.Name(),
		RequestID: requestID,
		Method:    method,
		Path:      path,
		Host:      s.cfg.Host,
		Port:      s.cfg.Port,
		Protocol:  s.cfg.Protocol,
	})
	fail := func(e *Error) (*message.Response, error) {
		call.End(0, e.Code.String(), e)
		log.Warn("exchange failed", logger.WithDuration(logger.Fields(
			"code", e.Code.String(),
			logger.FieldError, e.Message,
		), time.Since(start)))
		return nil, e
	}

	if err := s.connect(ctx); err != nil {
		return fail(newError(ErrCodeConnection, err))
	}

	req, raw, err := s.buildRequest(method, path, data, o)
	if err != nil {
		_ = s.disconnect()
		var e *Error
		if !errors.As(err, &e) {
			e = newError(ErrCodeEncoding, err)
		}
		return fail(e)
	}

	if ts, ok := s.transport.(transport.TimeoutSetter); ok {
		ts.SetTimeout(o.timeout)
	}
	if err := s.transport.Write(raw); err != nil {
		_ = s.disconnect()
		return fail(newError(ErrCodeWrite, err))
	}

	rawResp, err := s.transport.Read()
	if err != nil {
		_ = s.disconnect()
		code := ErrCodeRead
		if transport.IsTimeout(err) {
			code = ErrCodeTimeout
		}
		return fail(newError(code, err))
	}
	resp, err := message.Parse(rawResp, s.registry)
	if err != nil {
		_ = s.disconnect()
		return fail(newError(ErrCodeRead, err))
	}

	s.last = &Exchange{Request: req, Response: resp}
	_ = s.disconnect()

	call.End(resp.StatusCode, "", nil)
	log.Debug("exchange completed", logger.WithDuration(logger.Fields(
		logger.FieldStatus, resp.StatusCode,
		logger.FieldBytes, len(rawResp),
	), time.Since(start)))
	return resp, nil
}
