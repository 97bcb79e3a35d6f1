package service

import (
	"maps"
	"time"

	"github.com/kbukum/httpservice/logger"
	"github.com/kbukum/httpservice/media"
	"github.com/kbukum/httpservice/message"
	"github.com/kbukum/httpservice/observability"
	"github.com/kbukum/httpservice/transport"
	"github.com/kbukum/httpservice/validation"
)

// Values for WithReturn.
const (
	ReturnBody     = "body"
	ReturnResponse = "response"
)

// DefaultType is the media type used when a call does not name one.
const DefaultType = "form"

// Option configures a Service at construction.
type Option func(*Service)

// WithTransportFactory replaces the socket transport, e.g. with a fake in
// tests or a custom channel.
func WithTransportFactory(f transport.Factory) Option {
	return func(s *Service) { s.factory = f }
}

// WithRegistry replaces the media registry. Defaults to media.Default().
func WithRegistry(r *media.Registry) Option {
	return func(s *Service) { s.registry = r }
}

// WithLogger sets the logger. Defaults to the global logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithInstrumentation records a span and metrics for every exchange.
func WithInstrumentation(i *observability.Instrumentation) Option {
	return func(s *Service) { s.inst = i }
}

// callOptions is the merged view of a single call: per-call options layered
// over the Service configuration.
type callOptions struct {
	mediaType string
	ret       string
	version   string
	encoding  string
	auth      message.Auth
	headers   map[string]string
	timeout   time.Duration
}

// RequestOption overrides a setting for one call.
type RequestOption func(*callOptions)

// WithType selects the media type used to encode the payload.
func WithType(name string) RequestOption {
	return func(o *callOptions) { o.mediaType = name }
}

// WithReturn selects what Send returns: ReturnBody (the decoded body) or
// ReturnResponse (the *message.Response).
func WithReturn(ret string) RequestOption {
	return func(o *callOptions) { o.ret = ret }
}

// WithHeader sets a request header.
func WithHeader(name, value string) RequestOption {
	return func(o *callOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string)
		}
		o.headers[name] = value
	}
}

// WithHeaders sets several request headers.
func WithHeaders(headers map[string]string) RequestOption {
	return func(o *callOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string, len(headers))
		}
		maps.Copy(o.headers, headers)
	}
}

// WithVersion overrides the HTTP version.
func WithVersion(version string) RequestOption {
	return func(o *callOptions) { o.version = version }
}

// WithEncoding overrides the payload character set.
func WithEncoding(encoding string) RequestOption {
	return func(o *callOptions) { o.encoding = encoding }
}

// WithAuth overrides the Authorization scheme and credentials.
func WithAuth(method, login, password string) RequestOption {
	return func(o *callOptions) {
		o.auth = message.Auth{Method: method, Username: login, Password: password}
	}
}

// WithoutAuth suppresses the Authorization header.
func WithoutAuth() RequestOption {
	return func(o *callOptions) { o.auth = message.Auth{Method: AuthNone} }
}

// WithTimeout overrides the time allowed for the response.
func WithTimeout(d time.Duration) RequestOption {
	return func(o *callOptions) { o.timeout = d }
}

func (s *Service) callOptions(opts []RequestOption) (*callOptions, error) {
	o := &callOptions{
		mediaType: DefaultType,
		ret:       ReturnBody,
		version:   s.cfg.Version,
		encoding:  s.cfg.Encoding,
		auth:      s.auth,
		timeout:   s.cfg.Timeout,
	}
	for _, opt := range opts {
		opt(o)
	}

	switch o.ret {
	case ReturnBody, ReturnResponse:
	default:
		return nil, newErrorf(ErrCodeValidation, "return must be %q or %q (got: %q)", ReturnBody, ReturnResponse, o.ret)
	}
	switch o.version {
	case "1.0", "1.1":
	default:
		return nil, newErrorf(ErrCodeValidation, "version must be 1.0 or 1.1 (got: %q)", o.version)
	}
	if !validation.IsCharset(o.encoding) {
		return nil, newErrorf(ErrCodeValidation, "encoding must be a known charset (got: %q)", o.encoding)
	}
	if o.timeout <= 0 {
		return nil, newErrorf(ErrCodeValidation, "timeout must be positive (got: %v)", o.timeout)
	}
	return o, nil
}
