package service

import (
	"reflect"
	"strings"

	"github.com/kbukum/httpservice/media"
	"github.com/kbukum/httpservice/message"
	"github.com/kbukum/httpservice/version"
)

// NormalizePath makes path absolute and collapses every "//" into "/".
func NormalizePath(path string) string {
	path = "/" + path
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	return path
}

// buildRequest assembles the request for one call. Payloads of POST and PUT
// become the body, encoded through the registry unless already raw; other
// verbs carry the payload unchanged as query parameters.
func (s *Service) buildRequest(method, path string, data any, o *callOptions) (*message.Request, []byte, error) {
	host, port := s.cfg.requestHost()
	req := &message.Request{
		Method:     strings.ToUpper(method),
		Path:       NormalizePath(path),
		Host:       host,
		Port:       port,
		Version:    o.version,
		Encoding:   o.encoding,
		Persistent: s.cfg.Persistent,
		Auth:       o.auth,
	}
	if req.Method == "" {
		return nil, nil, newErrorf(ErrCodeValidation, "method is required")
	}

	for _, headers := range []map[string]string{s.cfg.Headers, o.headers} {
		for name, value := range headers {
			if err := req.SetHeader(name, value); err != nil {
				return nil, nil, newError(ErrCodeValidation, err)
			}
		}
	}
	if req.Header("User-Agent") == "" {
		_ = req.SetHeader("User-Agent", version.UserAgent())
	}

	payload := data
	if message.CarriesBody(req.Method) && !isEmpty(data) && !isRaw(data) {
		encoded, contentType, err := s.encode(data, o)
		if err != nil {
			return nil, nil, err
		}
		if err := req.SetHeader("Content-Type", contentType); err != nil {
			return nil, nil, newError(ErrCodeEncoding, err)
		}
		payload = encoded
	}

	if message.CarriesBody(req.Method) {
		req.Body = rawBytes(payload)
	} else {
		req.Params = payload
	}

	raw, err := req.Bytes()
	if err != nil {
		return nil, nil, newError(ErrCodeEncoding, err)
	}
	return req, raw, nil
}

// encode renders data as o.mediaType and returns the bytes with the
// Content-Type to send. The first content type registered for the type is
// used; a non-UTF-8 encoding is appended as its charset.
func (s *Service) encode(data any, o *callOptions) ([]byte, string, error) {
	contentType, ok := s.registry.ContentType(o.mediaType)
	if !ok {
		return nil, "", newErrorf(ErrCodeEncoding, "type %q: %w", o.mediaType, media.ErrUnknownType)
	}
	encoded, err := s.registry.Encode(o.mediaType, data, media.Options{Encoding: o.encoding})
	if err != nil {
		return nil, "", newErrorf(ErrCodeEncoding, "encode %s payload: %w", o.mediaType, err)
	}
	if !message.IsUTF8(o.encoding) {
		if encoded, err = message.EncodeCharset(encoded, o.encoding); err != nil {
			return nil, "", newError(ErrCodeEncoding, err)
		}
		contentType += "; charset=" + o.encoding
	}
	return encoded, contentType, nil
}

func isRaw(data any) bool {
	switch data.(type) {
	case string, []byte:
		return true
	}
	return false
}

// isEmpty reports whether data carries nothing to encode.
func isEmpty(data any) bool {
	if data == nil {
		return true
	}
	v := reflect.ValueOf(data)
	switch v.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func rawBytes(payload any) []byte {
	switch p := payload.(type) {
	case nil:
		return nil
	case []byte:
		return p
	case string:
		return []byte(p)
	}
	// Empty structured payload of a body verb.
	return []byte{}
}
