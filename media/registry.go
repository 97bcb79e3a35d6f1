package media

import (
	"errors"
	"fmt"
	"mime"
	"strings"
	"sync"
)

// ErrUnknownType is returned for type names that were never registered.
var ErrUnknownType = errors.New("media: unknown type")

// Options are passed through to codecs.
type Options struct {
	// Encoding is the character set the caller works in, e.g. "UTF-8".
	Encoding string
}

// EncodeFunc turns a structured payload into wire bytes.
type EncodeFunc func(data any, opts Options) ([]byte, error)

// DecodeFunc turns wire bytes into a structured payload.
type DecodeFunc func(data []byte, opts Options) (any, error)

// Type describes one logical media type.
type Type struct {
	// Content lists the content-type values for this type, preferred first.
	Content []string
	Encode  EncodeFunc
	Decode  DecodeFunc
}

// Registry holds media types by name. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	types map[string]Type
	names []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]Type)}
}

// Default returns a new registry holding the built-in form, json, yaml and
// text types.
func Default() *Registry {
	r := NewRegistry()
	_ = r.Register("form", Type{
		Content: []string{"application/x-www-form-urlencoded", "multipart/form-data"},
		Encode:  EncodeForm,
		Decode:  DecodeForm,
	})
	_ = r.Register("json", Type{
		Content: []string{"application/json"},
		Encode:  encodeJSON,
		Decode:  decodeJSON,
	})
	_ = r.Register("yaml", Type{
		Content: []string{"application/x-yaml", "application/yaml", "text/yaml"},
		Encode:  encodeYAML,
		Decode:  decodeYAML,
	})
	_ = r.Register("text", Type{
		Content: []string{"text/plain"},
		Encode:  encodeText,
		Decode:  decodeText,
	})
	return r
}

// Register adds or replaces a type. Replacing keeps the original position
// in Types().
func (r *Registry) Register(name string, t Type) error {
	if name == "" {
		return fmt.Errorf("media: type name is required")
	}
	if len(t.Content) == 0 {
		return fmt.Errorf("media: type %q needs at least one content type", name)
	}
	if t.Encode == nil || t.Decode == nil {
		return fmt.Errorf("media: type %q needs both encode and decode", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[name]; !exists {
		r.names = append(r.names, name)
	}
	t.Content = append([]string(nil), t.Content...)
	r.types[name] = t
	return nil
}

// Types returns the registered type names in registration order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.names...)
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Type(name)
	return ok
}

// Type returns the descriptor registered under name.
func (r *Registry) Type(name string) (Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

// ContentType returns the first content type listed for name.
func (r *Registry) ContentType(name string) (string, bool) {
	t, ok := r.Type(name)
	if !ok {
		return "", false
	}
	return t.Content[0], true
}

// Encode encodes data with the named type.
func (r *Registry) Encode(name string, data any, opts Options) ([]byte, error) {
	t, ok := r.Type(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	out, err := t.Encode(data, opts)
	if err != nil {
		return nil, fmt.Errorf("media: encode %s: %w", name, err)
	}
	return out, nil
}

// Decode decodes data with the named type.
func (r *Registry) Decode(name string, data []byte, opts Options) (any, error) {
	t, ok := r.Type(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	out, err := t.Decode(data, opts)
	if err != nil {
		return nil, fmt.Errorf("media: decode %s: %w", name, err)
	}
	return out, nil
}

// Lookup finds the type whose content list contains contentType. Parameters
// such as charset are ignored and matching is case-insensitive. Types are
// searched in registration order.
func (r *Registry) Lookup(contentType string) (string, bool) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	}
	if mediaType == "" {
		return "", false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, name := range r.names {
		for _, ct := range r.types[name].Content {
			if strings.EqualFold(ct, mediaType) {
				return name, true
			}
		}
	}
	return "", false
}
