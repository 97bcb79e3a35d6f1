package message

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// IsUTF8 reports whether charset names UTF-8 (or is empty).
func IsUTF8(charset string) bool {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return true
	}
	return false
}

// EncodeCharset converts UTF-8 text to charset.
func EncodeCharset(data []byte, charset string) ([]byte, error) {
	if IsUTF8(charset) {
		return data, nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("message: unknown charset %q: %w", charset, err)
	}
	out, err := enc.NewEncoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("message: encode %s: %w", charset, err)
	}
	return out, nil
}

// DecodeCharset converts text in charset to UTF-8.
func DecodeCharset(data []byte, charset string) ([]byte, error) {
	if IsUTF8(charset) {
		return data, nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("message: unknown charset %q: %w", charset, err)
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("message: decode %s: %w", charset, err)
	}
	return out, nil
}
