package message

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http/httputil"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/kbukum/httpservice/media"
)

// Response is a parsed HTTP/1.x response.
type Response struct {
	Proto      string
	StatusCode int
	// Status is the reason phrase, e.g. "OK".
	Status string
	// Headers is keyed by canonical header name; repeated headers are
	// joined with ", ".
	Headers map[string]string
	// Raw is the body after transfer decoding.
	Raw []byte

	registry *media.Registry
}

// Parse builds a Response from raw bytes read off a transport. reg is used
// by Body to decode the payload; a nil registry leaves bodies as strings.
func Parse(raw []byte, reg *media.Registry) (*Response, error) {
	br := bufio.NewReader(bytes.NewReader(raw))
	tp := textproto.NewReader(br)

	line, err := tp.ReadLine()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("message: read status line: %w", err)
	}
	resp := &Response{registry: reg}
	if err := resp.parseStatusLine(line); err != nil {
		return nil, err
	}

	mimeHeader, err := tp.ReadMIMEHeader()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("message: read headers: %w", err)
	}
	if lens := mimeHeader["Content-Length"]; len(lens) > 1 {
		first := textproto.TrimString(lens[0])
		for _, cl := range lens[1:] {
			if textproto.TrimString(cl) != first {
				return nil, fmt.Errorf("message: conflicting Content-Length headers %q", lens)
			}
		}
		mimeHeader["Content-Length"] = []string{first}
	}
	resp.Headers = make(map[string]string, len(mimeHeader))
	for k, v := range mimeHeader {
		resp.Headers[k] = strings.Join(v, ", ")
	}

	rest, err := io.ReadAll(br)
	if err != nil {
		return nil, fmt.Errorf("message: read body: %w", err)
	}
	if resp.Raw, err = resp.decodeTransfer(rest); err != nil {
		return nil, err
	}
	return resp, nil
}

// parseStatusLine handles "HTTP/1.1 200 OK".
func (r *Response) parseStatusLine(line string) error {
	proto, status, ok := strings.Cut(line, " ")
	if !ok || !strings.HasPrefix(proto, "HTTP/") {
		return fmt.Errorf("message: malformed status line %q", line)
	}
	r.Proto = proto

	code, reason, _ := strings.Cut(strings.TrimLeft(status, " "), " ")
	if len(code) != 3 {
		return fmt.Errorf("message: malformed status code %q", code)
	}
	n, err := strconv.Atoi(code)
	if err != nil || n < 100 {
		return fmt.Errorf("message: malformed status code %q", code)
	}
	r.StatusCode = n
	r.Status = reason
	return nil
}

func (r *Response) decodeTransfer(rest []byte) ([]byte, error) {
	if strings.EqualFold(r.Header("Transfer-Encoding"), "chunked") {
		body, err := io.ReadAll(httputil.NewChunkedReader(bytes.NewReader(rest)))
		if err != nil {
			return nil, fmt.Errorf("message: decode chunked body: %w", err)
		}
		return body, nil
	}

	cl := r.Header("Content-Length")
	if cl == "" {
		return rest, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(cl), 10, 64)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("message: bad Content-Length %q", cl)
	}
	if int64(len(rest)) < n {
		return nil, fmt.Errorf("message: body is %d bytes, Content-Length %d: %w", len(rest), n, io.ErrUnexpectedEOF)
	}
	return rest[:n], nil
}

// Header returns the value of a header, or "".
func (r *Response) Header(name string) string {
	return r.Headers[textproto.CanonicalMIMEHeaderKey(name)]
}

// ContentType returns the media type without parameters, lowercased.
func (r *Response) ContentType() string {
	mediaType, _ := r.contentType()
	return mediaType
}

func (r *Response) contentType() (string, string) {
	ct := r.Header("Content-Type")
	if ct == "" {
		return "", ""
	}
	mediaType, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.SplitN(ct, ";", 2)[0])), ""
	}
	return mediaType, params["charset"]
}

// Body decodes the payload according to the response's own Content-Type.
// Types unknown to the registry yield the body as a string.
func (r *Response) Body() (any, error) {
	mediaType, charset := r.contentType()
	raw, err := DecodeCharset(r.Raw, charset)
	if err != nil {
		return nil, err
	}
	if r.registry == nil || mediaType == "" {
		return string(raw), nil
	}
	name, ok := r.registry.Lookup(mediaType)
	if !ok {
		return string(raw), nil
	}
	return r.registry.Decode(name, raw, media.Options{Encoding: charset})
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsError returns true if the status code is 4xx or 5xx.
func (r *Response) IsError() bool {
	return r.StatusCode >= 400
}
