package message

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/textproto"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/http/httpguts"

	"github.com/kbukum/httpservice/media"
)

// Auth is the credential sub-record attached to a request.
type Auth struct {
	Method   string `yaml:"method" mapstructure:"method"`
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
}

// Enabled reports whether the request should carry an Authorization header.
func (a Auth) Enabled() bool {
	return a.Method != "" && !strings.EqualFold(a.Method, "none") && a.Username != ""
}

// Request is one outbound HTTP request. Body and Params are mutually
// exclusive: body-carrying verbs use Body, all others use Params.
type Request struct {
	Method     string
	Path       string
	Host       string
	Port       int
	Version    string
	Encoding   string
	Persistent bool
	Auth       Auth

	// Headers is keyed by canonical header name. Use SetHeader.
	Headers map[string]string

	Body []byte
	// Params is rendered as the query string: a string is used verbatim,
	// anything else goes through the form encoder and is transcoded to
	// Encoding.
	Params any
}

// SetHeader validates and stores a header under its canonical name,
// replacing any previous value.
func (r *Request) SetHeader(name, value string) error {
	if !httpguts.ValidHeaderFieldName(name) {
		return fmt.Errorf("message: invalid header name %q", name)
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		return fmt.Errorf("message: invalid value for header %s", name)
	}
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[textproto.CanonicalMIMEHeaderKey(name)] = value
	return nil
}

// Header returns the value of a header, or "".
func (r *Request) Header(name string) string {
	return r.Headers[textproto.CanonicalMIMEHeaderKey(name)]
}

// QueryString renders Params without the leading "?".
func (r *Request) QueryString() (string, error) {
	switch p := r.Params.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimPrefix(p, "?"), nil
	case []byte:
		return strings.TrimPrefix(string(p), "?"), nil
	}
	values, err := media.FormValues(r.Params)
	if err != nil {
		return "", fmt.Errorf("message: encode params: %w", err)
	}
	if !IsUTF8(r.Encoding) {
		if values, err = encodeValues(values, r.Encoding); err != nil {
			return "", err
		}
	}
	return values.Encode(), nil
}

// encodeValues transcodes keys and values to charset before they are
// percent-escaped.
func encodeValues(values url.Values, charset string) (url.Values, error) {
	out := make(url.Values, len(values))
	for k, vs := range values {
		key, err := EncodeCharset([]byte(k), charset)
		if err != nil {
			return nil, err
		}
		for _, v := range vs {
			b, err := EncodeCharset([]byte(v), charset)
			if err != nil {
				return nil, err
			}
			out.Add(string(key), string(b))
		}
	}
	return out, nil
}

// RequestURI returns the path plus query string.
func (r *Request) RequestURI() (string, error) {
	path := r.Path
	if path == "" {
		path = "/"
	}
	query, err := r.QueryString()
	if err != nil {
		return "", err
	}
	if query == "" {
		return path, nil
	}
	if strings.Contains(path, "?") {
		return path + "&" + query, nil
	}
	return path + "?" + query, nil
}

// HostHeader returns the Host header value. The port is omitted when it is
// 80 or unset; internationalized names are punycoded.
func (r *Request) HostHeader() string {
	host := r.Host
	if r.Port != 0 && r.Port != 80 {
		host += ":" + strconv.Itoa(r.Port)
	}
	if ascii, err := httpguts.PunycodeHostPort(host); err == nil {
		return ascii
	}
	return host
}

// Bytes serializes the request line, headers and body.
func (r *Request) Bytes() ([]byte, error) {
	uri, err := r.RequestURI()
	if err != nil {
		return nil, err
	}
	version := r.Version
	if version == "" {
		version = "1.1"
	}

	var buf bytes.Buffer
	buf.WriteString(strings.ToUpper(r.Method))
	buf.WriteByte(' ')
	buf.WriteString(uri)
	buf.WriteString(" HTTP/")
	buf.WriteString(version)
	buf.WriteString("\r\n")

	writeHeader(&buf, "Host", r.HostHeader())
	if r.Persistent {
		writeHeader(&buf, "Connection", "Keep-Alive")
	} else {
		writeHeader(&buf, "Connection", "Close")
	}
	if r.Auth.Enabled() && r.Header("Authorization") == "" {
		token := base64.StdEncoding.EncodeToString([]byte(r.Auth.Username + ":" + r.Auth.Password))
		writeHeader(&buf, "Authorization", r.Auth.Method+" "+token)
	}

	names := make([]string, 0, len(r.Headers))
	for name := range r.Headers {
		switch name {
		case "Host", "Connection", "Content-Length":
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		writeHeader(&buf, name, r.Headers[name])
	}

	if r.Body != nil || carriesBody(r.Method) {
		writeHeader(&buf, "Content-Length", strconv.Itoa(len(r.Body)))
	}
	buf.WriteString("\r\n")
	buf.Write(r.Body)
	return buf.Bytes(), nil
}

// String returns the serialized request, or "" if it cannot be serialized.
func (r *Request) String() string {
	b, err := r.Bytes()
	if err != nil {
		return ""
	}
	return string(b)
}

// CarriesBody reports whether method sends its payload as a body.
func CarriesBody(method string) bool {
	return carriesBody(method)
}

func carriesBody(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPut:
		return true
	}
	return false
}

func writeHeader(buf *bytes.Buffer, name, value string) {
	buf.WriteString(name)
	buf.WriteString(": ")
	buf.WriteString(value)
	buf.WriteString("\r\n")
}
