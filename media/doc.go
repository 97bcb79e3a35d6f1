// Package media maps logical type names ("form", "json", ...) to wire
// content types and encode/decode functions.
//
// A Registry is consulted twice per request: the request builder encodes an
// outgoing payload with the caller's chosen type, and a response decodes its
// body with the type matching its own Content-Type header.
//
//	reg := media.Default()
//	ct, _ := reg.ContentType("json") // "application/json"
//	body, err := reg.Encode("json", map[string]any{"id": 5}, media.Options{})
//
// When a type lists several content types the first one is used for
// outgoing requests; every listed value is matched for responses.
package media
