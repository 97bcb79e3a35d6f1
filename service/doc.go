// Package service sends HTTP/1.x requests to a single configured endpoint
// over a transport it owns.
//
// A Service merges per-call options over its configuration, connects,
// builds and writes the request, reads and parses the response, records
// the exchange and disconnects:
//
//	svc, err := service.New(service.Config{Host: "api.example"})
//	body, err := svc.Get(ctx, "/users", map[string]any{"id": 5})
//
//	resp, err := svc.Do(ctx, http.MethodPost, "/items",
//	    map[string]any{"name": "pen"}, service.WithType("json"))
//
// Payloads of POST and PUT are encoded with the named media type (form by
// default) unless they are already a string or []byte. Other verbs send
// their payload as the query string. Responses are decoded according to
// their own Content-Type.
//
// Errors are *Error values classified by ErrorCode; use IsConnection,
// IsTimeout and the other helpers to branch on them. An HTTP error status
// is a normal response, not an error.
package service
