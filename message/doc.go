// Package message holds the HTTP/1.x request and response values exchanged
// by a Service: a Request serializes itself to wire bytes and a Response is
// parsed back from the raw bytes read off a transport.
package message
