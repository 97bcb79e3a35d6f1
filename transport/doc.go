// Package transport provides the byte channel a Service speaks HTTP over.
//
// A Transport is opened, written to once per request, read from once per
// response and closed. Stream is the socket implementation and supports
// the tcp, udp, unix, ssl and tls protocols:
//
//	t, err := transport.NewStream(transport.Config{
//	    Protocol: "tcp",
//	    Host:     "localhost",
//	    Port:     8080,
//	    Timeout:  time.Second,
//	})
//	if err := t.Open(ctx); err != nil { ... }
//	defer t.Close()
//
// Read returns exactly one HTTP/1.x message, framed by Content-Length,
// chunked transfer coding or end of stream. A persistent Stream keeps its
// socket across Close calls and reuses it on the next Open; Shutdown
// always releases it.
package transport
