package logger

import "time"

// Standard field keys used across httpservice packages.
const (
	FieldComponent = "component"
	FieldRequestID = "request_id"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldHost      = "host"
	FieldPort      = "port"
	FieldProtocol  = "protocol"
	FieldStatus    = "status"
	FieldBytes     = "bytes"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
)

// Fields builds a map from alternating key-value pairs. Non-string keys are
// skipped.
//
//	logger.Info("done", logger.Fields("method", "GET", "status", 200))
func Fields(kvs ...any) map[string]any {
	m := make(map[string]any, len(kvs)/2)
	for i := 0; i < len(kvs)-1; i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// ErrorFields creates fields for a failed operation.
func ErrorFields(op string, err error) map[string]any {
	return map[string]any{
		"operation": op,
		FieldError:  err.Error(),
	}
}

// WithDuration adds a duration field to fields, allocating when nil.
func WithDuration(fields map[string]any, d time.Duration) map[string]any {
	if fields == nil {
		fields = make(map[string]any)
	}
	fields[FieldDuration] = d.Milliseconds()
	return fields
}
