// Package logger provides structured logging for httpservice using zerolog.
//
// Loggers are scoped by component and carry structured fields:
//
//	log := logger.Get("service")
//	log.Debug("request sent", logger.Fields("method", "GET", "path", "/users"))
//
// The global logger is configured once with Init and defaults to a console
// writer on stderr at info level.
package logger
