// Package logging provides structured logging with connection context and
// PII redaction.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - Structured logging with JSON, text, and console formats
//   - Connection fields (conn_id, client_ip, method, path, trace ids) read from the context
//   - Optional PII redaction of client addresses, credentials and emails
//   - A level that can be changed at runtime
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:     "info",
//	    Format:    "json",
//	    RedactPII: true,
//	})
//	slog.SetDefault(logger.Slog())
//
//	ctx := logging.WithConnID(ctx, "c0ffee")
//	slog.InfoContext(ctx, "connection accepted")  // includes conn_id
//
// The context fields and redaction live in the handler, so any *slog.Logger
// derived from Logger.Slog gets them, including loggers created with With.
//
// # PII Redaction
//
//   - IP addresses: 192.168.1.100 → 192.*.*.*
//   - Bearer and Basic credentials: Bearer abc → Bearer ***
//   - Emails: user@example.com → u***@example.com
//   - Attributes named like authorization, cookie, token or password are masked
package logging
