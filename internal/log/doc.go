// Package log provides logging with automatic redaction of credentials,
// built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic masking of sensitive values (cookies, tokens, secrets)
//   - Redaction of secret-bearing query parameters in logged URLs
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Security Features
//
// The RedactingHandler automatically masks sensitive information in log output:
//   - HTTP headers (Authorization, Cookie, Set-Cookie, X-Api-Key)
//   - Secret values detected by pattern matching (JWTs, bearer tokens, keys)
//   - Session identifiers and authentication tokens
//   - URL query parameters such as token, api_key, and session
//
// A crawler handles URLs and headers taken from pages it does not
// control. Even in verbose mode, sensitive values are masked to prevent
// accidental exposure of secrets in logs that may be shared or stored.
//
// # Usage
//
//	// Create a redacting logger
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Info("request sent",
//	    "cookie", "session=abc123",  // Will be masked
//	    "url", "https://example.com/page",
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
