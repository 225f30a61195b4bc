// Package log provides the application's slog setup.
//
// SecureHandler wraps any slog.Handler and cleans attribute values before
// they are written:
//   - values under credential-like keys (cookie, authorization, proxy
//     credentials) are replaced with MaskValue
//   - user:password pairs embedded in URLs are masked
//   - very long string values, typically HTML fragments logged while an
//     oracle page fails to parse, are truncated to MaxValueLength
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
package log
