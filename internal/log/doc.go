// Package log builds the slog loggers used by mathglossary.
//
// The RedactingHandler wraps any slog.Handler and masks credentials before
// they reach the output:
//   - request headers and cookies configured for private wikis
//   - values that look like bearer or basic credentials, or JWTs
//   - MediaWiki session cookies embedded in a larger value
//
// Even in verbose mode these values are masked, so logs can be shared when
// reporting a failed harvest.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Info("wiki request", "cookie", "enwiki_session=abc") // cookie=***REDACTED***
//	slog.SetDefault(logger)
package log
