// Package logging provides structured logging for the fwbuild tools.
//
// This package wraps a zap logger with convenience functions for the
// patterns the build hooks need: external tool invocations and the
// firmware upload request/response pair.
//
// # Log Levels
//
//   - Debug: Full command lines, raw tool output, request details
//   - Info: Hook start/finish, upload outcome
//   - Warn: Recoverable problems (environment probe fell back to UNKNOWN)
//   - Error: Failures that abort the build stage
//
// # Configuration
//
// Logging is silent by default so that the build orchestrator's console
// output only shows the hook summaries. Enable it per invocation:
//
//	FWBUILD_LOG_LEVEL=debug pio run
//
// or with the --log-level flag on either binary:
//
//	if err := logging.Initialize(logLevel); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// # Specialized Logging
//
//	logging.LogCommand("git", []string{"rev-parse", "HEAD"}, 0, elapsed)
//	logging.LogHTTPRequest("POST", endpoint, size)
//	logging.LogHTTPResponse(endpoint, statusCode, len(body))
//
// All functions are safe for concurrent use.
package logging
