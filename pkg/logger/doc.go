// Package logger provides the structured logging interface used across igauth.
//
// It wraps zerolog. Console output is colored and human readable; when a log
// file is configured, lines are appended to it as JSON.
//
//	err := logger.Initialize(&cfg.Logging)
//	log := logger.GetLogger().WithField("component", "oauth")
//	log.DebugWithFields("exchanging code", map[string]interface{}{
//	    "token_url": tokenURL,
//	})
//
// Secrets never go to the log in clear. Use Redact for single values and
// RedactURL for URLs that may carry access_token, client_secret or code.
//
// TestLogger captures messages in memory for assertions in tests.
package logger
