package security

import "github.com/sgaunet/bullets"

// LogWarning logs a failure at warn level with any embedded tokens
// redacted. All adapter and pipeline errors go through here before
// they reach the terminal, so a token leaking into an API error
// message never leaks into the log.
func LogWarning(logger *bullets.Logger, context string, err error) {
	if logger == nil || err == nil {
		return
	}
	logger.Warn(context + ": " + SanitizeString(err.Error()))
}

// LogError logs a failure at error level with any embedded tokens
// redacted.
func LogError(logger *bullets.Logger, context string, err error) {
	if logger == nil || err == nil {
		return
	}
	logger.Error(context + ": " + SanitizeString(err.Error()))
}
