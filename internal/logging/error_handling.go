package logging

import (
	"io"
	"log/slog"
)

// SafeCloseWithLogging closes a resource and logs any errors that occur
func SafeCloseWithLogging(closer io.Closer, logger *slog.Logger, operation string) {
	if closer == nil {
		return
	}

	if err := closer.Close(); err != nil {
		LogError(logger, "failed to close resource", err,
			slog.String("operation", operation),
			slog.String("component", "resource_management"))
	}
}

// LogIfError logs err when it is non-nil and reports whether it was. Used for
// fire-and-forget calls whose failure must not interrupt the caller.
func LogIfError(logger *slog.Logger, message string, err error, attrs ...slog.Attr) bool {
	if err == nil {
		return false
	}
	LogError(logger, message, err, attrs...)
	return true
}
