package interfaces

// Logger defines the interface for logging operations
type Logger interface {
	// Error logs at ERROR level
	Error(message string)

	// Infof logs at INFO level with formatting
	Infof(format string, args ...any)

	// Debugf logs at DEBUG level with formatting
	Debugf(format string, args ...any)
}
