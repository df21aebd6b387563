package core

// Logger is the app-wide leveled logger contract.
// args may include structured extras (map[string]interface{}), errors
// or the acting user for error-reporting backends that support them.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
