package core

// Logger is any service that can report application events, from debug
// chatter to fatal failures. Implementations may ship entries to an external
// error tracker in addition to local output.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
