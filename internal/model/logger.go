package model

//
// Logging
//

// DebugLogger is the subset of [Logger] used by low-level code such
// as the transport and the server list parser.
type DebugLogger interface {
	Debug(msg string)
	Debugf(format string, v ...interface{})
}

// Logger is the logger passed around by pia-wg. The `log.Log` value of
// `apex/log` implements it, which is what the command line tool uses.
//
// We only ever log hostnames, addresses and public keys; passwords,
// tokens and private keys never reach a Logger.
type Logger interface {
	DebugLogger
	Info(msg string)
	Infof(format string, v ...interface{})
	Warn(msg string)
	Warnf(format string, v ...interface{})
}

// DiscardLogger is the [Logger] used when none is configured.
var DiscardLogger Logger = discardLogger{}

type discardLogger struct{}

func (discardLogger) Debug(msg string)                       {}
func (discardLogger) Debugf(format string, v ...interface{}) {}
func (discardLogger) Info(msg string)                        {}
func (discardLogger) Infof(format string, v ...interface{})  {}
func (discardLogger) Warn(msg string)                        {}
func (discardLogger) Warnf(format string, v ...interface{})  {}

// ErrorToStringOrOK returns "ok" for a nil error and the error string
// otherwise. We use it to log the outcome of an operation.
func ErrorToStringOrOK(err error) string {
	if err == nil {
		return "ok"
	}
	return err.Error()
}

// ValidLoggerOrDefault returns logger or, if it is nil, [DiscardLogger].
func ValidLoggerOrDefault(logger Logger) Logger {
	if logger == nil {
		return DiscardLogger
	}
	return logger
}
