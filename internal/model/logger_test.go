package model

import (
	"io"
	"testing"

	"github.com/apex/log"
)

// the command line tool passes apex/log's default logger around
var _ Logger = log.Log

func TestDiscardLogger(t *testing.T) {
	DiscardLogger.Debug("foo")
	DiscardLogger.Debugf("%s", "foo")
	DiscardLogger.Info("foo")
	DiscardLogger.Infof("%s", "foo")
	DiscardLogger.Warn("foo")
	DiscardLogger.Warnf("%s", "foo")
}

func TestErrorToStringOrOK(t *testing.T) {
	if got := ErrorToStringOrOK(nil); got != "ok" {
		t.Fatal("unexpected result", got)
	}
	if got := ErrorToStringOrOK(io.EOF); got != "EOF" {
		t.Fatal("unexpected result", got)
	}
}

func TestValidLoggerOrDefault(t *testing.T) {
	t.Run("with nil", func(t *testing.T) {
		if ValidLoggerOrDefault(nil) != DiscardLogger {
			t.Fatal("expected DiscardLogger")
		}
	})

	t.Run("with a logger", func(t *testing.T) {
		logger := &countingLogger{}
		ValidLoggerOrDefault(logger).Infof("using region %q", "US East")
		if logger.count != 1 {
			t.Fatal("expected the same logger")
		}
	})
}

type countingLogger struct {
	discardLogger
	count int
}

func (cl *countingLogger) Infof(format string, v ...interface{}) {
	cl.count++
}
