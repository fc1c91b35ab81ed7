package rpc

import (
	stdlog "log"
	"strings"
)

type errorLogWriter struct{}

func (errorLogWriter) Write(b []byte) (int, error) {
	log.Error("http server error", "error", strings.TrimSpace(string(b)))
	return len(b), nil
}

// newErrorLogger sends the errors of net/http to the package logger.
func newErrorLogger() *stdlog.Logger {
	return stdlog.New(errorLogWriter{}, "", 0)
}
