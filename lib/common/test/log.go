package test

import (
	"os"

	logging "github.com/inconshreveable/log15"
)

// LogHandler is the handler of the loggers under test, chosen by
// `GASMANAGER_TEST_LOG`: `stdout` prints with the caller stack, `json` prints
// one json record per line and anything else discards.
func LogHandler() logging.Handler {
	switch os.Getenv("GASMANAGER_TEST_LOG") {
	case "stdout":
		return logging.CallerStackHandler("%+v", logging.StdoutHandler)
	case "json":
		return logging.StreamHandler(os.Stdout, logging.JsonFormat())
	default:
		return logging.DiscardHandler()
	}
}
