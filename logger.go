package main

import (
	"io"

	"github.com/charmbracelet/log"
)

// NewLogger builds the application logger writing to w at the given level.
// Unknown levels fall back to info.
func NewLogger(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		ReportCaller:    true,
	})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}
