package util

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// NewLogger returns the diagnostic logger. Verbose enables debug output.
func NewLogger(verbose bool) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "mcpm",
		Level:  level,
	})
}

// DiscardLogger is used where no logger was supplied.
func DiscardLogger() *log.Logger {
	return log.New(io.Discard)
}
