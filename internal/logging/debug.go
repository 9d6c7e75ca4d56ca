package logging

import (
	"fmt"
	"io"
	"log"
	"os"
)

// DebugEnv is the environment variable that switches debug output on
const DebugEnv = "TODO_DEBUG"

// DebugEnabled returns true if debug mode is enabled via TODO_DEBUG environment variable
func DebugEnabled() bool {
	return os.Getenv(DebugEnv) != ""
}

// Debugf prints a formatted debug message only if debug mode is enabled
func Debugf(format string, args ...interface{}) {
	if DebugEnabled() {
		fmt.Printf(format, args...)
	}
}

// Debugln prints a debug message followed by a newline only if debug mode is enabled
func Debugln(args ...interface{}) {
	if DebugEnabled() {
		fmt.Println(args...)
	}
}

// New returns a logger writing to stdout with a bracketed prefix, e.g. "[api] ".
func New(prefix string) *log.Logger {
	return NewWithWriter(os.Stdout, prefix)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, prefix string) *log.Logger {
	return log.New(w, "["+prefix+"] ", log.LstdFlags)
}
