// Package logger is the console logger shared by the CLI and the parser.
package logger

import (
	"fmt"
	"io"
	"os"
)

var (
	// DebugEnabled turns on Debugf output. The CLI sets it from --debug.
	DebugEnabled bool

	// Output receives all log lines.
	Output io.Writer = os.Stderr
)

// Debugf prints messages only if DebugEnabled is true
func Debugf(format string, args ...interface{}) {
	if DebugEnabled {
		fmt.Fprintf(Output, "[DEBUG] "+format+"\n", args...)
	}
}

// Infof prints messages always
func Infof(format string, args ...interface{}) {
	fmt.Fprintf(Output, format+"\n", args...)
}

func Warnf(format string, args ...interface{}) {
	fmt.Fprintf(Output, "[WARN] "+format+"\n", args...)
}

func Errorf(format string, args ...interface{}) {
	fmt.Fprintf(Output, "[ERROR] "+format+"\n", args...)
}
