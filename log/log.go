package log

import (
	"io"
	"log"
	"os"
)

var (
	Trace   *log.Logger
	Info    *log.Logger
	Warning *log.Logger
	Error   *log.Logger
)

func init() {
	// usable before InitLog is called, e.g. from tests
	initWriters(io.Discard, io.Discard, os.Stderr, os.Stderr)
}

// InitLog sets up the package loggers. Trace output is enabled by DIGITPAD_TRACE=1
// and Info output is silenced by DIGITPAD_QUIET=1.
func InitLog() {
	var traceHandle io.Writer = io.Discard
	if os.Getenv("DIGITPAD_TRACE") == "1" {
		traceHandle = os.Stdout
	}

	var infoHandle io.Writer = os.Stdout
	if os.Getenv("DIGITPAD_QUIET") == "1" {
		infoHandle = io.Discard
	}

	initWriters(traceHandle, infoHandle, os.Stdout, os.Stderr)
}

func initWriters(traceHandle, infoHandle, warningHandle, errorHandle io.Writer) {
	Trace = log.New(traceHandle, "TRACE: ", log.Ldate|log.Ltime|log.Lshortfile)
	Info = log.New(infoHandle, "INFO: ", log.Ldate|log.Ltime)
	Warning = log.New(warningHandle, "WARNING: ", log.Ldate|log.Ltime|log.Lshortfile)
	Error = log.New(errorHandle, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
}
