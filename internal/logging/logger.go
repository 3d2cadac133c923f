package logging

import (
	"log"
	"os"
	"strings"
	"sync/atomic"
)

// Severity thresholds; higher means louder. Messages below the active
// threshold are dropped.
const (
	Debug   = 10
	Info    = 20
	Warning = 30
	Error   = 40
)

var logLevel atomic.Int32

func init() {
	logLevel.Store(int32(parseLevel(os.Getenv("LOG_LEVEL"))))
}

// parseLevel maps a LOG_LEVEL value to a threshold. Unknown or empty
// values keep the default of Warning.
func parseLevel(value string) int {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return Debug
	case "info":
		return Info
	case "warning", "warn":
		return Warning
	case "error":
		return Error
	default:
		return Warning
	}
}

// SetLogLevel overrides the threshold read from the environment.
func SetLogLevel(level int) {
	logLevel.Store(int32(level))
}

func logf(level int, tag, format string, v ...interface{}) {
	if int32(level) < logLevel.Load() {
		return
	}
	log.Printf("["+tag+"] "+format, v...)
}

func Debugf(format string, v ...interface{}) { logf(Debug, "DEBUG", format, v...) }

func Infof(format string, v ...interface{}) { logf(Info, "INFO", format, v...) }

func Warningf(format string, v ...interface{}) { logf(Warning, "WARN", format, v...) }

func Errorf(format string, v ...interface{}) { logf(Error, "ERROR", format, v...) }
