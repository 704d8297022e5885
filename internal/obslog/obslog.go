// Package obslog is a small leveled logger used at phase and run
// boundaries only — never inside the hot per-line loops of lineiter,
// rules, state, or pattern, to keep the core allocation-free of logging
// overhead. Grounded on the teacher's pkg/log/mylogger.go: package-level
// level-gated functions writing through the standard log package.
package obslog

import (
	"io"
	"log"
	"os"
	"strings"
)

const (
	LevelTrace = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
)

var currentLevel = LevelInfo

// Options configures where log output goes and at what level.
type Options struct {
	Stdout bool
	Path   string
	Level  string
}

// Configure sets up the shared stdlib logger's output and the package's
// level gate. Path and Stdout may combine (both get a copy via
// io.MultiWriter); neither set means logs go to /dev/null.
func Configure(opts Options) error {
	var writer io.Writer

	switch {
	case opts.Path != "":
		logfile, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		if opts.Stdout {
			writer = io.MultiWriter(logfile, os.Stdout)
		} else {
			writer = logfile
		}
	case opts.Stdout:
		writer = os.Stdout
	default:
		devnull, err := os.OpenFile(os.DevNull, os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		writer = devnull
	}

	log.SetOutput(writer)
	currentLevel = parseLevel(opts.Level)
	return nil
}

func parseLevel(level string) int {
	switch strings.ToUpper(level) {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

func Trace(format string, v ...interface{}) {
	if currentLevel <= LevelTrace {
		log.Printf("[TRACE] "+format, v...)
	}
}

func Debug(format string, v ...interface{}) {
	if currentLevel <= LevelDebug {
		log.Printf("[DEBUG] "+format, v...)
	}
}

func Info(format string, v ...interface{}) {
	if currentLevel <= LevelInfo {
		log.Printf("[INFO] "+format, v...)
	}
}

func Warn(format string, v ...interface{}) {
	if currentLevel <= LevelWarn {
		log.Printf("[WARN] "+format, v...)
	}
}

func Error(format string, v ...interface{}) {
	if currentLevel <= LevelError {
		log.Printf("[ERROR] "+format, v...)
	}
}
