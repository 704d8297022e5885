// Package printer renders engine results (state changes, rule matches,
// pattern matches, clusters) to a writer with TTY-aware ANSI highlighting.
// Grounded on the teacher's pkg/log/printer/{color,print_functions}.go.
package printer

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// colorState tracks whether ANSI output is currently enabled.
type colorState struct {
	enabled bool
}

var globalColorState = &colorState{}

// InitColorState decides whether ANSI color is used, in the same priority
// order as the teacher: an explicit override, then NO_COLOR, then TTY
// auto-detection, defaulting to disabled for anything else (a file, a
// pipe, a bytes.Buffer in tests).
func InitColorState(explicitSetting *bool, writer io.Writer) {
	if explicitSetting != nil {
		color.NoColor = !*explicitSetting
		globalColorState.enabled = *explicitSetting
		return
	}

	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
		globalColorState.enabled = false
		return
	}

	if f, ok := writer.(*os.File); ok {
		globalColorState.enabled = isatty.IsTerminal(f.Fd())
		color.NoColor = !globalColorState.enabled
		return
	}

	color.NoColor = true
	globalColorState.enabled = false
}

// IsColorEnabled reports whether the package's render functions should
// apply ANSI codes.
func IsColorEnabled() bool {
	return globalColorState.enabled
}

func colorize(c *color.Color, text string) string {
	if !IsColorEnabled() {
		return text
	}
	return c.Sprint(text)
}

var (
	dimColor     = color.New(color.FgHiBlack)
	ruleColor    = color.New(color.FgCyan, color.Bold)
	patternColor = color.New(color.FgMagenta, color.Bold)
	addedColor   = color.New(color.FgGreen)
	removedColor = color.New(color.FgRed)
	sourceColor  = color.New(color.FgYellow)
)
