// Package tui is a scaled-down live view of a streaming analysis run: one
// scrolling list of AnalysisEvents instead of the teacher's multi-tab
// multi-backend log browser. Grounded on the teacher's pkg/tui package
// (Bubble Tea Model/Update/View shape, lipgloss styling, keybindings,
// clipboard copy), cut down to the much smaller event set this engine
// streams.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorPrimary   = lipgloss.Color("#7C3AED")
	ColorSuccess   = lipgloss.Color("#22C55E")
	ColorWarning   = lipgloss.Color("#F59E0B")
	ColorError     = lipgloss.Color("#EF4444")
	ColorMuted     = lipgloss.Color("#6B7280")
	ColorBorder    = lipgloss.Color("#374151")
	ColorBg        = lipgloss.Color("#1F2937")
	ColorBgActive  = lipgloss.Color("#374151")
	ColorText      = lipgloss.Color("#F9FAFB")
	ColorTextMuted = lipgloss.Color("#9CA3AF")
)

// EventColors maps each AnalysisEvent kind to the color its row renders in.
var EventColors = map[string]lipgloss.Color{
	"rule":    ColorPrimary,
	"pattern": ColorWarning,
	"state":   ColorSuccess,
	"error":   ColorError,
}

// Styles holds the style set for the live event view.
type Styles struct {
	Header        lipgloss.Style
	StatusBar     lipgloss.Style
	HelpBar       lipgloss.Style
	EventLine     lipgloss.Style
	EventSelected lipgloss.Style
	EventKind     lipgloss.Style
	EventTime     lipgloss.Style
}

// DefaultStyles builds the default style set.
func DefaultStyles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Background(ColorBg).
			Foreground(ColorText).
			Bold(true).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Background(ColorBg).
			Foreground(ColorTextMuted).
			Padding(0, 1),

		HelpBar: lipgloss.NewStyle().
			Background(ColorBg).
			Foreground(ColorMuted).
			Padding(0, 1),

		EventLine: lipgloss.NewStyle().
			Foreground(ColorText),

		EventSelected: lipgloss.NewStyle().
			Background(ColorBgActive).
			Foreground(ColorText).
			Bold(true),

		EventKind: lipgloss.NewStyle().
			Bold(true).
			Width(9),

		EventTime: lipgloss.NewStyle().
			Foreground(ColorMuted),
	}
}

// KindStyle returns the style for an event kind label, falling back to
// muted for anything not in EventColors.
func KindStyle(kind string) lipgloss.Style {
	c, ok := EventColors[kind]
	if !ok {
		c = ColorMuted
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true).Width(9)
}
