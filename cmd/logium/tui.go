package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jwedi/logium/pkg/engine/driver"
	"github.com/jwedi/logium/pkg/engine/model"
	"github.com/jwedi/logium/pkg/tui"
)

var (
	tuiFrom string
	tuiTo   string
	tuiLast string
)

var tuiCmd = &cobra.Command{
	Use:     "tui",
	Aliases: []string{"live", "ui"},
	Short:   "Launch an interactive live view of the analysis stream",
	Long: `Launch a Terminal User Interface that scrolls through rule matches,
state changes, and pattern matches as the engine produces them.

Examples:
  logium tui
  logium tui --last 1h`,
	PreRun: onCommandStart,
	Run:    runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&tuiFrom, "from", "", "only include lines at or after this RFC3339 timestamp")
	tuiCmd.Flags().StringVar(&tuiTo, "to", "", "only include lines at or before this RFC3339 timestamp")
	tuiCmd.Flags().StringVar(&tuiLast, "last", "", "only include lines in the last duration, e.g. 1h")
}

func runTUI(cmd *cobra.Command, args []string) {
	p := loadProject()

	timeRange, err := buildTimeRange(tuiFrom, tuiTo, tuiLast)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan model.AnalysisEvent, 64)
	errCh := make(chan error, 1)
	go func() {
		errCh <- driver.AnalyzeStreaming(ctx, p.Sources, p.SourceTemplates, p.TimestampTemplates, p.Rules, p.Rulesets, p.Patterns, events, timeRange)
		close(events)
	}()

	program := tea.NewProgram(tui.New(), tea.WithAltScreen())

	go func() {
		for ev := range events {
			program.Send(tui.EventMsg(ev))
		}
		program.Send(tui.StreamClosedMsg{Err: <-errCh})
	}()

	if _, err := program.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "error running tui:", err)
		os.Exit(1)
	}
}
