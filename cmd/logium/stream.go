package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jwedi/logium/pkg/engine/driver"
	"github.com/jwedi/logium/pkg/engine/model"
	"github.com/jwedi/logium/pkg/printer"
)

var (
	streamFrom string
	streamTo   string
	streamLast string
	streamJSON bool
)

var streamCmd = &cobra.Command{
	Use:     "stream",
	Aliases: []string{"tail"},
	Short:   "Run the engine and print matches as they occur",
	Long: `Like analyze, but prints each rule match, state change, pattern match,
and periodic progress tick as it happens instead of batching everything
into one AnalysisResult at the end. Interrupt with Ctrl+C to stop early.`,
	PreRun: onCommandStart,
	Run:    runStream,
}

func init() {
	streamCmd.Flags().StringVar(&streamFrom, "from", "", "only include lines at or after this RFC3339 timestamp")
	streamCmd.Flags().StringVar(&streamTo, "to", "", "only include lines at or before this RFC3339 timestamp")
	streamCmd.Flags().StringVar(&streamLast, "last", "", "only include lines in the last duration, e.g. 1h")
	streamCmd.Flags().BoolVar(&streamJSON, "json", false, "print events as NDJSON instead of colorized text")
}

func runStream(cmd *cobra.Command, args []string) {
	p := loadProject()

	timeRange, err := buildTimeRange(streamFrom, streamTo, streamLast)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		cancel()
	}()

	events := make(chan model.AnalysisEvent, 64)
	errCh := make(chan error, 1)
	go func() {
		errCh <- driver.AnalyzeStreaming(ctx, p.Sources, p.SourceTemplates, p.TimestampTemplates, p.Rules, p.Rulesets, p.Patterns, events, timeRange)
		close(events)
	}()

	printer.InitColorState(colorOverride(), os.Stdout)
	enc := json.NewEncoder(os.Stdout)

	for ev := range events {
		if streamJSON {
			enc.Encode(ev)
			continue
		}
		printEvent(ev)
	}

	if err := <-errCh; err != nil {
		fmt.Fprintln(os.Stderr, "error streaming:", err)
		os.Exit(1)
	}
}

func printEvent(ev model.AnalysisEvent) {
	switch ev.Kind {
	case model.EventStateChange:
		printer.PrintStateChange(os.Stdout, *ev.StateChange)
	case model.EventRuleMatch:
		printer.PrintRuleMatch(os.Stdout, *ev.RuleMatch)
	case model.EventPatternMatch:
		printer.PrintPatternMatch(os.Stdout, *ev.PatternMatch)
	case model.EventProgress:
		fmt.Fprintf(os.Stderr, "... %d lines processed\n", ev.LinesProcessed)
	case model.EventComplete:
		fmt.Fprintf(os.Stdout, "\ndone: %d lines, %d rule matches, %d pattern matches, %d state changes\n",
			ev.TotalLines, ev.TotalRuleMatches, ev.TotalPatternMatches, ev.TotalStateChanges)
	case model.EventError:
		fmt.Fprintln(os.Stderr, "error:", ev.Message)
	}
}
