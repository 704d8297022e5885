package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jwedi/logium/pkg/engine/driver"
	"github.com/jwedi/logium/pkg/printer"
)

var (
	analyzeFrom string
	analyzeTo   string
	analyzeLast string
	analyzeJSON bool
)

var analyzeCmd = &cobra.Command{
	Use:     "analyze",
	Aliases: []string{"run"},
	Short:   "Run the full engine over a project's sources and print matches",
	Long: `Run the two-phase analysis pipeline over every source in the project:
parse and evaluate rules per source, merge chronologically, track state, and
evaluate patterns against the merged stream.

Examples:
  logium analyze
  logium analyze --last 1h
  logium analyze --json`,
	PreRun: onCommandStart,
	Run:    runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFrom, "from", "", "only include lines at or after this RFC3339 timestamp")
	analyzeCmd.Flags().StringVar(&analyzeTo, "to", "", "only include lines at or before this RFC3339 timestamp")
	analyzeCmd.Flags().StringVar(&analyzeLast, "last", "", "only include lines in the last duration, e.g. 1h")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print results as NDJSON instead of colorized text")
}

func runAnalyze(cmd *cobra.Command, args []string) {
	p := loadProject()

	timeRange, err := buildTimeRange(analyzeFrom, analyzeTo, analyzeLast)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	result, err := driver.Analyze(p.Sources, p.SourceTemplates, p.TimestampTemplates, p.Rules, p.Rulesets, p.Patterns, timeRange)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error running analysis:", err)
		os.Exit(1)
	}

	printer.InitColorState(colorOverride(), os.Stdout)

	if analyzeJSON {
		enc := json.NewEncoder(os.Stdout)
		for _, sc := range result.StateChanges {
			enc.Encode(sc)
		}
		for _, rm := range result.RuleMatches {
			enc.Encode(rm)
		}
		for _, pm := range result.PatternMatches {
			enc.Encode(pm)
		}
		return
	}

	for _, sc := range result.StateChanges {
		printer.PrintStateChange(os.Stdout, sc)
	}
	for _, rm := range result.RuleMatches {
		printer.PrintRuleMatch(os.Stdout, rm)
	}
	for _, pm := range result.PatternMatches {
		printer.PrintPatternMatch(os.Stdout, pm)
	}

	fmt.Fprintf(os.Stdout, "\n%d rule matches, %d pattern matches, %d state changes\n",
		len(result.RuleMatches), len(result.PatternMatches), len(result.StateChanges))
}
