package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/jwedi/logium/pkg/engine/driver"
	"github.com/jwedi/logium/pkg/printer"
	"github.com/jwedi/logium/pkg/project"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run analyze whenever the project file changes",
	Long: `Watch the resolved project file(s) for changes and re-run analyze on
every save. A convenience around the unchanged analyze pipeline — it does
not tail the underlying log sources, only the project file itself.`,
	PreRun: onCommandStart,
	Run:    runWatch,
}

func runWatch(cmd *cobra.Command, args []string) {
	paths, err := project.ResolveConfigPaths(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error resolving project path:", err)
		os.Exit(1)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error creating watcher:", err)
		os.Exit(1)
	}
	defer watcher.Close()

	for _, path := range paths {
		dir := filepath.Dir(path)
		if err := watcher.Add(dir); err != nil {
			fmt.Fprintf(os.Stderr, "error watching %s: %v\n", dir, err)
			os.Exit(1)
		}
	}

	fmt.Fprintf(os.Stderr, "watching %d project file(s), Ctrl+C to stop\n", len(paths))
	analyzeOnce()

	watched := make(map[string]bool, len(paths))
	for _, p := range paths {
		watched[filepath.Clean(p)] = true
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !watched[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			fmt.Fprintf(os.Stderr, "\n%s changed, re-running analyze\n", event.Name)
			analyzeOnce()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			fmt.Fprintln(os.Stderr, "watch error:", err)
		}
	}
}

func analyzeOnce() {
	p := loadProject()
	result, err := driver.Analyze(p.Sources, p.SourceTemplates, p.TimestampTemplates, p.Rules, p.Rulesets, p.Patterns, emptyTimeRange())
	if err != nil {
		fmt.Fprintln(os.Stderr, "error running analysis:", err)
		return
	}

	printer.InitColorState(colorOverride(), os.Stdout)
	for _, sc := range result.StateChanges {
		printer.PrintStateChange(os.Stdout, sc)
	}
	for _, rm := range result.RuleMatches {
		printer.PrintRuleMatch(os.Stdout, rm)
	}
	for _, pm := range result.PatternMatches {
		printer.PrintPatternMatch(os.Stdout, pm)
	}
	fmt.Fprintf(os.Stdout, "%d rule matches, %d pattern matches, %d state changes\n",
		len(result.RuleMatches), len(result.PatternMatches), len(result.StateChanges))
}
