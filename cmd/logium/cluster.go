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
	clusterFrom string
	clusterTo   string
	clusterLast string
	clusterJSON bool
)

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Group structurally similar lines across every source",
	Long: `Merge every source's lines chronologically and bucket them by
structural template, masking variable tokens (UUIDs, timestamps, numbers,
IPs) with a placeholder. Rules and patterns are not evaluated. Singleton clusters are
dropped; the rest are reported most frequent first.`,
	PreRun: onCommandStart,
	Run:    runCluster,
}

func init() {
	clusterCmd.Flags().StringVar(&clusterFrom, "from", "", "only include lines at or after this RFC3339 timestamp")
	clusterCmd.Flags().StringVar(&clusterTo, "to", "", "only include lines at or before this RFC3339 timestamp")
	clusterCmd.Flags().StringVar(&clusterLast, "last", "", "only include lines in the last duration, e.g. 1h")
	clusterCmd.Flags().BoolVar(&clusterJSON, "json", false, "print result as JSON instead of colorized text")
}

func runCluster(cmd *cobra.Command, args []string) {
	p := loadProject()

	timeRange, err := buildTimeRange(clusterFrom, clusterTo, clusterLast)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	result, err := driver.Cluster(p.Sources, p.SourceTemplates, p.TimestampTemplates, timeRange)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error clustering:", err)
		os.Exit(1)
	}

	if clusterJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.Encode(result)
		return
	}

	printer.InitColorState(colorOverride(), os.Stdout)
	printer.PrintClusterResult(os.Stdout, result)
}
