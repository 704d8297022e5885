package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jwedi/logium/internal/obslog"
	"github.com/jwedi/logium/pkg/project"
)

var (
	configPath string

	loggingPath   string
	loggingLevel  string
	loggingStdout bool

	colorFlag string
)

var rootCmd = &cobra.Command{
	Use:    "logium",
	Short:  "Correlate structured events across multiple log sources",
	PreRun: onCommandStart,
	Run: func(cmd *cobra.Command, args []string) {
		home, err := os.UserHomeDir()
		if err == nil {
			defaultPath := filepath.Join(home, project.DefaultConfigDir, project.DefaultConfigFile)
			if _, err := os.Stat(defaultPath); os.IsNotExist(err) {
				fmt.Println("Welcome to logium!")
				fmt.Println("\nNo project file found.")
				fmt.Println("  Run 'logium init' to generate one interactively.")
				fmt.Println("\nOr use 'logium --help' to see all available commands.")
				return
			}
		}
		cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func onCommandStart(cmd *cobra.Command, args []string) {
	if err := obslog.Configure(obslog.Options{
		Stdout: loggingStdout,
		Path:   loggingPath,
		Level:  loggingLevel,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to configure logging: %v\n", err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "project", "p", "", "project file to load (defaults to LOGIUM_CONFIG or ~/.logium/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&loggingPath, "logging-path", "", "file to write application logs to")
	rootCmd.PersistentFlags().StringVar(&loggingLevel, "logging-level", "", "logging level: TRACE DEBUG INFO WARN ERROR")
	rootCmd.PersistentFlags().BoolVar(&loggingStdout, "logging-stdout", false, "also write application logs to stdout")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto", "colorize output: auto, always, never")

	_ = rootCmd.RegisterFlagCompletionFunc("logging-level", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"TRACE", "DEBUG", "INFO", "WARN", "ERROR"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(streamCmd)
	rootCmd.AddCommand(clusterCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(tuiCmd)
}

// colorOverride turns the --color flag into the *bool InitColorState wants:
// nil for "auto" (TTY auto-detect), else an explicit true/false.
func colorOverride() *bool {
	switch colorFlag {
	case "always":
		v := true
		return &v
	case "never":
		v := false
		return &v
	default:
		return nil
	}
}

// loadProject resolves and parses the project file, exiting the process
// with a formatted error on failure (same pattern the teacher's cmd
// package uses for config load failures).
func loadProject() *project.Project {
	p, err := project.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading project: %v\n", err)
		fmt.Fprintln(os.Stderr, "Tip: run 'logium init' to generate a project file.")
		os.Exit(1)
	}
	return p
}
