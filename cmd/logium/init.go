package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jwedi/logium/pkg/project"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactive wizard to generate a project file",
	Long: `Launch an interactive wizard that walks through describing one log
source — its file path, timestamp format, and an optional key=value
extraction rule — and writes a ready-to-use project file.

Example:
  logium init
  logium init -p /path/to/project.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runInitWizard(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	},
}

// These local DTOs mirror pkg/project's unexported wire shape just closely
// enough to marshal a starter project file; they intentionally don't reach
// into that package's internals.
type wizardTimestampTemplate struct {
	ID     uint64 `yaml:"id"`
	Name   string `yaml:"name"`
	Format string `yaml:"format"`
}

type wizardSourceTemplate struct {
	ID                  uint64 `yaml:"id"`
	Name                string `yaml:"name"`
	TimestampTemplateID uint64 `yaml:"timestamp_template_id"`
}

type wizardSource struct {
	ID         uint64 `yaml:"id"`
	Name       string `yaml:"name"`
	TemplateID uint64 `yaml:"template_id"`
	FilePath   string `yaml:"file_path"`
}

type wizardExtractionRule struct {
	ID       uint64 `yaml:"id"`
	Type     string `yaml:"type"`
	StateKey string `yaml:"state_key"`
	Pattern  string `yaml:"pattern"`
	Mode     string `yaml:"mode"`
}

type wizardMatchRule struct {
	ID      uint64 `yaml:"id"`
	Pattern string `yaml:"pattern"`
}

type wizardRule struct {
	ID              uint64                 `yaml:"id"`
	Name            string                 `yaml:"name"`
	MatchMode       string                 `yaml:"match_mode"`
	MatchRules      []wizardMatchRule      `yaml:"match_rules"`
	ExtractionRules []wizardExtractionRule `yaml:"extraction_rules"`
}

type wizardRuleset struct {
	ID         uint64   `yaml:"id"`
	TemplateID uint64   `yaml:"template_id"`
	RuleIDs    []uint64 `yaml:"rule_ids"`
}

type wizardFile struct {
	TimestampTemplates []wizardTimestampTemplate `yaml:"timestamp_templates"`
	SourceTemplates    []wizardSourceTemplate    `yaml:"source_templates"`
	Sources            []wizardSource            `yaml:"sources"`
	Rules              []wizardRule              `yaml:"rules,omitempty"`
	Rulesets           []wizardRuleset           `yaml:"rulesets,omitempty"`
}

func runInitWizard(explicitPath string) error {
	var (
		sourceName   string
		filePath     string
		tsFormat     string
		keyField     string
		addExtractor bool
	)

	fmt.Println("Welcome to the logium project wizard!")
	fmt.Println()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Source name").
				Description("A friendly identifier for this log source").
				Placeholder("web").
				Value(&sourceName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Title("Log file path").
				Placeholder("/var/log/app.log").
				Value(&filePath).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("path cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Title("Timestamp format").
				Description("strftime-style layout used at the start of each line").
				Placeholder("%Y-%m-%d %H:%M:%S").
				Value(&tsFormat),

			huh.NewConfirm().
				Title("Add a key=value extraction rule now?").
				Value(&addExtractor),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	if tsFormat == "" {
		tsFormat = "%Y-%m-%d %H:%M:%S"
	}

	if addExtractor {
		extractorForm := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Field name to extract").
					Description("The key of a \"key=value\" pair appearing in lines").
					Placeholder("status").
					Value(&keyField),
			),
		)
		if err := extractorForm.Run(); err != nil {
			return err
		}
	}

	file := wizardFile{
		TimestampTemplates: []wizardTimestampTemplate{{ID: 1, Name: "default", Format: tsFormat}},
		SourceTemplates:    []wizardSourceTemplate{{ID: 1, Name: "default", TimestampTemplateID: 1}},
		Sources:            []wizardSource{{ID: 1, Name: sourceName, TemplateID: 1, FilePath: filePath}},
	}

	if keyField != "" {
		pattern := fmt.Sprintf(`%s=(?P<%s>\S+)`, keyField, keyField)
		file.Rules = []wizardRule{{
			ID:         1,
			Name:       keyField + "-rule",
			MatchMode:  "any",
			MatchRules: []wizardMatchRule{{ID: 1, Pattern: keyField + "="}},
			ExtractionRules: []wizardExtractionRule{{
				ID: 1, Type: "parsed", StateKey: keyField, Pattern: pattern, Mode: "replace",
			}},
		}}
		file.Rulesets = []wizardRuleset{{ID: 1, TemplateID: 1, RuleIDs: []uint64{1}}}
	}

	out, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to generate YAML: %w", err)
	}

	fmt.Println("\n" + strings.Repeat("-", 60))
	fmt.Println("Generated project file:")
	fmt.Println(strings.Repeat("-", 60))
	fmt.Println(string(out))
	fmt.Println(strings.Repeat("-", 60) + "\n")

	targetPath, err := resolveInitPath(explicitPath)
	if err != nil {
		return err
	}

	var confirm bool
	confirmForm := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save this project file?").
				Description(fmt.Sprintf("Target: %s", targetPath)).
				Affirmative("Yes, save it").
				Negative("No, cancel").
				Value(&confirm),
		),
	)
	if err := confirmForm.Run(); err != nil {
		return err
	}
	if !confirm {
		fmt.Println("Not saved. Run 'logium init' again when ready.")
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}
	if err := os.WriteFile(targetPath, out, 0o644); err != nil {
		return fmt.Errorf("failed to save project file: %w", err)
	}

	fmt.Printf("Saved to %s\n\n", targetPath)
	fmt.Println("Try it now:")
	fmt.Printf("  logium analyze -p %s\n", targetPath)
	return nil
}

func resolveInitPath(explicitPath string) (string, error) {
	if strings.TrimSpace(explicitPath) != "" {
		return explicitPath, nil
	}
	if env := strings.TrimSpace(os.Getenv(project.EnvConfigPath)); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, project.DefaultConfigDir, project.DefaultConfigFile), nil
}
