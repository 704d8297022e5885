// Package project resolves a YAML project file into the fully-typed
// []Source / []SourceTemplate / []LogRule / ... collections the engine's
// driver package expects, filling the role of the "configuration store"
// collaborator spec.md §6 names without any relational persistence.
// Grounded on the teacher's pkg/log/client/config.LoadContextConfig:
// explicit-path / env-var / default-directory precedence, multi-file
// merge (last file wins per entity id), gopkg.in/yaml.v3 unmarshal.
package project

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jwedi/logium/pkg/engine/errkind"
	"github.com/jwedi/logium/pkg/engine/model"
)

const (
	// EnvConfigPath overrides which project file(s) Load reads, colon (or
	// OS path-list-separator) delimited for multiple files.
	EnvConfigPath = "LOGIUM_CONFIG"

	// DefaultConfigDir is the directory under the user's home Load falls
	// back to when no explicit path or env var is given.
	DefaultConfigDir = ".logium"

	// DefaultConfigFile is the filename Load looks for in DefaultConfigDir.
	DefaultConfigFile = "config.yaml"
)

// Project holds every entity collection the driver's Analyze/Cluster
// entry points need, already resolved from a project file's string-keyed
// YAML DTOs into the engine's typed model values.
type Project struct {
	TimestampTemplates []model.TimestampTemplate
	SourceTemplates    []model.SourceTemplate
	Sources            []model.Source
	Rules              []model.LogRule
	Rulesets           []model.Ruleset
	Patterns           []model.Pattern
}

// ResolveConfigPaths determines which project file(s) to load, in order:
// an explicit path, the LOGIUM_CONFIG env var (possibly multiple files
// separated by the OS path-list separator), or ~/.logium/config.yaml.
func ResolveConfigPaths(explicitPath string) ([]string, error) {
	if strings.TrimSpace(explicitPath) != "" {
		return []string{explicitPath}, nil
	}

	if env := strings.TrimSpace(os.Getenv(EnvConfigPath)); env != "" {
		return strings.Split(env, string(os.PathListSeparator)), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, errkind.New(errkind.FileNotFound, "no explicit path, no %s, and no home directory: %s", EnvConfigPath, err.Error())
	}
	defaultPath := filepath.Join(home, DefaultConfigDir, DefaultConfigFile)
	if _, err := os.Stat(defaultPath); err != nil {
		return nil, errkind.New(errkind.FileNotFound, "no project file found at default path %s", defaultPath)
	}
	return []string{defaultPath}, nil
}

// Load resolves the project file path(s) via ResolveConfigPaths, parses
// each as YAML, and merges them into one Project — later files win when
// an entity id repeats, the same rule the teacher's config merge uses.
func Load(explicitPath string) (*Project, error) {
	paths, err := ResolveConfigPaths(explicitPath)
	if err != nil {
		return nil, err
	}

	merged := &fileDTO{}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errkind.New(errkind.FileNotFound, "reading project file %s: %s", path, err.Error())
		}
		var partial fileDTO
		if err := yaml.Unmarshal(data, &partial); err != nil {
			return nil, errkind.New(errkind.ParseError, "parsing project file %s: %s", path, err.Error())
		}
		mergeFile(merged, &partial)
	}

	return resolve(merged)
}

// mergeFile appends src's entities onto dst, letting later IDs override
// earlier ones of the same kind (last file wins, matching the teacher's
// config merge semantics).
func mergeFile(dst, src *fileDTO) {
	dst.TimestampTemplates = mergeByID(dst.TimestampTemplates, src.TimestampTemplates, func(d timestampTemplateDTO) uint64 { return d.ID })
	dst.SourceTemplates = mergeByID(dst.SourceTemplates, src.SourceTemplates, func(d sourceTemplateDTO) uint64 { return d.ID })
	dst.Sources = mergeByID(dst.Sources, src.Sources, func(d sourceDTO) uint64 { return d.ID })
	dst.Rules = mergeByID(dst.Rules, src.Rules, func(d logRuleDTO) uint64 { return d.ID })
	dst.Rulesets = mergeByID(dst.Rulesets, src.Rulesets, func(d rulesetDTO) uint64 { return d.ID })
	dst.Patterns = mergeByID(dst.Patterns, src.Patterns, func(d patternDTO) uint64 { return d.ID })
}

func mergeByID[T any](existing, incoming []T, idOf func(T) uint64) []T {
	if len(incoming) == 0 {
		return existing
	}
	byID := make(map[uint64]int, len(existing))
	for i, e := range existing {
		byID[idOf(e)] = i
	}
	for _, in := range incoming {
		if i, ok := byID[idOf(in)]; ok {
			existing[i] = in
			continue
		}
		byID[idOf(in)] = len(existing)
		existing = append(existing, in)
	}
	return existing
}

// resolve converts a merged fileDTO into a Project, surfacing the first
// conversion error encountered (an unknown enum string, a malformed
// operand) as an errkind.ParseError.
func resolve(f *fileDTO) (*Project, error) {
	p := &Project{
		Sources: make([]model.Source, len(f.Sources)),
	}

	for _, t := range f.TimestampTemplates {
		p.TimestampTemplates = append(p.TimestampTemplates, t.toModel())
	}
	for _, t := range f.SourceTemplates {
		p.SourceTemplates = append(p.SourceTemplates, t.toModel())
	}
	for i, s := range f.Sources {
		p.Sources[i] = s.toModel()
	}
	for _, r := range f.Rules {
		converted, err := r.toModel()
		if err != nil {
			return nil, err
		}
		p.Rules = append(p.Rules, converted)
	}
	for _, rs := range f.Rulesets {
		p.Rulesets = append(p.Rulesets, rs.toModel())
	}
	for _, pt := range f.Patterns {
		converted, err := pt.toModel()
		if err != nil {
			return nil, err
		}
		p.Patterns = append(p.Patterns, converted)
	}

	return p, nil
}
