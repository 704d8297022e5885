package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwedi/logium/pkg/engine/errkind"
	"github.com/jwedi/logium/pkg/engine/model"
)

func writeProjectFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const baseProjectYAML = `
timestamp_templates:
  - id: 1
    name: default
    format: "%Y-%m-%d %H:%M:%S"

source_templates:
  - id: 1
    name: default
    timestamp_template_id: 1

sources:
  - id: 1
    name: web
    template_id: 1
    file_path: web.log

rules:
  - id: 1
    name: status-rule
    match_mode: any
    match_rules:
      - id: 1
        pattern: "status="
    extraction_rules:
      - id: 1
        type: parsed
        state_key: status
        pattern: "status=(?P<status>\\d+)"
        mode: replace

rulesets:
  - id: 1
    template_id: 1
    rule_ids: [1]

patterns:
  - id: 1
    name: bad-status
    predicates:
      - source_name: web
        state_key: status
        operator: eq
        operand:
          literal:
            integer: 500
`

func TestLoadResolvesEntities(t *testing.T) {
	dir := t.TempDir()
	path := writeProjectFile(t, dir, "project.yaml", baseProjectYAML)

	p, err := Load(path)
	require.NoError(t, err)

	require.Len(t, p.TimestampTemplates, 1)
	assert.Equal(t, "%Y-%m-%d %H:%M:%S", p.TimestampTemplates[0].Format)

	require.Len(t, p.Sources, 1)
	assert.Equal(t, "web", p.Sources[0].Name)

	require.Len(t, p.Rules, 1)
	assert.Equal(t, model.MatchAny, p.Rules[0].MatchMode)
	require.Len(t, p.Rules[0].ExtractionRules, 1)
	assert.Equal(t, model.Replace, p.Rules[0].ExtractionRules[0].Mode)

	require.Len(t, p.Patterns, 1)
	require.Len(t, p.Patterns[0].Predicates, 1)
	pred := p.Patterns[0].Predicates[0]
	assert.Equal(t, model.OpEq, pred.Operator)
	assert.Equal(t, model.IntegerValue(500), pred.Operand.Literal)
}

func TestLoadMergesMultipleFilesLastWins(t *testing.T) {
	dir := t.TempDir()
	base := writeProjectFile(t, dir, "base.yaml", baseProjectYAML)
	override := writeProjectFile(t, dir, "override.yaml", `
sources:
  - id: 1
    name: web-renamed
    template_id: 1
    file_path: web2.log
  - id: 2
    name: db
    template_id: 1
    file_path: db.log
`)

	t.Setenv(EnvConfigPath, base+string(os.PathListSeparator)+override)
	p, err := Load("")
	require.NoError(t, err)

	require.Len(t, p.Sources, 2)
	bySourceID := map[uint64]model.Source{}
	for _, s := range p.Sources {
		bySourceID[s.ID] = s
	}
	assert.Equal(t, "web-renamed", bySourceID[1].Name)
	assert.Equal(t, "db", bySourceID[2].Name)
}

func TestLoadUnknownEnumIsParseError(t *testing.T) {
	dir := t.TempDir()
	path := writeProjectFile(t, dir, "bad.yaml", `
rules:
  - id: 1
    name: broken
    match_mode: sometimes
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errkind.Matches(err, errkind.ParseError))
}

func TestResolveConfigPathsExplicitBeatsEnv(t *testing.T) {
	t.Setenv(EnvConfigPath, "/should/not/be/used.yaml")
	paths, err := ResolveConfigPaths("/explicit/path.yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{"/explicit/path.yaml"}, paths)
}

func TestResolveConfigPathsEnvVarSplitsList(t *testing.T) {
	sep := string(os.PathListSeparator)
	t.Setenv(EnvConfigPath, "a.yaml"+sep+"b.yaml")
	paths, err := ResolveConfigPaths("")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.yaml", "b.yaml"}, paths)
}
