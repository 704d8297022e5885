package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwedi/logium/pkg/engine/model"
)

func writeSourceFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const basicFormat = "%Y-%m-%d %H:%M:%S"

func basicTemplates() ([]model.TimestampTemplate, []model.SourceTemplate) {
	ts := model.TimestampTemplate{ID: 1, Format: basicFormat}
	tmpl := model.SourceTemplate{ID: 1, TimestampTemplateID: 1}
	return []model.TimestampTemplate{ts}, []model.SourceTemplate{tmpl}
}

// Scenario 1: three sources, chronological merge.
func TestScenarioThreeSourceChronologicalMerge(t *testing.T) {
	dir := t.TempDir()
	tsTemplates, templates := basicTemplates()

	a := writeSourceFile(t, dir, "a.log", "2024-01-15 00:00:01 a1\n2024-01-15 00:00:04 a2\n2024-01-15 00:00:07 a3\n")
	b := writeSourceFile(t, dir, "b.log", "2024-01-15 00:00:02 b1\n2024-01-15 00:00:05 b2\n")
	c := writeSourceFile(t, dir, "c.log", "2024-01-15 00:00:03 c1\n2024-01-15 00:00:06 c2\n")

	sources := []model.Source{
		{ID: 1, Name: "A", TemplateID: 1, FilePath: a},
		{ID: 2, Name: "B", TemplateID: 1, FilePath: b},
		{ID: 3, Name: "C", TemplateID: 1, FilePath: c},
	}

	result, err := Analyze(sources, templates, tsTemplates, nil, nil, nil, model.TimeRange{})
	require.NoError(t, err)
	assert.Empty(t, result.RuleMatches)
	assert.Empty(t, result.PatternMatches)

	// A MatchAll rule with no match patterns matches every line, so its rule
	// matches come out in merged order.
	catchAll := []model.LogRule{{ID: 1, MatchMode: model.MatchAll}}
	catchAllSets := []model.Ruleset{{TemplateID: 1, RuleIDs: []uint64{1}}}
	result, err = Analyze(sources, templates, tsTemplates, catchAll, catchAllSets, nil, model.TimeRange{})
	require.NoError(t, err)
	var order []uint64
	for _, rm := range result.RuleMatches {
		order = append(order, rm.SourceID)
	}
	assert.Equal(t, []uint64{1, 2, 3, 1, 2, 3, 1}, order)
}

// Scenario 2: cross-source predicate with StateRef.
func TestScenarioCrossSourceStateRefPredicate(t *testing.T) {
	dir := t.TempDir()
	tsTemplates, templates := basicTemplates()

	server := writeSourceFile(t, dir, "server.log",
		"2024-01-15 00:00:01 region=us-east\n2024-01-15 00:00:05 player_count=100\n")
	client := writeSourceFile(t, dir, "client.log",
		"2024-01-15 00:00:02 region=us-east\n")

	sources := []model.Source{
		{ID: 1, Name: "server", TemplateID: 1, FilePath: server},
		{ID: 2, Name: "client", TemplateID: 1, FilePath: client},
	}

	rules := []model.LogRule{
		{
			ID:        1,
			MatchMode: model.MatchAny,
			MatchRules: []model.MatchRule{{ID: 1, Pattern: `region=`}},
			ExtractionRules: []model.ExtractionRule{
				{ID: 1, Type: model.ExtractParsed, StateKey: "region", Pattern: `region=(?P<region>\S+)`, Mode: model.Replace},
			},
		},
		{
			ID:        2,
			MatchMode: model.MatchAny,
			MatchRules: []model.MatchRule{{ID: 2, Pattern: `player_count=`}},
			ExtractionRules: []model.ExtractionRule{
				{ID: 2, Type: model.ExtractParsed, StateKey: "player_count", Pattern: `player_count=(?P<player_count>\d+)`, Mode: model.Replace},
			},
		},
	}
	rulesets := []model.Ruleset{{TemplateID: 1, RuleIDs: []uint64{1, 2}}}

	patterns := []model.Pattern{
		{
			ID: 1,
			Predicates: []model.PatternPredicate{
				{SourceName: "server", StateKey: "region", Operator: model.OpEq, Operand: model.StateRefOperand("client", "region")},
				{SourceName: "server", StateKey: "player_count", Operator: model.OpGt, Operand: model.LiteralOperand(model.IntegerValue(50))},
			},
		},
	}

	result, err := Analyze(sources, templates, tsTemplates, rules, rulesets, patterns, model.TimeRange{})
	require.NoError(t, err)
	require.Len(t, result.PatternMatches, 1)
	assert.Equal(t, 5, result.PatternMatches[0].Timestamp.Second())
}

// Scenario 3: accumulate integer.
func TestScenarioAccumulateInteger(t *testing.T) {
	dir := t.TempDir()
	tsTemplates, templates := basicTemplates()
	path := writeSourceFile(t, dir, "app.log",
		"2024-01-15 00:00:01 count=3\n2024-01-15 00:00:02 count=5\n2024-01-15 00:00:03 count=7\n")

	sources := []model.Source{{ID: 1, Name: "app", TemplateID: 1, FilePath: path}}
	rules := []model.LogRule{
		{
			ID:         1,
			MatchMode:  model.MatchAny,
			MatchRules: []model.MatchRule{{ID: 1, Pattern: `count=`}},
			ExtractionRules: []model.ExtractionRule{
				{ID: 1, Type: model.ExtractParsed, StateKey: "count", Pattern: `count=(?P<count>\d+)`, Mode: model.Accumulate},
			},
		},
	}
	rulesets := []model.Ruleset{{TemplateID: 1, RuleIDs: []uint64{1}}}

	result, err := Analyze(sources, templates, tsTemplates, rules, rulesets, nil, model.TimeRange{})
	require.NoError(t, err)
	require.Len(t, result.StateChanges, 3)

	assert.Nil(t, result.StateChanges[0].OldValue)
	assert.Equal(t, model.IntegerValue(3), *result.StateChanges[0].NewValue)

	assert.Equal(t, model.IntegerValue(3), *result.StateChanges[1].OldValue)
	assert.Equal(t, model.IntegerValue(8), *result.StateChanges[1].NewValue)

	assert.Equal(t, model.IntegerValue(8), *result.StateChanges[2].OldValue)
	assert.Equal(t, model.IntegerValue(15), *result.StateChanges[2].NewValue)
}

// Scenario 4: pattern invalidation resets progress.
func TestScenarioPatternInvalidationResetsProgress(t *testing.T) {
	dir := t.TempDir()
	tsTemplates, templates := basicTemplates()
	path := writeSourceFile(t, dir, "app.log",
		"2024-01-15 00:00:01 status=running\n2024-01-15 00:00:02 status=stopped count=20\n")

	sources := []model.Source{{ID: 1, Name: "app", TemplateID: 1, FilePath: path}}
	rules := []model.LogRule{
		{
			ID:         1,
			MatchMode:  model.MatchAny,
			MatchRules: []model.MatchRule{{ID: 1, Pattern: `status=`}},
			ExtractionRules: []model.ExtractionRule{
				{ID: 1, Type: model.ExtractParsed, StateKey: "status", Pattern: `status=(?P<status>\w+)`, Mode: model.Replace},
			},
		},
		{
			ID:         2,
			MatchMode:  model.MatchAny,
			MatchRules: []model.MatchRule{{ID: 2, Pattern: `count=`}},
			ExtractionRules: []model.ExtractionRule{
				{ID: 2, Type: model.ExtractParsed, StateKey: "count", Pattern: `count=(?P<count>\d+)`, Mode: model.Replace},
			},
		},
	}
	rulesets := []model.Ruleset{{TemplateID: 1, RuleIDs: []uint64{1, 2}}}
	patterns := []model.Pattern{
		{
			ID: 1,
			Predicates: []model.PatternPredicate{
				{SourceName: "app", StateKey: "status", Operator: model.OpEq, Operand: model.LiteralOperand(model.StringValue("running"))},
				{SourceName: "app", StateKey: "count", Operator: model.OpGt, Operand: model.LiteralOperand(model.IntegerValue(10))},
			},
		},
	}

	result, err := Analyze(sources, templates, tsTemplates, rules, rulesets, patterns, model.TimeRange{})
	require.NoError(t, err)
	assert.Empty(t, result.PatternMatches)
}

// Scenario 5: JSON auto-extraction.
func TestScenarioJSONAutoExtraction(t *testing.T) {
	dir := t.TempDir()
	path := writeSourceFile(t, dir, "app.json",
		`{"timestamp":"2024-01-15 10:00:01","port":8080,"usage_pct":85.5,"success":true}`+"\n")

	tsTemplates := []model.TimestampTemplate{{ID: 1, Format: basicFormat}}
	templates := []model.SourceTemplate{{ID: 1, TimestampTemplateID: 1, JSONTimestampField: "timestamp"}}
	sources := []model.Source{{ID: 1, Name: "app", TemplateID: 1, FilePath: path}}

	result, err := Analyze(sources, templates, tsTemplates, nil, nil, nil, model.TimeRange{})
	require.NoError(t, err)

	byKey := map[string]model.StateChange{}
	for _, sc := range result.StateChanges {
		byKey[sc.StateKey] = sc
		assert.Equal(t, uint64(0), sc.RuleID)
	}
	require.Contains(t, byKey, "port")
	assert.Equal(t, model.IntegerValue(8080), *byKey["port"].NewValue)
	require.Contains(t, byKey, "usage_pct")
	assert.Equal(t, model.FloatValue(85.5), *byKey["usage_pct"].NewValue)
	require.Contains(t, byKey, "success")
	assert.Equal(t, model.BoolValue(true), *byKey["success"].NewValue)
}

// Scenario 6: clustering with singleton filter.
func TestScenarioClusteringWithSingletonFilter(t *testing.T) {
	dir := t.TempDir()
	tsTemplates, templates := basicTemplates()
	path := writeSourceFile(t, dir, "app.log",
		"2024-01-15 00:00:01 ERROR timeout after 100 ms\n"+
			"2024-01-15 00:00:02 ERROR timeout after 200 ms\n"+
			"2024-01-15 00:00:03 ERROR timeout after 300 ms\n"+
			"2024-01-15 00:00:04 INFO started successfully\n")

	sources := []model.Source{{ID: 1, Name: "app", TemplateID: 1, FilePath: path}}

	result, err := Cluster(sources, templates, tsTemplates, model.TimeRange{})
	require.NoError(t, err)
	assert.Equal(t, uint64(4), result.TotalLines)
	require.Len(t, result.Clusters, 1)
	assert.Equal(t, uint64(3), result.Clusters[0].Count)
	assert.Contains(t, result.Clusters[0].Template, "<*>")
}
