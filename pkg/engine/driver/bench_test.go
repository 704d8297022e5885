package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jwedi/logium/pkg/engine/model"
)

func writeBenchSource(b *testing.B, dir, name string, lines int, startSecond int) string {
	b.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		b.Fatal(err)
	}
	defer f.Close()

	base := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	for i := 0; i < lines; i++ {
		ts := base.Add(time.Duration(startSecond+i*3) * time.Second)
		fmt.Fprintf(f, "%s request_id=%d status=%d latency_ms=%d\n",
			ts.Format("2006-01-02 15:04:05"), i, 200+i%3, 10+i%50)
	}
	return path
}

// BenchmarkAnalyzeSyntheticMultiSource mirrors the original engine's
// analysis_benchmark: three interleaved synthetic sources run through the
// full two-phase pipeline with a handful of rules and one pattern.
func BenchmarkAnalyzeSyntheticMultiSource(b *testing.B) {
	dir := b.TempDir()
	tsTemplates, templates := basicTemplates()

	a := writeBenchSource(b, dir, "svc-a.log", 2000, 0)
	bFile := writeBenchSource(b, dir, "svc-b.log", 2000, 1)
	c := writeBenchSource(b, dir, "svc-c.log", 2000, 2)

	sources := []model.Source{
		{ID: 1, Name: "svc-a", TemplateID: 1, FilePath: a},
		{ID: 2, Name: "svc-b", TemplateID: 1, FilePath: bFile},
		{ID: 3, Name: "svc-c", TemplateID: 1, FilePath: c},
	}

	rules := []model.LogRule{
		{
			ID:         1,
			MatchMode:  model.MatchAny,
			MatchRules: []model.MatchRule{{ID: 1, Pattern: `status=`}},
			ExtractionRules: []model.ExtractionRule{
				{ID: 1, Type: model.ExtractParsed, StateKey: "status", Pattern: `status=(?P<status>\d+)`, Mode: model.Replace},
			},
		},
		{
			ID:         2,
			MatchMode:  model.MatchAny,
			MatchRules: []model.MatchRule{{ID: 2, Pattern: `latency_ms=`}},
			ExtractionRules: []model.ExtractionRule{
				{ID: 2, Type: model.ExtractParsed, StateKey: "latency_ms", Pattern: `latency_ms=(?P<latency_ms>\d+)`, Mode: model.Accumulate},
			},
		},
	}
	rulesets := []model.Ruleset{{TemplateID: 1, RuleIDs: []uint64{1, 2}}}
	patterns := []model.Pattern{
		{
			ID: 1,
			Predicates: []model.PatternPredicate{
				{SourceName: "svc-a", StateKey: "status", Operator: model.OpEq, Operand: model.LiteralOperand(model.IntegerValue(202))},
			},
		},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Analyze(sources, templates, tsTemplates, rules, rulesets, patterns, model.TimeRange{}); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkClusterSyntheticMultiSource benchmarks the clustering entry
// point over the same synthetic fixture.
func BenchmarkClusterSyntheticMultiSource(b *testing.B) {
	dir := b.TempDir()
	tsTemplates, templates := basicTemplates()
	a := writeBenchSource(b, dir, "svc-a.log", 3000, 0)
	sources := []model.Source{{ID: 1, Name: "svc-a", TemplateID: 1, FilePath: a}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Cluster(sources, templates, tsTemplates, model.TimeRange{}); err != nil {
			b.Fatal(err)
		}
	}
}
