package driver

import (
	"time"

	"github.com/jwedi/logium/internal/obslog"
	"github.com/jwedi/logium/pkg/engine/merge"
	"github.com/jwedi/logium/pkg/engine/model"
	"github.com/jwedi/logium/pkg/engine/pattern"
	"github.com/jwedi/logium/pkg/engine/rules"
	"github.com/jwedi/logium/pkg/engine/state"
)

// sliceSource adapts a plain slice to merge.Source[T].
type sliceSource[T any] struct {
	items []T
	idx   int
}

func (s *sliceSource[T]) Next() (T, bool, error) {
	var zero T
	if s.idx >= len(s.items) {
		return zero, false, nil
	}
	v := s.items[s.idx]
	s.idx++
	return v, true, nil
}

func processedLineTime(p rules.ProcessedLine) time.Time { return p.Line.Timestamp }

// Analyze runs the full two-phase pipeline synchronously: a parallel
// per-source parse+rule-eval phase, then a sequential chronological
// merge with state mutation and pattern evaluation, collecting every
// match and change into one AnalysisResult.
func Analyze(
	sources []model.Source,
	templates []model.SourceTemplate,
	tsTemplates []model.TimestampTemplate,
	logRules []model.LogRule,
	rulesets []model.Ruleset,
	patterns []model.Pattern,
	timeRange model.TimeRange,
) (model.AnalysisResult, error) {
	ctx, err := buildContext(templates, tsTemplates, logRules, rulesets)
	if err != nil {
		return model.AnalysisResult{}, err
	}

	obslog.Debug("phase1: processing %d sources", len(sources))
	processedSources, err := phase1(sources, ctx)
	if err != nil {
		return model.AnalysisResult{}, err
	}

	obslog.Debug("phase2: merging %d processed sources", len(processedSources))
	merger, err := newProcessedMerger(processedSources)
	if err != nil {
		return model.AnalysisResult{}, err
	}

	stateMgr := state.NewManager(sources)
	patEval := pattern.NewEvaluator(patterns)

	var result model.AnalysisResult

	for {
		processed, ok, err := merger.Next()
		if err != nil {
			return result, err
		}
		if !ok {
			break
		}
		line := processed.Line

		if timeRange.HasStart && line.Timestamp.Before(timeRange.Start) {
			continue
		}
		if timeRange.HasEnd && line.Timestamp.After(timeRange.End) {
			break
		}

		sourceName, _ := stateMgr.SourceName(line.SourceID)

		if processed.JSONFields != nil {
			for _, c := range stateMgr.ApplyJSONFields(line.SourceID, processed.JSONFields, line.Timestamp) {
				result.StateChanges = append(result.StateChanges, toStateChange(c, line, sourceName, 0))
			}
		}

		for _, rm := range processed.RuleMatches {
			logRule, ok := ctx.ruleByID[rm.RuleID]
			if !ok {
				continue
			}
			for _, c := range stateMgr.ApplyMutations(line.SourceID, rm.Extracted, logRule.ExtractionRules, line.Timestamp) {
				result.StateChanges = append(result.StateChanges, toStateChange(c, line, sourceName, rm.RuleID))
			}
			result.RuleMatches = append(result.RuleMatches, model.RuleMatch{
				RuleID:         rm.RuleID,
				SourceID:       line.SourceID,
				LogLine:        line,
				ExtractedState: rm.Extracted,
			})
		}

		result.PatternMatches = append(result.PatternMatches, patEval.Evaluate(patterns, stateMgr, line.Timestamp)...)
	}

	return result, nil
}

func newProcessedMerger(processedSources [][]rules.ProcessedLine) (*merge.Merger[rules.ProcessedLine], error) {
	sources := make([]merge.Source[rules.ProcessedLine], len(processedSources))
	for i, lines := range processedSources {
		sources[i] = &sliceSource[rules.ProcessedLine]{items: lines}
	}
	return merge.NewMerger(sources, processedLineTime)
}

func toStateChange(c state.Change, line model.LogLine, sourceName string, ruleID uint64) model.StateChange {
	return model.StateChange{
		Timestamp:  line.Timestamp,
		SourceID:   line.SourceID,
		SourceName: sourceName,
		StateKey:   c.Key,
		OldValue:   c.Old,
		NewValue:   c.New,
		RuleID:     ruleID,
	}
}
