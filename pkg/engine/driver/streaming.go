package driver

import (
	"context"

	"github.com/jwedi/logium/internal/obslog"
	"github.com/jwedi/logium/pkg/engine/model"
	"github.com/jwedi/logium/pkg/engine/pattern"
	"github.com/jwedi/logium/pkg/engine/state"
)

const progressInterval = 500

// AnalyzeStreaming mirrors Analyze but emits one AnalysisEvent per match,
// change, and periodic progress tick through events, terminating with a
// Complete event. It returns early — without sending Complete — if ctx is
// cancelled, mirroring the original engine's "receiver dropped" early
// return. Setup errors are returned before any event is sent; an error
// from the merged stream is sent as an Error event and then returned,
// also without Complete.
func AnalyzeStreaming(
	ctx context.Context,
	sources []model.Source,
	templates []model.SourceTemplate,
	tsTemplates []model.TimestampTemplate,
	logRules []model.LogRule,
	rulesets []model.Ruleset,
	patterns []model.Pattern,
	events chan<- model.AnalysisEvent,
	timeRange model.TimeRange,
) error {
	runCtx, err := buildContext(templates, tsTemplates, logRules, rulesets)
	if err != nil {
		return err
	}

	obslog.Debug("stream phase1: processing %d sources", len(sources))
	processedSources, err := phase1(sources, runCtx)
	if err != nil {
		return err
	}

	obslog.Debug("stream phase2: merging %d processed sources", len(processedSources))
	merger, err := newProcessedMerger(processedSources)
	if err != nil {
		return err
	}

	stateMgr := state.NewManager(sources)
	patEval := pattern.NewEvaluator(patterns)

	var linesProcessed, totalRuleMatches, totalPatternMatches, totalStateChanges uint64

	for {
		processed, ok, err := merger.Next()
		if err != nil {
			send(ctx, events, model.AnalysisEvent{Kind: model.EventError, Message: err.Error()})
			return err
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

		linesProcessed++
		sourceName, _ := stateMgr.SourceName(line.SourceID)

		if processed.JSONFields != nil {
			for _, c := range stateMgr.ApplyJSONFields(line.SourceID, processed.JSONFields, line.Timestamp) {
				totalStateChanges++
				sc := toStateChange(c, line, sourceName, 0)
				if !send(ctx, events, model.AnalysisEvent{Kind: model.EventStateChange, StateChange: &sc}) {
					return nil
				}
			}
		}

		for _, rm := range processed.RuleMatches {
			logRule, ok := runCtx.ruleByID[rm.RuleID]
			if !ok {
				continue
			}
			for _, c := range stateMgr.ApplyMutations(line.SourceID, rm.Extracted, logRule.ExtractionRules, line.Timestamp) {
				totalStateChanges++
				sc := toStateChange(c, line, sourceName, rm.RuleID)
				if !send(ctx, events, model.AnalysisEvent{Kind: model.EventStateChange, StateChange: &sc}) {
					return nil
				}
			}

			totalRuleMatches++
			match := model.RuleMatch{
				RuleID:         rm.RuleID,
				SourceID:       line.SourceID,
				LogLine:        line,
				ExtractedState: rm.Extracted,
			}
			if !send(ctx, events, model.AnalysisEvent{Kind: model.EventRuleMatch, RuleMatch: &match}) {
				return nil
			}
		}

		for _, pm := range patEval.Evaluate(patterns, stateMgr, line.Timestamp) {
			totalPatternMatches++
			pmCopy := pm
			if !send(ctx, events, model.AnalysisEvent{Kind: model.EventPatternMatch, PatternMatch: &pmCopy}) {
				return nil
			}
		}

		if linesProcessed%progressInterval == 0 {
			if !send(ctx, events, model.AnalysisEvent{Kind: model.EventProgress, LinesProcessed: linesProcessed}) {
				return nil
			}
		}
	}

	send(ctx, events, model.AnalysisEvent{
		Kind:                model.EventComplete,
		TotalLines:          linesProcessed,
		TotalRuleMatches:    totalRuleMatches,
		TotalPatternMatches: totalPatternMatches,
		TotalStateChanges:   totalStateChanges,
	})
	return nil
}

// send delivers an event unless ctx is done, in which case it reports
// false so the caller can stop early without blocking forever on a
// receiver that has gone away.
func send(ctx context.Context, events chan<- model.AnalysisEvent, ev model.AnalysisEvent) bool {
	select {
	case events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
