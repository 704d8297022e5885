// Package driver wires every other engine component into the two-phase
// analysis pipeline: a parallel per-source parse+rule-eval phase followed
// by a sequential chronological merge, state mutation, and pattern
// evaluation phase. Grounded on analyze/analyze_streaming/process_source
// in the original engine, with the goroutine fan-out shape of the
// teacher's pkg/log/client/multi_search_result.go.
package driver

import (
	"github.com/jwedi/logium/pkg/engine/errkind"
	"github.com/jwedi/logium/pkg/engine/model"
	"github.com/jwedi/logium/pkg/engine/rules"
)

// runContext holds every lookup table Phase 1 and Phase 2 need, built once
// per Analyze/AnalyzeStreaming call. Cluster builds its own template maps
// and does not use it.
type runContext struct {
	templateByID     map[uint64]model.SourceTemplate
	tsTemplateByID   map[uint64]model.TimestampTemplate
	ruleByID         map[uint64]model.LogRule
	compiledByID     map[uint64]rules.CompiledRule
	templateRuleIDs  map[uint64][]uint64
}

func buildContext(
	templates []model.SourceTemplate,
	tsTemplates []model.TimestampTemplate,
	logRules []model.LogRule,
	rulesets []model.Ruleset,
) (*runContext, error) {
	ctx := &runContext{
		templateByID:    make(map[uint64]model.SourceTemplate, len(templates)),
		tsTemplateByID:  make(map[uint64]model.TimestampTemplate, len(tsTemplates)),
		ruleByID:        make(map[uint64]model.LogRule, len(logRules)),
		compiledByID:    make(map[uint64]rules.CompiledRule, len(logRules)),
		templateRuleIDs: make(map[uint64][]uint64),
	}

	for _, t := range templates {
		ctx.templateByID[t.ID] = t
	}
	for _, t := range tsTemplates {
		ctx.tsTemplateByID[t.ID] = t
	}
	for _, r := range logRules {
		ctx.ruleByID[r.ID] = r
	}

	compiled, err := rules.Compile(logRules)
	if err != nil {
		return nil, err
	}
	for _, c := range compiled {
		ctx.compiledByID[c.RuleID] = c
	}

	for _, rs := range rulesets {
		ctx.templateRuleIDs[rs.TemplateID] = append(ctx.templateRuleIDs[rs.TemplateID], rs.RuleIDs...)
	}

	return ctx, nil
}

func (ctx *runContext) resolveSource(source model.Source) (model.SourceTemplate, model.TimestampTemplate, []uint64, error) {
	template, ok := ctx.templateByID[source.TemplateID]
	if !ok {
		return model.SourceTemplate{}, model.TimestampTemplate{}, nil,
			errkind.New(errkind.ParseError, "no template found for template_id %d", source.TemplateID)
	}
	tsTemplate, ok := ctx.tsTemplateByID[template.TimestampTemplateID]
	if !ok {
		return model.SourceTemplate{}, model.TimestampTemplate{}, nil,
			errkind.New(errkind.ParseError, "no timestamp template found for timestamp_template_id %d", template.TimestampTemplateID)
	}
	return template, tsTemplate, ctx.templateRuleIDs[source.TemplateID], nil
}
