package project

import (
	"github.com/jwedi/logium/pkg/engine/errkind"
	"github.com/jwedi/logium/pkg/engine/model"
)

// fileDTO is the on-disk YAML shape of a project file: everything the
// driver needs, in the author-friendly string form (enum names instead of
// ints, a ready state) rather than the engine's resolved model types.
type fileDTO struct {
	TimestampTemplates []timestampTemplateDTO `yaml:"timestamp_templates"`
	SourceTemplates    []sourceTemplateDTO     `yaml:"source_templates"`
	Sources            []sourceDTO             `yaml:"sources"`
	Rules              []logRuleDTO            `yaml:"rules"`
	Rulesets           []rulesetDTO            `yaml:"rulesets"`
	Patterns           []patternDTO            `yaml:"patterns"`
}

type timestampTemplateDTO struct {
	ID              uint64 `yaml:"id"`
	Name            string `yaml:"name"`
	Format          string `yaml:"format"`
	ExtractionRegex string `yaml:"extraction_regex"`
	DefaultYear     int    `yaml:"default_year"`
	HasDefaultYear  bool   `yaml:"has_default_year"`
}

func (d timestampTemplateDTO) toModel() model.TimestampTemplate {
	return model.TimestampTemplate{
		ID:              d.ID,
		Name:            d.Name,
		Format:          d.Format,
		ExtractionRegex: d.ExtractionRegex,
		DefaultYear:     d.DefaultYear,
		HasDefaultYear:  d.HasDefaultYear,
	}
}

type sourceTemplateDTO struct {
	ID                  uint64 `yaml:"id"`
	Name                string `yaml:"name"`
	TimestampTemplateID uint64 `yaml:"timestamp_template_id"`
	LineDelimiter       string `yaml:"line_delimiter"`
	ContentRegex        string `yaml:"content_regex"`
	ContinuationRegex   string `yaml:"continuation_regex"`
	JSONTimestampField  string `yaml:"json_timestamp_field"`
}

func (d sourceTemplateDTO) toModel() model.SourceTemplate {
	delim := byte('\n')
	if len(d.LineDelimiter) > 0 {
		delim = d.LineDelimiter[0]
	}
	return model.SourceTemplate{
		ID:                  d.ID,
		Name:                d.Name,
		TimestampTemplateID: d.TimestampTemplateID,
		LineDelimiter:       delim,
		ContentRegex:        d.ContentRegex,
		ContinuationRegex:   d.ContinuationRegex,
		JSONTimestampField:  d.JSONTimestampField,
	}
}

type sourceDTO struct {
	ID         uint64 `yaml:"id"`
	Name       string `yaml:"name"`
	TemplateID uint64 `yaml:"template_id"`
	FilePath   string `yaml:"file_path"`
}

func (d sourceDTO) toModel() model.Source {
	return model.Source{ID: d.ID, Name: d.Name, TemplateID: d.TemplateID, FilePath: d.FilePath}
}

type matchRuleDTO struct {
	ID      uint64 `yaml:"id"`
	Pattern string `yaml:"pattern"`
}

type extractionRuleDTO struct {
	ID          uint64 `yaml:"id"`
	Type        string `yaml:"type"` // parsed | static | clear
	StateKey    string `yaml:"state_key"`
	Pattern     string `yaml:"pattern"`
	StaticValue string `yaml:"static_value"`
	Mode        string `yaml:"mode"` // replace | accumulate
}

func (d extractionRuleDTO) toModel() (model.ExtractionRule, error) {
	var typ model.ExtractionType
	switch d.Type {
	case "", "parsed":
		typ = model.ExtractParsed
	case "static":
		typ = model.ExtractStatic
	case "clear":
		typ = model.ExtractClear
	default:
		return model.ExtractionRule{}, errkind.New(errkind.ParseError, "extraction rule %d: unknown type %q", d.ID, d.Type)
	}

	var mode model.ExtractionMode
	switch d.Mode {
	case "", "replace":
		mode = model.Replace
	case "accumulate":
		mode = model.Accumulate
	default:
		return model.ExtractionRule{}, errkind.New(errkind.ParseError, "extraction rule %d: unknown mode %q", d.ID, d.Mode)
	}

	return model.ExtractionRule{
		ID:          d.ID,
		Type:        typ,
		StateKey:    d.StateKey,
		Pattern:     d.Pattern,
		StaticValue: d.StaticValue,
		Mode:        mode,
	}, nil
}

type logRuleDTO struct {
	ID              uint64              `yaml:"id"`
	Name            string              `yaml:"name"`
	MatchMode       string              `yaml:"match_mode"` // any | all
	MatchRules      []matchRuleDTO      `yaml:"match_rules"`
	ExtractionRules []extractionRuleDTO `yaml:"extraction_rules"`
}

func (d logRuleDTO) toModel() (model.LogRule, error) {
	var mode model.MatchMode
	switch d.MatchMode {
	case "", "any":
		mode = model.MatchAny
	case "all":
		mode = model.MatchAll
	default:
		return model.LogRule{}, errkind.New(errkind.ParseError, "rule %d: unknown match_mode %q", d.ID, d.MatchMode)
	}

	matchRules := make([]model.MatchRule, len(d.MatchRules))
	for i, mr := range d.MatchRules {
		matchRules[i] = model.MatchRule{ID: mr.ID, Pattern: mr.Pattern}
	}

	extractions := make([]model.ExtractionRule, len(d.ExtractionRules))
	for i, er := range d.ExtractionRules {
		converted, err := er.toModel()
		if err != nil {
			return model.LogRule{}, err
		}
		extractions[i] = converted
	}

	return model.LogRule{
		ID:              d.ID,
		Name:            d.Name,
		MatchMode:       mode,
		MatchRules:      matchRules,
		ExtractionRules: extractions,
	}, nil
}

type rulesetDTO struct {
	ID         uint64   `yaml:"id"`
	Name       string   `yaml:"name"`
	TemplateID uint64   `yaml:"template_id"`
	RuleIDs    []uint64 `yaml:"rule_ids"`
}

func (d rulesetDTO) toModel() model.Ruleset {
	return model.Ruleset{ID: d.ID, Name: d.Name, TemplateID: d.TemplateID, RuleIDs: d.RuleIDs}
}

type literalDTO struct {
	String *string  `yaml:"string"`
	Int    *int64   `yaml:"integer"`
	Float  *float64 `yaml:"float"`
	Bool   *bool    `yaml:"bool"`
}

func (d literalDTO) toModel() (model.StateValue, bool) {
	switch {
	case d.String != nil:
		return model.StringValue(*d.String), true
	case d.Int != nil:
		return model.IntegerValue(*d.Int), true
	case d.Float != nil:
		return model.FloatValue(*d.Float), true
	case d.Bool != nil:
		return model.BoolValue(*d.Bool), true
	default:
		return model.StateValue{}, false
	}
}

type stateRefDTO struct {
	Source string `yaml:"source"`
	Key    string `yaml:"key"`
}

type operandDTO struct {
	Literal  *literalDTO  `yaml:"literal"`
	StateRef *stateRefDTO `yaml:"state_ref"`
}

func (d operandDTO) toModel() (model.Operand, error) {
	if d.StateRef != nil {
		return model.StateRefOperand(d.StateRef.Source, d.StateRef.Key), nil
	}
	if d.Literal != nil {
		if v, ok := d.Literal.toModel(); ok {
			return model.LiteralOperand(v), nil
		}
	}
	return model.Operand{}, errkind.New(errkind.ParseError, "operand has neither literal nor state_ref set")
}

type patternPredicateDTO struct {
	SourceName string     `yaml:"source_name"`
	StateKey   string     `yaml:"state_key"`
	Operator   string     `yaml:"operator"`
	Operand    operandDTO `yaml:"operand"`
}

var operatorNames = map[string]model.Operator{
	"eq":       model.OpEq,
	"neq":      model.OpNeq,
	"gt":       model.OpGt,
	"lt":       model.OpLt,
	"gte":      model.OpGte,
	"lte":      model.OpLte,
	"contains": model.OpContains,
	"exists":   model.OpExists,
}

func (d patternPredicateDTO) toModel() (model.PatternPredicate, error) {
	op, ok := operatorNames[d.Operator]
	if !ok {
		return model.PatternPredicate{}, errkind.New(errkind.ParseError, "unknown operator %q", d.Operator)
	}
	operand, err := d.Operand.toModel()
	if err != nil && op != model.OpExists {
		return model.PatternPredicate{}, err
	}
	return model.PatternPredicate{
		SourceName: d.SourceName,
		StateKey:   d.StateKey,
		Operator:   op,
		Operand:    operand,
	}, nil
}

type patternDTO struct {
	ID         uint64                `yaml:"id"`
	Name       string                `yaml:"name"`
	Predicates []patternPredicateDTO `yaml:"predicates"`
}

func (d patternDTO) toModel() (model.Pattern, error) {
	predicates := make([]model.PatternPredicate, len(d.Predicates))
	for i, p := range d.Predicates {
		converted, err := p.toModel()
		if err != nil {
			return model.Pattern{}, errkind.New(errkind.ParseError, "pattern %d predicate %d: %s", d.ID, i, err.Error())
		}
		predicates[i] = converted
	}
	return model.Pattern{ID: d.ID, Name: d.Name, Predicates: predicates}, nil
}
