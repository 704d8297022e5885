// Package rules compiles LogRules into ready-to-evaluate matchers and
// evaluates them against log lines, producing the extraction maps that
// feed the state manager. Grounded on compile_rules/evaluate_rule in the
// original engine; Go has no RegexSet equivalent, so the multi-pattern
// matcher here is a compiled list evaluated per line, the same shape the
// teacher's filter.go uses for its own regex-driven Filter.Match tree.
package rules

import (
	"encoding/json"
	"regexp"
	"strconv"

	"github.com/jwedi/logium/pkg/engine/errkind"
	"github.com/jwedi/logium/pkg/engine/model"
)

// compiledExtraction pairs an extraction rule's index with its compiled
// parsed-extraction regex.
type compiledExtraction struct {
	index int
	re    *regexp.Regexp
}

// CompiledRule holds the pre-compiled regex data for one LogRule.
type CompiledRule struct {
	RuleID      uint64
	matchRegexes []*regexp.Regexp
	matchCount  int
	matchMode   model.MatchMode
	extractions []compiledExtraction
}

// Compile pre-compiles every match and parsed-extraction pattern in rules,
// failing fast with InvalidRegex on the first bad pattern.
func Compile(logRules []model.LogRule) ([]CompiledRule, error) {
	compiled := make([]CompiledRule, 0, len(logRules))
	for _, rule := range logRules {
		matchRegexes := make([]*regexp.Regexp, 0, len(rule.MatchRules))
		for _, mr := range rule.MatchRules {
			re, err := regexp.Compile(mr.Pattern)
			if err != nil {
				return nil, errkind.New(errkind.InvalidRegex, "%s", err.Error())
			}
			matchRegexes = append(matchRegexes, re)
		}

		var extractions []compiledExtraction
		for idx, ext := range rule.ExtractionRules {
			if ext.Type != model.ExtractParsed || ext.Pattern == "" {
				continue
			}
			re, err := regexp.Compile(ext.Pattern)
			if err != nil {
				return nil, errkind.New(errkind.InvalidRegex, "%s", err.Error())
			}
			extractions = append(extractions, compiledExtraction{index: idx, re: re})
		}

		compiled = append(compiled, CompiledRule{
			RuleID:       rule.ID,
			matchRegexes: matchRegexes,
			matchCount:   len(rule.MatchRules),
			matchMode:    rule.MatchMode,
			extractions:  extractions,
		})
	}
	return compiled, nil
}

// Evaluate tests content against a compiled rule's match patterns under
// its Any/All mode, and on a match computes the extraction map. ok is
// false when the rule did not match.
func Evaluate(rule model.LogRule, content string, compiled CompiledRule) (map[string]model.StateValue, bool) {
	matchCount := 0
	for _, re := range compiled.matchRegexes {
		if re.MatchString(content) {
			matchCount++
		}
	}

	var matched bool
	switch compiled.matchMode {
	case model.MatchAny:
		matched = matchCount > 0
	case model.MatchAll:
		matched = matchCount == compiled.matchCount
	}
	if !matched {
		return nil, false
	}

	extracted := make(map[string]model.StateValue)
	for _, ext := range rule.ExtractionRules {
		switch ext.Type {
		case model.ExtractStatic:
			if ext.StaticValue != "" {
				extracted[ext.StateKey] = model.StringValue(ext.StaticValue)
			}
		case model.ExtractClear:
			// Handled by the state manager during mutation application.
		case model.ExtractParsed:
			re := findExtractionRegex(compiled, rule, ext)
			if re == nil {
				continue
			}
			caps := re.FindStringSubmatch(content)
			if caps == nil {
				continue
			}
			val, ok := namedCapture(re, caps, ext.StateKey)
			if !ok {
				continue
			}
			extracted[ext.StateKey] = coerce(val)
		}
	}
	return extracted, true
}

func findExtractionRegex(compiled CompiledRule, rule model.LogRule, ext model.ExtractionRule) *regexp.Regexp {
	for _, ce := range compiled.extractions {
		if rule.ExtractionRules[ce.index].ID == ext.ID {
			return ce.re
		}
	}
	return nil
}

func namedCapture(re *regexp.Regexp, caps []string, name string) (string, bool) {
	for i, n := range re.SubexpNames() {
		if n == name && i < len(caps) && caps[i] != "" {
			return caps[i], true
		}
	}
	return "", false
}

// coerce applies the Integer -> Float -> Bool -> String fallback chain the
// original engine uses for parsed-extraction captures.
func coerce(s string) model.StateValue {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return model.IntegerValue(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return model.FloatValue(f)
	}
	if s == "true" || s == "false" {
		return model.BoolValue(s == "true")
	}
	return model.StringValue(s)
}

// ProcessedLine is Phase 1's per-line output: a parsed line plus its rule
// matches and (in JSON mode) its decoded top-level fields.
type ProcessedLine struct {
	Line        model.LogLine
	RuleMatches []RuleMatchResult
	JSONFields  map[string]model.StateValue
}

// RuleMatchResult is one rule's extraction map for a ProcessedLine.
type RuleMatchResult struct {
	RuleID     uint64
	Extracted  map[string]model.StateValue
}

// JSONValueToStateValue converts a decoded JSON value into a StateValue,
// matching the original engine's coercion: strings and bools pass through,
// numbers prefer Integer then Float, null is dropped (ok=false), anything
// else is stringified.
func JSONValueToStateValue(v interface{}) (model.StateValue, bool) {
	switch t := v.(type) {
	case string:
		return model.StringValue(t), true
	case bool:
		return model.BoolValue(t), true
	case float64:
		if t == float64(int64(t)) {
			return model.IntegerValue(int64(t)), true
		}
		return model.FloatValue(t), true
	case nil:
		return model.StateValue{}, false
	default:
		return model.StringValue(stringifyJSON(t)), true
	}
}

func stringifyJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
