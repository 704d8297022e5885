package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwedi/logium/pkg/engine/model"
)

func TestEvaluateAnyMode(t *testing.T) {
	rule := model.LogRule{
		ID:        1,
		MatchMode: model.MatchAny,
		MatchRules: []model.MatchRule{
			{ID: 1, Pattern: "ERROR"},
			{ID: 2, Pattern: "WARN"},
		},
	}
	compiled, err := Compile([]model.LogRule{rule})
	require.NoError(t, err)

	_, ok := Evaluate(rule, "this is a WARN message", compiled[0])
	assert.True(t, ok)

	_, ok = Evaluate(rule, "this is fine", compiled[0])
	assert.False(t, ok)
}

func TestEvaluateAllMode(t *testing.T) {
	rule := model.LogRule{
		ID:        1,
		MatchMode: model.MatchAll,
		MatchRules: []model.MatchRule{
			{ID: 1, Pattern: "ERROR"},
			{ID: 2, Pattern: "timeout"},
		},
	}
	compiled, err := Compile([]model.LogRule{rule})
	require.NoError(t, err)

	_, ok := Evaluate(rule, "ERROR: timeout occurred", compiled[0])
	assert.True(t, ok)

	_, ok = Evaluate(rule, "ERROR: connection refused", compiled[0])
	assert.False(t, ok)
}

func TestEvaluateExtraction(t *testing.T) {
	rule := model.LogRule{
		ID:        1,
		MatchMode: model.MatchAny,
		MatchRules: []model.MatchRule{
			{ID: 1, Pattern: `latency=\d+`},
		},
		ExtractionRules: []model.ExtractionRule{
			{ID: 1, Type: model.ExtractParsed, StateKey: "latency", Pattern: `latency=(?P<latency>\d+)`},
			{ID: 2, Type: model.ExtractStatic, StateKey: "severity", StaticValue: "high"},
		},
	}
	compiled, err := Compile([]model.LogRule{rule})
	require.NoError(t, err)

	extracted, ok := Evaluate(rule, "request failed latency=450", compiled[0])
	require.True(t, ok)
	assert.Equal(t, model.IntegerValue(450), extracted["latency"])
	assert.Equal(t, model.StringValue("high"), extracted["severity"])
}

func TestCompileInvalidRegex(t *testing.T) {
	rule := model.LogRule{
		MatchRules: []model.MatchRule{{Pattern: "(unterminated"}},
	}
	_, err := Compile([]model.LogRule{rule})
	assert.Error(t, err)
}

func TestJSONValueToStateValue(t *testing.T) {
	v, ok := JSONValueToStateValue(float64(42))
	assert.True(t, ok)
	assert.Equal(t, model.IntegerValue(42), v)

	v, ok = JSONValueToStateValue(float64(3.5))
	assert.True(t, ok)
	assert.Equal(t, model.FloatValue(3.5), v)

	_, ok = JSONValueToStateValue(nil)
	assert.False(t, ok)
}
