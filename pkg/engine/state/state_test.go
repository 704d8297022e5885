package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwedi/logium/pkg/engine/model"
)

func TestReplaceThenChangeDetected(t *testing.T) {
	m := NewManager([]model.Source{{ID: 1, Name: "app"}})
	rules := []model.ExtractionRule{{StateKey: "status", Type: model.ExtractParsed, Mode: model.Replace}}

	changes := m.ApplyMutations(1, map[string]model.StateValue{"status": model.StringValue("up")}, rules, time.Now())
	require.Len(t, changes, 1)
	assert.Nil(t, changes[0].Old)
	assert.Equal(t, model.StringValue("up"), *changes[0].New)

	changes = m.ApplyMutations(1, map[string]model.StateValue{"status": model.StringValue("down")}, rules, time.Now())
	require.Len(t, changes, 1)
	assert.Equal(t, model.StringValue("up"), *changes[0].Old)
	assert.Equal(t, model.StringValue("down"), *changes[0].New)
}

func TestReplaceNoChangeWhenSameValue(t *testing.T) {
	m := NewManager([]model.Source{{ID: 1, Name: "app"}})
	rules := []model.ExtractionRule{{StateKey: "status", Type: model.ExtractParsed, Mode: model.Replace}}

	m.ApplyMutations(1, map[string]model.StateValue{"status": model.StringValue("up")}, rules, time.Now())
	changes := m.ApplyMutations(1, map[string]model.StateValue{"status": model.StringValue("up")}, rules, time.Now())
	assert.Empty(t, changes)
}

func TestAccumulateIntegers(t *testing.T) {
	m := NewManager([]model.Source{{ID: 1, Name: "app"}})
	rules := []model.ExtractionRule{{StateKey: "count", Type: model.ExtractParsed, Mode: model.Accumulate}}

	m.ApplyMutations(1, map[string]model.StateValue{"count": model.IntegerValue(5)}, rules, time.Now())
	changes := m.ApplyMutations(1, map[string]model.StateValue{"count": model.IntegerValue(3)}, rules, time.Now())
	require.Len(t, changes, 1)
	assert.Equal(t, model.IntegerValue(8), *changes[0].New)
}

func TestAccumulateStringsConcat(t *testing.T) {
	m := NewManager([]model.Source{{ID: 1, Name: "app"}})
	rules := []model.ExtractionRule{{StateKey: "tags", Type: model.ExtractParsed, Mode: model.Accumulate}}

	m.ApplyMutations(1, map[string]model.StateValue{"tags": model.StringValue("a")}, rules, time.Now())
	changes := m.ApplyMutations(1, map[string]model.StateValue{"tags": model.StringValue("b")}, rules, time.Now())
	require.Len(t, changes, 1)
	assert.Equal(t, model.StringValue("a,b"), *changes[0].New)
}

func TestAccumulateMixedTypeFallsBackToReplace(t *testing.T) {
	m := NewManager([]model.Source{{ID: 1, Name: "app"}})
	rules := []model.ExtractionRule{{StateKey: "v", Type: model.ExtractParsed, Mode: model.Accumulate}}

	m.ApplyMutations(1, map[string]model.StateValue{"v": model.StringValue("x")}, rules, time.Now())
	changes := m.ApplyMutations(1, map[string]model.StateValue{"v": model.BoolValue(true)}, rules, time.Now())
	require.Len(t, changes, 1)
	assert.Equal(t, model.BoolValue(true), *changes[0].New)
}

func TestClearRemovesKey(t *testing.T) {
	m := NewManager([]model.Source{{ID: 1, Name: "app"}})
	setRules := []model.ExtractionRule{{StateKey: "k", Type: model.ExtractParsed, Mode: model.Replace}}
	m.ApplyMutations(1, map[string]model.StateValue{"k": model.IntegerValue(1)}, setRules, time.Now())

	clearRules := []model.ExtractionRule{{StateKey: "k", Type: model.ExtractClear}}
	changes := m.ApplyMutations(1, nil, clearRules, time.Now())
	require.Len(t, changes, 1)
	assert.Nil(t, changes[0].New)
}

func TestGetByNameCrossSource(t *testing.T) {
	m := NewManager([]model.Source{{ID: 1, Name: "app"}, {ID: 2, Name: "db"}})
	rules := []model.ExtractionRule{{StateKey: "k", Type: model.ExtractParsed, Mode: model.Replace}}
	m.ApplyMutations(1, map[string]model.StateValue{"k": model.IntegerValue(42)}, rules, time.Now())

	v, ok := m.GetByName("app", "k")
	require.True(t, ok)
	assert.Equal(t, model.IntegerValue(42), v)

	_, ok = m.GetByName("db", "k")
	assert.False(t, ok)
}
