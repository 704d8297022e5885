// Package state tracks per-source key/value state across a run: replace,
// accumulate, and clear mutations, with diff events for every actual
// change. Grounded on StateManager/apply_mutations/accumulate in the
// original engine.
package state

import (
	"fmt"
	"time"

	"github.com/jwedi/logium/pkg/engine/model"
)

// Change is one observed state mutation: (key, old, new). Old or New is
// nil when the key did not exist before/after the mutation (set or clear).
type Change struct {
	Key string
	Old *model.StateValue
	New *model.StateValue
}

// Manager owns the per-source state map and the source id/name index
// needed to resolve cross-source StateRef predicates by name.
type Manager struct {
	perSource  map[uint64]map[string]model.TrackedValue
	sourceName map[uint64]string
	nameToID   map[string]uint64
}

// NewManager indexes sources by id and name up front.
func NewManager(sources []model.Source) *Manager {
	m := &Manager{
		perSource:  make(map[uint64]map[string]model.TrackedValue),
		sourceName: make(map[uint64]string, len(sources)),
		nameToID:   make(map[string]uint64, len(sources)),
	}
	for _, s := range sources {
		m.sourceName[s.ID] = s.Name
		m.nameToID[s.Name] = s.ID
	}
	return m
}

// ApplyMutations runs a LogRule's extraction rules against a source's
// state and returns every key that actually changed value.
func (m *Manager) ApplyMutations(sourceID uint64, extracted map[string]model.StateValue, extractionRules []model.ExtractionRule, timestamp time.Time) []Change {
	st, ok := m.perSource[sourceID]
	if !ok {
		st = make(map[string]model.TrackedValue)
		m.perSource[sourceID] = st
	}

	var changes []Change
	for _, rule := range extractionRules {
		switch rule.Type {
		case model.ExtractClear:
			old, existed := st[rule.StateKey]
			if existed {
				delete(st, rule.StateKey)
				oldVal := old.Value
				changes = append(changes, Change{Key: rule.StateKey, Old: &oldVal, New: nil})
			}

		case model.ExtractStatic:
			if rule.StaticValue == "" {
				continue
			}
			newVal := model.StringValue(rule.StaticValue)
			changes = append(changes, m.setOrAccumulate(st, rule.StateKey, newVal, rule.Mode, timestamp)...)

		case model.ExtractParsed:
			val, found := extracted[rule.StateKey]
			if !found {
				continue
			}
			changes = append(changes, m.setOrAccumulate(st, rule.StateKey, val, rule.Mode, timestamp)...)
		}
	}
	return changes
}

func (m *Manager) setOrAccumulate(st map[string]model.TrackedValue, key string, newVal model.StateValue, mode model.ExtractionMode, timestamp time.Time) []Change {
	oldTracked, hadOld := st[key]
	var oldPtr *model.StateValue
	if hadOld {
		v := oldTracked.Value
		oldPtr = &v
	}

	switch mode {
	case model.Replace:
		st[key] = model.TrackedValue{Value: newVal, SetAt: timestamp}
	case model.Accumulate:
		merged := newVal
		if hadOld {
			merged = accumulate(oldTracked.Value, newVal)
		}
		st[key] = model.TrackedValue{Value: merged, SetAt: timestamp}
	}

	newTracked := st[key]
	if hadOld && oldTracked.Value.Equal(newTracked.Value) {
		return nil
	}
	nv := newTracked.Value
	return []Change{{Key: key, Old: oldPtr, New: &nv}}
}

// accumulate merges new into existing: strings concatenate with a comma,
// same-type numerics add, Integer/Float cross-adds promoting to Float.
// Any other type pairing falls back to replace-with-new.
func accumulate(existing, next model.StateValue) model.StateValue {
	switch {
	case existing.Kind == model.KindString && next.Kind == model.KindString:
		return model.StringValue(fmt.Sprintf("%s,%s", existing.Str, next.Str))
	case existing.Kind == model.KindInteger && next.Kind == model.KindInteger:
		return model.IntegerValue(existing.Int + next.Int)
	case existing.Kind == model.KindFloat && next.Kind == model.KindFloat:
		return model.FloatValue(existing.Flt + next.Flt)
	case existing.Kind == model.KindInteger && next.Kind == model.KindFloat:
		return model.FloatValue(float64(existing.Int) + next.Flt)
	case existing.Kind == model.KindFloat && next.Kind == model.KindInteger:
		return model.FloatValue(existing.Flt + float64(next.Int))
	default:
		return next
	}
}

// GetByName resolves a state value by source name and key, for
// cross-source StateRef predicate operands.
func (m *Manager) GetByName(sourceName, key string) (model.StateValue, bool) {
	id, ok := m.nameToID[sourceName]
	if !ok {
		return model.StateValue{}, false
	}
	st, ok := m.perSource[id]
	if !ok {
		return model.StateValue{}, false
	}
	tv, ok := st[key]
	if !ok {
		return model.StateValue{}, false
	}
	return tv.Value, true
}

// SourceName resolves a source id to the name it was constructed with.
func (m *Manager) SourceName(sourceID uint64) (string, bool) {
	name, ok := m.sourceName[sourceID]
	return name, ok
}

// ApplyJSONFields directly replaces a source's state from a decoded JSON
// object (Phase 1's auto-extraction), bypassing ExtractionRule mode —
// JSON-mode fields always replace, the same as the original engine's
// RuleID-0 state-change path.
func (m *Manager) ApplyJSONFields(sourceID uint64, fields map[string]model.StateValue, timestamp time.Time) []Change {
	st, ok := m.perSource[sourceID]
	if !ok {
		st = make(map[string]model.TrackedValue)
		m.perSource[sourceID] = st
	}

	var changes []Change
	for key, val := range fields {
		oldTracked, hadOld := st[key]
		var oldPtr *model.StateValue
		if hadOld {
			v := oldTracked.Value
			oldPtr = &v
		}
		st[key] = model.TrackedValue{Value: val, SetAt: timestamp}
		if hadOld && oldTracked.Value.Equal(val) {
			continue
		}
		newVal := val
		changes = append(changes, Change{Key: key, Old: oldPtr, New: &newVal})
	}
	return changes
}

// Snapshot returns an immutable, name-keyed copy of all per-source state.
func (m *Manager) Snapshot() model.StateSnapshot {
	snap := make(model.StateSnapshot, len(m.perSource))
	for id, st := range m.perSource {
		name, ok := m.sourceName[id]
		if !ok {
			continue
		}
		copyState := make(map[string]model.TrackedValue, len(st))
		for k, v := range st {
			copyState[k] = v
		}
		snap[name] = copyState
	}
	return snap
}
