// Package pattern evaluates ordered-predicate Patterns against the current
// per-source state: each pattern tracks a progress pointer into its
// predicate list, re-validates earlier predicates whenever the current one
// holds, resets on regression, and re-fires from the start once fully
// satisfied. Grounded on PatternEvaluator/evaluate_predicate in the
// original engine.
package pattern

import (
	"strings"
	"time"

	"github.com/jwedi/logium/pkg/engine/model"
)

// StateSource is the read side of state.Manager a predicate needs:
// resolving a (sourceName, key) pair to its current value.
type StateSource interface {
	GetByName(sourceName, key string) (model.StateValue, bool)
	Snapshot() model.StateSnapshot
}

// Evaluator tracks one progress index per pattern across calls to
// Evaluate, so patterns can be fed a stream of state changes one at a
// time, as the driver does after every line.
type Evaluator struct {
	progress []int
}

// NewEvaluator allocates a zeroed progress pointer for each pattern.
func NewEvaluator(patterns []model.Pattern) *Evaluator {
	return &Evaluator{progress: make([]int, len(patterns))}
}

// Evaluate checks every pattern against the current state and returns any
// newly fired PatternMatches, stamped with timestamp (the merged line's
// timestamp, never wall-clock, per the engine's streaming-mode contract).
func (e *Evaluator) Evaluate(patterns []model.Pattern, st StateSource, timestamp time.Time) []model.PatternMatch {
	var matches []model.PatternMatch

	for i, pat := range patterns {
		if len(pat.Predicates) == 0 {
			continue
		}

		progress := e.progress[i]
		current := pat.Predicates[progress]
		if !evaluatePredicate(current, st) {
			continue
		}

		allPreviousHold := true
		for prev := 0; prev < progress; prev++ {
			if !evaluatePredicate(pat.Predicates[prev], st) {
				allPreviousHold = false
				break
			}
		}

		if !allPreviousHold {
			e.progress[i] = 0
			continue
		}

		e.progress[i] = progress + 1
		if e.progress[i] == len(pat.Predicates) {
			matches = append(matches, model.PatternMatch{
				PatternID:     pat.ID,
				Timestamp:     timestamp,
				StateSnapshot: st.Snapshot(),
			})
			e.progress[i] = 0
		}
	}

	return matches
}

func evaluatePredicate(pred model.PatternPredicate, st StateSource) bool {
	current, hasCurrent := st.GetByName(pred.SourceName, pred.StateKey)

	var operand model.StateValue
	hasOperand := true
	if pred.Operand.IsStateRef {
		operand, hasOperand = st.GetByName(pred.Operand.RefSource, pred.Operand.RefKey)
	} else {
		operand = pred.Operand.Literal
	}

	if pred.Operator == model.OpExists {
		return hasCurrent
	}
	if !hasCurrent || !hasOperand {
		return false
	}

	switch pred.Operator {
	case model.OpEq:
		return current.Equal(operand)
	case model.OpNeq:
		return !current.Equal(operand)
	case model.OpGt:
		c, ok := current.Compare(operand)
		return ok && c > 0
	case model.OpLt:
		c, ok := current.Compare(operand)
		return ok && c < 0
	case model.OpGte:
		c, ok := current.Compare(operand)
		return ok && c >= 0
	case model.OpLte:
		c, ok := current.Compare(operand)
		return ok && c <= 0
	case model.OpContains:
		if current.Kind != model.KindString || operand.Kind != model.KindString {
			return false
		}
		return strings.Contains(current.Str, operand.Str)
	default:
		return false
	}
}
