// Package rules evaluates program eligibility criteria against submission facts.
package rules

import (
	"encoding/json"
	"strconv"

	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/program"
	"github.com/yassinekamouss/tamkeen-sub000/pkg/logger"
)

// Evaluator decides whether a criteria tree accepts a fact map.
type Evaluator struct {
	log *logger.Logger
}

// NewEvaluator constructs an evaluator.
func NewEvaluator(log *logger.Logger) *Evaluator {
	if log == nil {
		log = logger.NewDefault("rules")
	}
	return &Evaluator{log: log}
}

// Evaluate walks the criteria tree. A nil tree accepts everything. An empty
// "and" group is vacuously true and an empty "or" group is vacuously false,
// the identity elements of each combinator.
//
// A rule referencing a fact the submission does not carry evaluates to false
// rather than failing the whole tree; so does a malformed operator or value
// shape, with a warning logged. Criteria are authored by admins and persisted
// verbatim, so evaluation must tolerate whatever the builder saved.
func (e *Evaluator) Evaluate(group *program.RuleGroup, facts map[string]any) bool {
	if group == nil {
		return true
	}

	switch group.EffectiveCombinator() {
	case program.CombinatorOr:
		for _, node := range group.Rules {
			if e.evaluateNode(node, facts) {
				return true
			}
		}
		return false
	default:
		for _, node := range group.Rules {
			if !e.evaluateNode(node, facts) {
				return false
			}
		}
		return true
	}
}

func (e *Evaluator) evaluateNode(node program.RuleNode, facts map[string]any) bool {
	if node.Group != nil {
		return e.Evaluate(node.Group, facts)
	}
	if node.Rule != nil {
		return e.evaluateRule(*node.Rule, facts)
	}
	return false
}

func (e *Evaluator) evaluateRule(rule program.Rule, facts map[string]any) bool {
	fact, ok := facts[rule.Field]
	if !ok {
		return false
	}

	switch rule.Operator {
	case program.OpEq:
		return equal(fact, rule.Value)
	case program.OpNeq:
		return !equal(fact, rule.Value)
	case program.OpLt, program.OpGt, program.OpLte, program.OpGte:
		return e.compareOrdered(rule, fact)
	case program.OpIn:
		return contains(rule.Value, fact)
	case program.OpNotIn:
		return !contains(rule.Value, fact)
	case program.OpBetween:
		return e.between(rule, fact)
	default:
		e.log.WithField("field", rule.Field).
			WithField("operator", rule.Operator).
			Warn("unsupported rule operator")
		return false
	}
}

func (e *Evaluator) compareOrdered(rule program.Rule, fact any) bool {
	left, okL := toFloat(fact)
	right, okR := toFloat(rule.Value)
	if !okL || !okR {
		return false
	}
	switch rule.Operator {
	case program.OpLt:
		return left < right
	case program.OpGt:
		return left > right
	case program.OpLte:
		return left <= right
	default:
		return left >= right
	}
}

// between is inclusive on both bounds and evaluated as written: the builder
// does not enforce min <= max, and an inverted range simply never matches.
func (e *Evaluator) between(rule program.Rule, fact any) bool {
	bounds, ok := rule.Value.([]any)
	if !ok || len(bounds) != 2 {
		e.log.WithField("field", rule.Field).Warn("between value is not a 2-element array")
		return false
	}
	value, okV := toFloat(fact)
	min, okMin := toFloat(bounds[0])
	max, okMax := toFloat(bounds[1])
	if !okV || !okMin || !okMax {
		return false
	}
	return value >= min && value <= max
}

func equal(fact, target any) bool {
	if fn, okF := toFloat(fact); okF {
		if tn, okT := toFloat(target); okT {
			return fn == tn
		}
	}
	return toString(fact) == toString(target)
}

func contains(list any, fact any) bool {
	items, ok := list.([]any)
	if !ok {
		return false
	}
	for _, item := range items {
		if equal(fact, item) {
			return true
		}
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}
