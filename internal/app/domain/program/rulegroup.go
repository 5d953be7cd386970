package program

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Combinator joins the child rules of a group.
type Combinator string

const (
	CombinatorAnd Combinator = "and"
	CombinatorOr  Combinator = "or"
)

// RuleGroup is a boolean expression tree: a combinator over an ordered list of
// child nodes, each either a leaf Rule or a nested RuleGroup. An absent
// combinator means "and". An empty group is valid and means "no constraint".
// Order carries no evaluation semantics but is preserved for display.
type RuleGroup struct {
	ID         string     `json:"id,omitempty"`
	Combinator Combinator `json:"combinator,omitempty"`
	Rules      []RuleNode `json:"rules"`
}

// Rule is a single field/operator/value condition. Value is a scalar for
// comparison operators, a 2-element [min, max] array for between, and an array
// of scalars for in/notIn.
type Rule struct {
	ID          string `json:"id,omitempty"`
	Field       string `json:"field"`
	Operator    string `json:"operator"`
	Value       any    `json:"value"`
	ValueSource string `json:"valueSource,omitempty"`
}

// RuleNode holds exactly one of a leaf rule or a nested group.
type RuleNode struct {
	Rule  *Rule
	Group *RuleGroup
}

// EffectiveCombinator returns the combinator, defaulting to "and" when absent.
func (g *RuleGroup) EffectiveCombinator() Combinator {
	if g == nil || g.Combinator == "" {
		return CombinatorAnd
	}
	return g.Combinator
}

func (n RuleNode) MarshalJSON() ([]byte, error) {
	switch {
	case n.Group != nil:
		return json.Marshal(n.Group)
	case n.Rule != nil:
		return json.Marshal(n.Rule)
	default:
		return nil, fmt.Errorf("rule node holds neither rule nor group")
	}
}

// UnmarshalJSON distinguishes nested groups from leaf rules by shape: anything
// carrying a "rules" key is a group, everything else a rule. This matches the
// document format the admin rule builder produces.
func (n *RuleNode) UnmarshalJSON(data []byte) error {
	var probe map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&probe); err != nil {
		return fmt.Errorf("rule node: %w", err)
	}

	if _, ok := probe["rules"]; ok {
		var grp RuleGroup
		if err := json.Unmarshal(data, &grp); err != nil {
			return err
		}
		n.Group = &grp
		n.Rule = nil
		return nil
	}

	var rule Rule
	if err := json.Unmarshal(data, &rule); err != nil {
		return err
	}
	n.Rule = &rule
	n.Group = nil
	return nil
}

// FlatRules returns the leaf rules of the tree in document order. The details
// view lists criteria as a flat sequence regardless of nesting.
func (g *RuleGroup) FlatRules() []Rule {
	if g == nil {
		return nil
	}
	var out []Rule
	for _, node := range g.Rules {
		switch {
		case node.Rule != nil:
			out = append(out, *node.Rule)
		case node.Group != nil:
			out = append(out, node.Group.FlatRules()...)
		}
	}
	return out
}
