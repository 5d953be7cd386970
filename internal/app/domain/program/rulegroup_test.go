package program

import (
	"encoding/json"
	"testing"
)

const builderDocument = `{
	"id": "root",
	"combinator": "and",
	"rules": [
		{"field": "applicant_type", "operator": "=", "value": "morale"},
		{
			"combinator": "or",
			"rules": [
				{"field": "region", "operator": "in", "value": ["Casablanca-Settat", "Souss-Massa"]},
				{"field": "chiffre_affaire", "operator": "between", "value": [100000, 5000000]}
			]
		},
		{"field": "annee_creation", "operator": "<", "value": 2024}
	]
}`

func TestRuleGroupRoundTripPreservesShapeAndOrder(t *testing.T) {
	var group RuleGroup
	if err := json.Unmarshal([]byte(builderDocument), &group); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if group.EffectiveCombinator() != CombinatorAnd {
		t.Errorf("combinator = %q", group.Combinator)
	}
	if len(group.Rules) != 3 {
		t.Fatalf("child count = %d", len(group.Rules))
	}
	if group.Rules[0].Rule == nil || group.Rules[0].Rule.Field != FieldApplicantType {
		t.Errorf("first child should be the applicant-type rule: %+v", group.Rules[0])
	}
	nested := group.Rules[1].Group
	if nested == nil {
		t.Fatalf("second child should be a nested group: %+v", group.Rules[1])
	}
	if nested.EffectiveCombinator() != CombinatorOr {
		t.Errorf("nested combinator = %q", nested.Combinator)
	}
	if len(nested.Rules) != 2 || nested.Rules[1].Rule == nil || nested.Rules[1].Rule.Operator != OpBetween {
		t.Errorf("nested children: %+v", nested.Rules)
	}
	if group.Rules[2].Rule == nil || group.Rules[2].Rule.Field != FieldAnneeCreation {
		t.Errorf("third child should be the creation-year rule: %+v", group.Rules[2])
	}

	// A second round trip through JSON must not change the document.
	first, err := json.Marshal(group)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var again RuleGroup
	if err := json.Unmarshal(first, &again); err != nil {
		t.Fatalf("re-unmarshal: %v", err)
	}
	second, err := json.Marshal(again)
	if err != nil {
		t.Fatalf("re-marshal: %v", err)
	}
	if string(first) != string(second) {
		t.Fatalf("round trip drifted:\n%s\n%s", first, second)
	}
}

func TestRuleGroupBetweenValueShape(t *testing.T) {
	var group RuleGroup
	if err := json.Unmarshal([]byte(builderDocument), &group); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	var between *Rule
	for _, rule := range group.FlatRules() {
		if rule.Operator == OpBetween {
			r := rule
			between = &r
		}
	}
	if between == nil {
		t.Fatal("between rule not found")
	}
	bounds, ok := between.Value.([]any)
	if !ok || len(bounds) != 2 {
		t.Fatalf("between value should be a 2-element array, got %T %v", between.Value, between.Value)
	}
}

func TestRuleGroupEmptyAndDefaults(t *testing.T) {
	var group RuleGroup
	if err := json.Unmarshal([]byte(`{"rules": []}`), &group); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if group.EffectiveCombinator() != CombinatorAnd {
		t.Errorf("missing combinator should default to and")
	}
	if len(group.Rules) != 0 {
		t.Errorf("rules = %v", group.Rules)
	}

	out, err := json.Marshal(group)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"rules":[]}` {
		t.Errorf("marshal = %s", out)
	}
}

func TestFlatRulesDocumentOrder(t *testing.T) {
	var group RuleGroup
	if err := json.Unmarshal([]byte(builderDocument), &group); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	fields := make([]string, 0, 4)
	for _, rule := range group.FlatRules() {
		fields = append(fields, rule.Field)
	}
	want := []string{FieldApplicantType, FieldRegion, FieldChiffreAffaire, FieldAnneeCreation}
	if len(fields) != len(want) {
		t.Fatalf("flat rules = %v", fields)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Fatalf("flat rules order = %v, want %v", fields, want)
		}
	}
}

func TestRuleNodeRejectsMalformedNode(t *testing.T) {
	var node RuleNode
	if err := json.Unmarshal([]byte(`42`), &node); err == nil {
		t.Fatal("expected error for non-object node")
	}
}
