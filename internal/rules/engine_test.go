package rules

import (
	"encoding/json"
	"testing"

	"github.com/yassinekamouss/tamkeen-sub000/internal/app/domain/program"
	"github.com/yassinekamouss/tamkeen-sub000/pkg/logger"
)

func leaf(field, op string, value any) program.RuleNode {
	return program.RuleNode{Rule: &program.Rule{Field: field, Operator: op, Value: value}}
}

func group(comb program.Combinator, nodes ...program.RuleNode) *program.RuleGroup {
	return &program.RuleGroup{Combinator: comb, Rules: nodes}
}

func moraleFacts() map[string]any {
	return map[string]any{
		program.FieldApplicantType:         "morale",
		program.FieldRegion:                "Casablanca-Settat",
		program.FieldSecteurActivite:       "industrie",
		program.FieldStatutJuridique:       "sarl",
		program.FieldAnneeCreation:         float64(2023),
		program.FieldChiffreAffaire:        float64(750000),
		program.FieldMontantInvestissement: float64(200000),
	}
}

func TestEvaluateOperators(t *testing.T) {
	e := NewEvaluator(logger.Nop())
	facts := moraleFacts()

	cases := []struct {
		name string
		node program.RuleNode
		want bool
	}{
		{"eq string match", leaf(program.FieldApplicantType, program.OpEq, "morale"), true},
		{"eq string miss", leaf(program.FieldApplicantType, program.OpEq, "physique"), false},
		{"neq", leaf(program.FieldRegion, program.OpNeq, "Oriental"), true},
		{"lt", leaf(program.FieldAnneeCreation, program.OpLt, 2024), true},
		{"lt boundary", leaf(program.FieldAnneeCreation, program.OpLt, 2023), false},
		{"lte boundary", leaf(program.FieldAnneeCreation, program.OpLte, 2023), true},
		{"gt", leaf(program.FieldChiffreAffaire, program.OpGt, 500000), true},
		{"gte boundary", leaf(program.FieldChiffreAffaire, program.OpGte, 750000), true},
		{"numeric eq across types", leaf(program.FieldAnneeCreation, program.OpEq, "2023"), true},
		{"in match", leaf(program.FieldRegion, program.OpIn, []any{"Oriental", "Casablanca-Settat"}), true},
		{"in miss", leaf(program.FieldRegion, program.OpIn, []any{"Oriental"}), false},
		{"notIn", leaf(program.FieldRegion, program.OpNotIn, []any{"Oriental"}), true},
		{"between inclusive low", leaf(program.FieldChiffreAffaire, program.OpBetween, []any{750000, 1000000}), true},
		{"between inclusive high", leaf(program.FieldChiffreAffaire, program.OpBetween, []any{100000, 750000}), true},
		{"between outside", leaf(program.FieldChiffreAffaire, program.OpBetween, []any{800000, 900000}), false},
		{"between inverted bounds never match", leaf(program.FieldChiffreAffaire, program.OpBetween, []any{1000000, 100000}), false},
		{"missing fact is false", leaf(program.FieldAge, program.OpGte, 18), false},
		{"unknown operator is false", leaf(program.FieldRegion, "~", "Casablanca-Settat"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := e.Evaluate(group(program.CombinatorAnd, tc.node), facts)
			if got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEvaluateCombinators(t *testing.T) {
	e := NewEvaluator(logger.Nop())
	facts := moraleFacts()

	pass := leaf(program.FieldApplicantType, program.OpEq, "morale")
	fail := leaf(program.FieldApplicantType, program.OpEq, "physique")

	cases := []struct {
		name  string
		group *program.RuleGroup
		want  bool
	}{
		{"nil group matches everything", nil, true},
		{"empty and is true", group(program.CombinatorAnd), true},
		{"empty or is false", group(program.CombinatorOr), false},
		{"and all pass", group(program.CombinatorAnd, pass, pass), true},
		{"and one fails", group(program.CombinatorAnd, pass, fail), false},
		{"or one passes", group(program.CombinatorOr, fail, pass), true},
		{"or all fail", group(program.CombinatorOr, fail, fail), false},
		{"missing combinator defaults to and", &program.RuleGroup{Rules: []program.RuleNode{pass, fail}}, false},
		{"nested group", group(program.CombinatorAnd, pass, program.RuleNode{Group: group(program.CombinatorOr, fail, pass)}), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := e.Evaluate(tc.group, facts); got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEvaluateBuilderDocument(t *testing.T) {
	// Criteria arrive as JSON from the admin rule builder, so values carry
	// whatever types encoding/json decodes to.
	doc := `{
		"combinator": "and",
		"rules": [
			{"field": "applicant_type", "operator": "=", "value": "morale"},
			{"combinator": "or", "rules": [
				{"field": "region", "operator": "in", "value": ["Casablanca-Settat", "Souss-Massa"]},
				{"field": "chiffre_affaire", "operator": "between", "value": [1000000, 5000000]}
			]},
			{"field": "annee_creation", "operator": "<", "value": 2024}
		]
	}`

	var criteria program.RuleGroup
	if err := json.Unmarshal([]byte(doc), &criteria); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	e := NewEvaluator(logger.Nop())
	if !e.Evaluate(&criteria, moraleFacts()) {
		t.Fatal("facts should satisfy the document")
	}

	facts := moraleFacts()
	facts[program.FieldRegion] = "Oriental"
	facts[program.FieldChiffreAffaire] = float64(750000)
	if e.Evaluate(&criteria, facts) {
		t.Fatal("neither or-branch holds, document should not match")
	}
}

func TestEvaluateMalformedBetweenBounds(t *testing.T) {
	e := NewEvaluator(logger.Nop())
	facts := moraleFacts()

	for _, value := range []any{[]any{100000}, []any{}, "100000", []any{"a", "b"}} {
		node := leaf(program.FieldChiffreAffaire, program.OpBetween, value)
		if e.Evaluate(group(program.CombinatorAnd, node), facts) {
			t.Errorf("malformed bounds %v should not match", value)
		}
	}
}
