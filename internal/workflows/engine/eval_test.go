package engine

import "testing"

func TestEvaluateEmptyConditionsAlwaysMatch(t *testing.T) {
	if !Evaluate(nil, map[string]interface{}{"status": "new"}) {
		t.Fatal("expected empty condition list to match")
	}
}

func TestEvaluateOperators(t *testing.T) {
	data := map[string]interface{}{
		"status":              "qualified",
		"source":              "meta_ads",
		"quality_score":       float64(75),
		"message":             "Looking for a family cabin in December",
		"notes":               "",
		"hours_since_created": 2.5,
	}

	tests := []struct {
		name      string
		condition Condition
		want      bool
	}{
		{"equals match", Condition{Field: "status", Operator: OpEquals, Value: "qualified"}, true},
		{"equals mismatch", Condition{Field: "status", Operator: OpEquals, Value: "new"}, false},
		{"not_equals", Condition{Field: "source", Operator: OpNotEquals, Value: "website"}, true},
		{"contains match", Condition{Field: "message", Operator: OpContains, Value: "cabin"}, true},
		{"contains is case sensitive", Condition{Field: "message", Operator: OpContains, Value: "CABIN"}, false},
		{"contains mismatch", Condition{Field: "message", Operator: OpContains, Value: "spa"}, false},
		{"greater_than number", Condition{Field: "quality_score", Operator: OpGreaterThan, Value: float64(70)}, true},
		{"greater_than string value coerced", Condition{Field: "quality_score", Operator: OpGreaterThan, Value: "80"}, false},
		{"less_than", Condition{Field: "hours_since_created", Operator: OpLessThan, Value: float64(24)}, true},
		{"is_empty on blank string", Condition{Field: "notes", Operator: OpIsEmpty}, true},
		{"is_empty on missing field", Condition{Field: "assigned_to", Operator: OpIsEmpty}, true},
		{"is_not_empty", Condition{Field: "message", Operator: OpIsNotEmpty}, true},
		{"is_not_empty on missing field", Condition{Field: "assigned_to", Operator: OpIsNotEmpty}, false},
		{"missing field never equals", Condition{Field: "ghost", Operator: OpEquals, Value: ""}, false},
		{"greater_than non numeric", Condition{Field: "status", Operator: OpGreaterThan, Value: float64(1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate([]Condition{tt.condition}, data); got != tt.want {
				t.Fatalf("Evaluate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateAllConditionsMustHold(t *testing.T) {
	data := map[string]interface{}{"status": "new", "quality_score": float64(80)}
	conditions := []Condition{
		{Field: "status", Operator: OpEquals, Value: "new"},
		{Field: "quality_score", Operator: OpGreaterThan, Value: float64(90)},
	}
	if Evaluate(conditions, data) {
		t.Fatal("expected AND semantics across conditions")
	}
}

func TestParseActionsRejectsUnknownType(t *testing.T) {
	if _, err := ParseActions([]byte(`[{"type":"launch_missiles"}]`)); err == nil {
		t.Fatal("expected unknown action type to be rejected")
	}
	if _, err := ParseActions([]byte(`[]`)); err == nil {
		t.Fatal("expected empty action list to be rejected")
	}
	actions, err := ParseActions([]byte(`[{"type":"add_note","params":{"note":"hot lead"}}]`))
	if err != nil {
		t.Fatalf("ParseActions returned error: %v", err)
	}
	if actions[0].Type != ActionAddNote {
		t.Fatalf("unexpected action type %s", actions[0].Type)
	}
}

func TestParseConditionsRejectsUnknownOperator(t *testing.T) {
	if _, err := ParseConditions([]byte(`[{"field":"status","operator":"matches_regex","value":".*"}]`)); err == nil {
		t.Fatal("expected unknown operator to be rejected")
	}
}
