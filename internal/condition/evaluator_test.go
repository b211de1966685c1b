package condition_test

import (
	"testing"

	"github.com/aretw0/disconnected/internal/condition"
	"github.com/aretw0/disconnected/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func ctxWith() condition.Context {
	return condition.Context{
		Flags:           map[string]bool{"met_zara": true, "doubted": false},
		DiscoveredClues: []string{"clue_a", "clue_b"},
		Relationships:   map[string]int{"zara": 15},
		Choices:         map[string]string{"ch1_first_choice": "ch1_contact_zara", "numbered": "2"},
	}
}

func TestEvaluate(t *testing.T) {
	ctx := ctxWith()

	tests := []struct {
		name string
		cond domain.Condition
		want bool
	}{
		{"flag true", domain.FlagCondition{Flag: "met_zara"}, true},
		{"flag false value", domain.FlagCondition{Flag: "doubted"}, false},
		{"flag absent", domain.FlagCondition{Flag: "nope"}, false},
		{"not_flag absent", domain.NotFlagCondition{Flag: "nope"}, true},
		{"not_flag false value", domain.NotFlagCondition{Flag: "doubted"}, true},
		{"not_flag set", domain.NotFlagCondition{Flag: "met_zara"}, false},
		{"clue discovered", domain.ClueCondition{Clue: "clue_a"}, true},
		{"clue missing", domain.ClueCondition{Clue: "clue_z"}, false},
		{"clue_count default >=", domain.ClueCountCondition{Op: domain.OpGTE, Value: 2}, true},
		{"clue_count >", domain.ClueCountCondition{Op: domain.OpGT, Value: 2}, false},
		{"clue_count <", domain.ClueCountCondition{Op: domain.OpLT, Value: 3}, true},
		{"clue_count ==", domain.ClueCountCondition{Op: domain.OpEQ, Value: 2}, true},
		{"clue_count !=", domain.ClueCountCondition{Op: domain.OpNEQ, Value: 2}, false},
		{"relationship met", domain.RelationshipCondition{Character: "zara", Op: domain.OpGTE, Value: 10}, true},
		{"relationship unknown character defaults to 0", domain.RelationshipCondition{Character: "victor", Op: domain.OpEQ, Value: 0}, true},
		{"relationship below", domain.RelationshipCondition{Character: "zara", Op: domain.OpGT, Value: 15}, false},
		{"choice_made any", domain.ChoiceMadeCondition{Node: "ch1_first_choice"}, true},
		{"choice_made none recorded", domain.ChoiceMadeCondition{Node: "other"}, false},
		{"choice_made specific", domain.ChoiceMadeCondition{Node: "ch1_first_choice", Choice: "ch1_contact_zara", HasChoice: true}, true},
		{"choice_made different", domain.ChoiceMadeCondition{Node: "ch1_first_choice", Choice: "x", HasChoice: true}, false},
		{"unknown kind is false", domain.UnknownCondition{Raw: domain.ConditionDescriptor{Type: "weather"}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, condition.Evaluate(tt.cond, ctx))
		})
	}
}

func TestEvaluate_ChoiceMadeNumericValue(t *testing.T) {
	c := domain.ParseCondition(domain.ConditionDescriptor{Type: "choice_made", Target: "numbered", Value: float64(2)})
	assert.True(t, condition.Evaluate(c, ctxWith()))
}

func TestEvaluate_NotFlagIsNegationOfFlag(t *testing.T) {
	contexts := []condition.Context{
		{},
		ctxWith(),
		{Flags: map[string]bool{"x": true}},
		{Flags: map[string]bool{"x": false}},
	}
	for _, ctx := range contexts {
		for _, target := range []string{"x", "met_zara", "doubted", ""} {
			assert.Equal(t,
				!condition.Evaluate(domain.FlagCondition{Flag: target}, ctx),
				condition.Evaluate(domain.NotFlagCondition{Flag: target}, ctx),
				"target %q", target)
		}
	}
}

func TestEvaluateAll(t *testing.T) {
	ctx := ctxWith()

	assert.True(t, condition.EvaluateAll(nil, ctx), "nil list is vacuously true")
	assert.True(t, condition.EvaluateAll([]domain.Condition{}, ctx), "empty list is vacuously true")
	assert.True(t, condition.EvaluateAll(nil, condition.Context{}))

	assert.True(t, condition.EvaluateAll([]domain.Condition{
		domain.FlagCondition{Flag: "met_zara"},
		domain.ClueCondition{Clue: "clue_b"},
	}, ctx))
	assert.False(t, condition.EvaluateAll([]domain.Condition{
		domain.FlagCondition{Flag: "met_zara"},
		domain.FlagCondition{Flag: "nope"},
	}, ctx))
}

func TestFilter(t *testing.T) {
	choices := []domain.StoryChoice{
		{ID: "open"},
		{ID: "gated", Conditions: []domain.Condition{domain.FlagCondition{Flag: "nope"}}},
		{ID: "passes", Conditions: []domain.Condition{domain.FlagCondition{Flag: "met_zara"}}},
	}

	got := condition.Filter(choices, ctxWith())

	ids := make([]string, 0, len(got))
	for _, c := range got {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"open", "passes"}, ids)
}
