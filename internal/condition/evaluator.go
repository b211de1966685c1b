// Package condition evaluates story gating predicates against a read-only
// snapshot of game progress.
package condition

import (
	"slices"

	"github.com/aretw0/disconnected/pkg/domain"
)

// Context is the read-only view of progress a condition is evaluated against.
type Context struct {
	Flags           map[string]bool
	DiscoveredClues []string
	Relationships   map[string]int
	Choices         map[string]string
}

// Evaluate reports whether a single condition holds. It has no side effects
// and no error path: unknown condition kinds evaluate to false.
func Evaluate(c domain.Condition, ctx Context) bool {
	switch c := c.(type) {
	case domain.FlagCondition:
		return ctx.Flags[c.Flag]
	case domain.NotFlagCondition:
		return !ctx.Flags[c.Flag]
	case domain.ClueCondition:
		return slices.Contains(ctx.DiscoveredClues, c.Clue)
	case domain.ClueCountCondition:
		return c.Op.Compare(float64(len(ctx.DiscoveredClues)), c.Value)
	case domain.RelationshipCondition:
		return c.Op.Compare(float64(ctx.Relationships[c.Character]), c.Value)
	case domain.ChoiceMadeCondition:
		recorded, ok := ctx.Choices[c.Node]
		if c.HasChoice {
			return ok && recorded == c.Choice
		}
		return ok
	}
	return false
}

// EvaluateAll reports whether every condition holds. An empty or nil list is
// vacuously true.
func EvaluateAll(conds []domain.Condition, ctx Context) bool {
	for _, c := range conds {
		if !Evaluate(c, ctx) {
			return false
		}
	}
	return true
}

// Filter returns the choices whose own conditions hold, in authored order.
func Filter(choices []domain.StoryChoice, ctx Context) []domain.StoryChoice {
	out := make([]domain.StoryChoice, 0, len(choices))
	for _, ch := range choices {
		if EvaluateAll(ch.Conditions, ctx) {
			out = append(out, ch)
		}
	}
	return out
}
