package domain

import "fmt"

// ConditionType is the tag of a condition descriptor.
type ConditionType string

const (
	CondFlag         ConditionType = "flag"
	CondNotFlag      ConditionType = "not_flag"
	CondClue         ConditionType = "clue"
	CondClueCount    ConditionType = "clue_count"
	CondRelationship ConditionType = "relationship"
	CondChoiceMade   ConditionType = "choice_made"
)

// Operator compares a measured quantity against a threshold.
type Operator string

const (
	OpGTE Operator = ">="
	OpGT  Operator = ">"
	OpLT  Operator = "<"
	OpEQ  Operator = "=="
	OpNEQ Operator = "!="
)

// ParseOperator maps a raw operator; missing or unrecognised operators mean >=.
func ParseOperator(s string) Operator {
	switch Operator(s) {
	case OpGT, OpLT, OpEQ, OpNEQ:
		return Operator(s)
	}
	return OpGTE
}

// Compare applies the operator to (left, right).
func (o Operator) Compare(left, right float64) bool {
	switch o {
	case OpGT:
		return left > right
	case OpLT:
		return left < right
	case OpEQ:
		return left == right
	case OpNEQ:
		return left != right
	}
	return left >= right
}

// ConditionDescriptor is the authored form of a condition.
type ConditionDescriptor struct {
	Type     string `json:"type" yaml:"type" mapstructure:"type"`
	Target   string `json:"target" yaml:"target" mapstructure:"target"`
	Operator string `json:"operator,omitempty" yaml:"operator,omitempty" mapstructure:"operator"`
	Value    any    `json:"value,omitempty" yaml:"value,omitempty" mapstructure:"value"`
}

// Condition is a closed sum of predicate kinds. Evaluation lives in
// internal/condition; the variants only carry data.
type Condition interface {
	Kind() ConditionType
	Descriptor() ConditionDescriptor
}

// FlagCondition holds iff the flag is set to true.
type FlagCondition struct{ Flag string }

// NotFlagCondition holds iff the flag is not set to true (absent counts).
type NotFlagCondition struct{ Flag string }

// ClueCondition holds iff the clue has been discovered.
type ClueCondition struct{ Clue string }

// ClueCountCondition compares the number of discovered clues.
type ClueCountCondition struct {
	Op    Operator
	Value float64
}

// RelationshipCondition compares a character's relationship score (0 if unset).
type RelationshipCondition struct {
	Character string
	Op        Operator
	Value     float64
}

// ChoiceMadeCondition holds when a choice was recorded for Node. When
// HasChoice is set the recorded choice must also equal Choice.
type ChoiceMadeCondition struct {
	Node      string
	Choice    string
	HasChoice bool
}

// UnknownCondition carries an unrecognised tag. It always evaluates false so
// newer content stays loadable by older builds.
type UnknownCondition struct{ Raw ConditionDescriptor }

func (FlagCondition) Kind() ConditionType         { return CondFlag }
func (NotFlagCondition) Kind() ConditionType      { return CondNotFlag }
func (ClueCondition) Kind() ConditionType         { return CondClue }
func (ClueCountCondition) Kind() ConditionType    { return CondClueCount }
func (RelationshipCondition) Kind() ConditionType { return CondRelationship }
func (ChoiceMadeCondition) Kind() ConditionType   { return CondChoiceMade }
func (c UnknownCondition) Kind() ConditionType    { return ConditionType(c.Raw.Type) }

func (c FlagCondition) Descriptor() ConditionDescriptor {
	return ConditionDescriptor{Type: string(CondFlag), Target: c.Flag}
}

func (c NotFlagCondition) Descriptor() ConditionDescriptor {
	return ConditionDescriptor{Type: string(CondNotFlag), Target: c.Flag}
}

func (c ClueCondition) Descriptor() ConditionDescriptor {
	return ConditionDescriptor{Type: string(CondClue), Target: c.Clue}
}

func (c ClueCountCondition) Descriptor() ConditionDescriptor {
	return ConditionDescriptor{Type: string(CondClueCount), Operator: string(c.Op), Value: c.Value}
}

func (c RelationshipCondition) Descriptor() ConditionDescriptor {
	return ConditionDescriptor{Type: string(CondRelationship), Target: c.Character, Operator: string(c.Op), Value: c.Value}
}

func (c ChoiceMadeCondition) Descriptor() ConditionDescriptor {
	d := ConditionDescriptor{Type: string(CondChoiceMade), Target: c.Node}
	if c.HasChoice {
		d.Value = c.Choice
	}
	return d
}

func (c UnknownCondition) Descriptor() ConditionDescriptor { return c.Raw }

// ParseCondition converts a descriptor into its variant. Unrecognised tags
// become UnknownCondition rather than an error.
func ParseCondition(d ConditionDescriptor) Condition {
	switch ConditionType(d.Type) {
	case CondFlag:
		return FlagCondition{Flag: d.Target}
	case CondNotFlag:
		return NotFlagCondition{Flag: d.Target}
	case CondClue:
		return ClueCondition{Clue: d.Target}
	case CondClueCount:
		v, _ := NumericValue(d.Value)
		return ClueCountCondition{Op: ParseOperator(d.Operator), Value: v}
	case CondRelationship:
		v, _ := NumericValue(d.Value)
		return RelationshipCondition{Character: d.Target, Op: ParseOperator(d.Operator), Value: v}
	case CondChoiceMade:
		if d.Value == nil {
			return ChoiceMadeCondition{Node: d.Target}
		}
		return ChoiceMadeCondition{Node: d.Target, Choice: FormatValue(d.Value), HasChoice: true}
	}
	return UnknownCondition{Raw: d}
}

// DescribeCondition renders a condition for graph labels and lint output.
func DescribeCondition(c Condition) string {
	d := c.Descriptor()
	switch c.(type) {
	case NotFlagCondition:
		return "!" + d.Target
	case FlagCondition, ClueCondition:
		return d.Target
	case ClueCountCondition, RelationshipCondition:
		subject := "clues"
		if d.Target != "" {
			subject = d.Target
		}
		return fmt.Sprintf("%s %s %s", subject, d.Operator, FormatValue(d.Value))
	case ChoiceMadeCondition:
		if d.Value != nil {
			return fmt.Sprintf("%s = %s", d.Target, FormatValue(d.Value))
		}
		return d.Target + " chosen"
	}
	return fmt.Sprintf("?%s(%s)", d.Type, d.Target)
}

// ParseConditions converts a list of descriptors.
func ParseConditions(ds []ConditionDescriptor) []Condition {
	if len(ds) == 0 {
		return nil
	}
	out := make([]Condition, 0, len(ds))
	for _, d := range ds {
		out = append(out, ParseCondition(d))
	}
	return out
}
