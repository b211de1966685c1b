package domain

import (
	"strconv"
	"strings"
)

// ActionType is the tag of an action descriptor.
type ActionType string

const (
	ActSetFlag           ActionType = "set_flag"
	ActRemoveFlag        ActionType = "remove_flag"
	ActAddClue           ActionType = "add_clue"
	ActChangeRelation    ActionType = "change_relationship"
	ActTriggerMinigame   ActionType = "trigger_minigame"
	ActPlaySound         ActionType = "play_sound"
	ActSetChapter        ActionType = "set_chapter"
	ActAddObjective      ActionType = "add_objective"
	ActCompleteObjective ActionType = "complete_objective"
	ActUnlockContact     ActionType = "unlock_contact"
	ActSendMessage       ActionType = "send_message"
	ActSetView           ActionType = "set_view"
	ActSetAmbient        ActionType = "set_ambient"
	ActTriggerEnding     ActionType = "trigger_ending"

	// Requested by the terminal rather than authored in chapters.
	ActTrigger          ActionType = "trigger"
	ActAddFile          ActionType = "add_file"
	ActSetActiveContact ActionType = "set_active_contact"
)

// ActionDescriptor is the JSON-serializable boundary form of an action. It is
// the only vocabulary terminal, UI and content use to talk to the engine.
type ActionDescriptor struct {
	Type   string `json:"type" yaml:"type" mapstructure:"type"`
	Target string `json:"target" yaml:"target" mapstructure:"target"`
	Value  any    `json:"value,omitempty" yaml:"value,omitempty" mapstructure:"value"`
}

// Action is a closed sum of side effects. Dispatch lives in internal/runtime.
type Action interface {
	Kind() ActionType
	Descriptor() ActionDescriptor
}

type SetFlag struct {
	Flag  string
	Value bool
}

type RemoveFlag struct{ Flag string }

type AddClue struct{ Clue string }

type ChangeRelationship struct {
	Character string
	Delta     int
}

type TriggerMinigame struct{ Minigame string }

type PlaySound struct{ Sound string }

type SetChapter struct{ Chapter int }

type AddObjective struct {
	Objective string
	Title     string
}

type CompleteObjective struct{ Objective string }

type UnlockContact struct{ Contact string }

type SendMessage struct {
	Conversation string
	Text         string
}

type SetView struct{ View View }

type SetAmbient struct{ Mood Mood }

type TriggerEnding struct{ Ending Ending }

// Trigger fires a world-interaction id (typically a file's onRead hook).
type Trigger struct{ ID string }

// AddFile copies a downloaded file into the local downloads directory.
type AddFile struct {
	Name    string
	Content string
}

type SetActiveContact struct{ Contact string }

// UnknownAction carries an unrecognised tag. Executing it is a no-op so
// newer content stays playable by older builds.
type UnknownAction struct{ Raw ActionDescriptor }

func (SetFlag) Kind() ActionType            { return ActSetFlag }
func (RemoveFlag) Kind() ActionType         { return ActRemoveFlag }
func (AddClue) Kind() ActionType            { return ActAddClue }
func (ChangeRelationship) Kind() ActionType { return ActChangeRelation }
func (TriggerMinigame) Kind() ActionType    { return ActTriggerMinigame }
func (PlaySound) Kind() ActionType          { return ActPlaySound }
func (SetChapter) Kind() ActionType         { return ActSetChapter }
func (AddObjective) Kind() ActionType       { return ActAddObjective }
func (CompleteObjective) Kind() ActionType  { return ActCompleteObjective }
func (UnlockContact) Kind() ActionType      { return ActUnlockContact }
func (SendMessage) Kind() ActionType        { return ActSendMessage }
func (SetView) Kind() ActionType            { return ActSetView }
func (SetAmbient) Kind() ActionType         { return ActSetAmbient }
func (TriggerEnding) Kind() ActionType      { return ActTriggerEnding }
func (Trigger) Kind() ActionType            { return ActTrigger }
func (AddFile) Kind() ActionType            { return ActAddFile }
func (SetActiveContact) Kind() ActionType   { return ActSetActiveContact }
func (a UnknownAction) Kind() ActionType    { return ActionType(a.Raw.Type) }

func (a SetFlag) Descriptor() ActionDescriptor {
	d := ActionDescriptor{Type: string(ActSetFlag), Target: a.Flag}
	if !a.Value {
		d.Value = false
	}
	return d
}

func (a RemoveFlag) Descriptor() ActionDescriptor {
	return ActionDescriptor{Type: string(ActRemoveFlag), Target: a.Flag}
}

func (a AddClue) Descriptor() ActionDescriptor {
	return ActionDescriptor{Type: string(ActAddClue), Target: a.Clue}
}

func (a ChangeRelationship) Descriptor() ActionDescriptor {
	return ActionDescriptor{Type: string(ActChangeRelation), Target: a.Character, Value: a.Delta}
}

func (a TriggerMinigame) Descriptor() ActionDescriptor {
	return ActionDescriptor{Type: string(ActTriggerMinigame), Target: a.Minigame}
}

func (a PlaySound) Descriptor() ActionDescriptor {
	return ActionDescriptor{Type: string(ActPlaySound), Target: a.Sound}
}

func (a SetChapter) Descriptor() ActionDescriptor {
	return ActionDescriptor{Type: string(ActSetChapter), Target: "chapter", Value: a.Chapter}
}

func (a AddObjective) Descriptor() ActionDescriptor {
	d := ActionDescriptor{Type: string(ActAddObjective), Target: a.Objective}
	if a.Title != "" {
		d.Value = a.Title
	}
	return d
}

func (a CompleteObjective) Descriptor() ActionDescriptor {
	return ActionDescriptor{Type: string(ActCompleteObjective), Target: a.Objective}
}

func (a UnlockContact) Descriptor() ActionDescriptor {
	return ActionDescriptor{Type: string(ActUnlockContact), Target: a.Contact}
}

func (a SendMessage) Descriptor() ActionDescriptor {
	return ActionDescriptor{Type: string(ActSendMessage), Target: a.Conversation, Value: a.Text}
}

func (a SetView) Descriptor() ActionDescriptor {
	return ActionDescriptor{Type: string(ActSetView), Target: string(a.View)}
}

func (a SetAmbient) Descriptor() ActionDescriptor {
	return ActionDescriptor{Type: string(ActSetAmbient), Target: string(a.Mood)}
}

func (a TriggerEnding) Descriptor() ActionDescriptor {
	return ActionDescriptor{Type: string(ActTriggerEnding), Target: string(a.Ending)}
}

func (a Trigger) Descriptor() ActionDescriptor {
	return ActionDescriptor{Type: string(ActTrigger), Target: a.ID}
}

func (a AddFile) Descriptor() ActionDescriptor {
	return ActionDescriptor{Type: string(ActAddFile), Target: a.Name, Value: a.Content}
}

func (a SetActiveContact) Descriptor() ActionDescriptor {
	return ActionDescriptor{Type: string(ActSetActiveContact), Target: a.Contact}
}

func (a UnknownAction) Descriptor() ActionDescriptor { return a.Raw }

// ParseAction converts a descriptor into its variant. Unrecognised tags become
// UnknownAction rather than an error.
func ParseAction(d ActionDescriptor) Action {
	switch ActionType(d.Type) {
	case ActSetFlag:
		b, isBool := d.Value.(bool)
		return SetFlag{Flag: d.Target, Value: !isBool || b}
	case ActRemoveFlag:
		return RemoveFlag{Flag: d.Target}
	case ActAddClue:
		return AddClue{Clue: d.Target}
	case ActChangeRelation:
		v, _ := NumericValue(d.Value)
		return ChangeRelationship{Character: d.Target, Delta: int(v)}
	case ActTriggerMinigame:
		return TriggerMinigame{Minigame: d.Target}
	case ActPlaySound:
		return PlaySound{Sound: d.Target}
	case ActSetChapter:
		return SetChapter{Chapter: chapterNumber(d.Value)}
	case ActAddObjective:
		return AddObjective{Objective: d.Target, Title: FormatValue(d.Value)}
	case ActCompleteObjective:
		return CompleteObjective{Objective: d.Target}
	case ActUnlockContact:
		return UnlockContact{Contact: d.Target}
	case ActSendMessage:
		return SendMessage{Conversation: d.Target, Text: FormatValue(d.Value)}
	case ActSetView:
		return SetView{View: View(d.Target)}
	case ActSetAmbient:
		return SetAmbient{Mood: Mood(d.Target)}
	case ActTriggerEnding:
		return TriggerEnding{Ending: Ending(d.Target)}
	case ActTrigger:
		return Trigger{ID: d.Target}
	case ActAddFile:
		return AddFile{Name: d.Target, Content: FormatValue(d.Value)}
	case ActSetActiveContact:
		return SetActiveContact{Contact: d.Target}
	}
	return UnknownAction{Raw: d}
}

// ParseActions converts a list of descriptors.
func ParseActions(ds []ActionDescriptor) []Action {
	if len(ds) == 0 {
		return nil
	}
	out := make([]Action, 0, len(ds))
	for _, d := range ds {
		out = append(out, ParseAction(d))
	}
	return out
}

// Descriptors converts actions back to their boundary form.
func Descriptors(actions []Action) []ActionDescriptor {
	out := make([]ActionDescriptor, 0, len(actions))
	for _, a := range actions {
		out = append(out, a.Descriptor())
	}
	return out
}

func chapterNumber(v any) int {
	if f, ok := NumericValue(v); ok {
		return int(f)
	}
	if s, ok := v.(string); ok {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err == nil {
			return n
		}
	}
	return 0
}
