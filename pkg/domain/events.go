package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter      EventType = "node_enter"
	EventActionExecuted EventType = "action_executed"
	EventCommand        EventType = "command"
	EventTrigger        EventType = "trigger"
	EventMinigameEnd    EventType = "minigame_end"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// NodeEvent is emitted when a node passes its gate and is dispatched.
type NodeEvent struct {
	EventBase
	Chapter  int      `json:"chapter"`
	NodeID   string   `json:"node_id"`
	NodeType NodeType `json:"node_type"`
}

// ActionEvent is emitted after an action has been dispatched.
type ActionEvent struct {
	EventBase
	Action ActionDescriptor `json:"action"`
	// Ignored is set for unknown action types.
	Ignored bool `json:"ignored,omitempty"`
}

// CommandEvent is emitted for every executed terminal line.
type CommandEvent struct {
	EventBase
	Command string `json:"command"`
	Machine string `json:"machine"`
	Failed  bool   `json:"failed,omitempty"`
}

// TriggerEvent is emitted when a trigger id is handled.
type TriggerEvent struct {
	EventBase
	TriggerID string   `json:"trigger_id"`
	Resumed   []string `json:"resumed,omitempty"`
}

// MinigameEvent is emitted when a mini-game resolves.
type MinigameEvent struct {
	EventBase
	MinigameID string         `json:"minigame_id"`
	Type       MinigameType   `json:"minigame_type"`
	Result     MinigameResult `json:"result"`
}

// LifecycleHooks defines callbacks for engine observability. Nil hooks are skipped.
type LifecycleHooks struct {
	OnNodeEnter   func(context.Context, *NodeEvent)
	OnAction      func(context.Context, *ActionEvent)
	OnCommand     func(context.Context, *CommandEvent)
	OnTrigger     func(context.Context, *TriggerEvent)
	OnMinigameEnd func(context.Context, *MinigameEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnNodeEnter:   chain(h.OnNodeEnter, other.OnNodeEnter),
		OnAction:      chain(h.OnAction, other.OnAction),
		OnCommand:     chain(h.OnCommand, other.OnCommand),
		OnTrigger:     chain(h.OnTrigger, other.OnTrigger),
		OnMinigameEnd: chain(h.OnMinigameEnd, other.OnMinigameEnd),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
