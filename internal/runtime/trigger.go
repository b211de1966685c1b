package runtime

import (
	"context"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/disconnected/internal/condition"
	"github.com/aretw0/disconnected/pkg/domain"
)

// Trigger id prefixes with side effects of their own.
const (
	CluePrefix          = "clue_"
	ContactUnlockPrefix = "contact_unlock_"
)

// HandleTrigger fires a world-interaction id, typically a file's read hook or
// a mini-game outcome.
func (e *Engine) HandleTrigger(ctx context.Context, id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handleTrigger(ctx, id)
}

// handleTrigger applies the trigger's own effects, then resumes the graph in
// three ways: the node armed under this exact id, nodes whose metadata
// declares the trigger, and any node armed earlier whose gate now holds.
func (e *Engine) handleTrigger(ctx context.Context, id string) {
	if id == "" {
		return
	}
	g := e.st.Game
	armed := e.armedNodes()

	g.SetFlag(id, true)
	if strings.HasPrefix(id, CluePrefix) && e.st.Investigation.Known(id) {
		e.discoverClue(id)
	}
	if contact, ok := strings.CutPrefix(id, ContactUnlockPrefix); ok && contact != "" {
		e.unlockContact(contact)
	}

	var resumed []string
	chapter := g.Chapter()
	// Each node is entered at most once per trigger, whichever path reaches
	// it first, and entering it disarms it.
	resume := func(chapter int, nodeID string) {
		if slices.Contains(resumed, nodeID) {
			return
		}
		g.RemoveFlag(domain.AwaitingTriggerFlag(nodeID))
		resumed = append(resumed, nodeID)
		e.process(ctx, chapter, nodeID)
	}

	if g.HasFlag(domain.AwaitingTriggerFlag(id)) {
		resume(chapter, id)
	}

	for _, nodeID := range e.triggerHandlers(chapter, id) {
		resume(chapter, nodeID)
	}

	for _, nodeID := range armed {
		if !g.HasFlag(domain.AwaitingTriggerFlag(nodeID)) {
			continue
		}
		node, ok := e.lookup(chapter, nodeID)
		if !ok || !condition.EvaluateAll(node.Conditions, e.st.Conditions()) {
			continue
		}
		resume(node.Chapter, nodeID)
	}

	e.logger.Debug("trigger handled", "trigger", id, "resumed", resumed)
	if e.hooks.OnTrigger != nil {
		e.hooks.OnTrigger(ctx, &domain.TriggerEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventTrigger},
			TriggerID: id,
			Resumed:   resumed,
		})
	}
}

// armedNodes returns the successor ids currently waiting for a trigger,
// sorted for a stable resumption order.
func (e *Engine) armedNodes() []string {
	var out []string
	for flag, set := range e.st.Game.Flags() {
		if !set {
			continue
		}
		if id, ok := strings.CutPrefix(flag, domain.AwaitingTriggerPrefix); ok {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// triggerHandlers returns the nodes of a chapter that declare id as their
// trigger, sorted by node id.
func (e *Engine) triggerHandlers(chapter int, id string) []string {
	ch, ok := e.chapters[chapter]
	if !ok {
		return nil
	}
	var out []string
	for _, nodeID := range slices.Sorted(maps.Keys(ch.Nodes)) {
		if ch.Nodes[nodeID].Metadata[domain.MetaTrigger] == id {
			out = append(out, nodeID)
		}
	}
	return out
}
