// Package persistence serializes the game stores into save slots and
// restores them all-or-nothing.
package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/disconnected/pkg/domain"
	"github.com/aretw0/disconnected/pkg/state"
)

// Snapshot is the persisted form of one game. Game holds the progress
// object encoded as a JSON string.
type Snapshot struct {
	Game          string                `json:"game"`
	Terminal      TerminalSnapshot      `json:"terminal"`
	Investigation InvestigationSnapshot `json:"investigation"`
	Chat          ChatSnapshot          `json:"chat"`
}

// TerminalSnapshot is the terminal session location.
type TerminalSnapshot struct {
	CurrentMachine string   `json:"currentMachine"`
	CurrentPath    []string `json:"currentPath"`
}

// InvestigationSnapshot is the evidence board.
type InvestigationSnapshot struct {
	Clues       []domain.Clue           `json:"clues"`
	Connections []domain.ClueConnection `json:"connections"`
}

// ChatSnapshot is the contact list and transcripts.
type ChatSnapshot struct {
	Contacts      []string                        `json:"contacts"`
	Conversations map[string][]domain.ChatMessage `json:"conversations"`
}

// Capture builds a snapshot of st.
func Capture(st *state.Context) (Snapshot, error) {
	progress, err := json.Marshal(st.Game.Progress())
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to marshal progress: %w", err)
	}
	machine, path := st.Terminal.Location()
	return Snapshot{
		Game: string(progress),
		Terminal: TerminalSnapshot{
			CurrentMachine: machine,
			CurrentPath:    path,
		},
		Investigation: InvestigationSnapshot{
			Clues:       st.Investigation.Clues(),
			Connections: st.Investigation.Connections(),
		},
		Chat: ChatSnapshot{
			Contacts:      st.Chat.Contacts(),
			Conversations: st.Chat.Conversations(),
		},
	}, nil
}

// Encode captures st as snapshot JSON.
func Encode(st *state.Context) ([]byte, error) {
	snap, err := Capture(st)
	if err != nil {
		return nil, err
	}
	return json.Marshal(snap)
}

// decoded is a fully parsed and validated snapshot, ready to apply.
type decoded struct {
	snap     Snapshot
	progress state.Progress
}

// decode parses and validates snapshot JSON without touching any store.
// Every failure wraps domain.ErrCorruptSave.
func decode(data []byte) (decoded, error) {
	var d decoded
	if err := json.Unmarshal(data, &d.snap); err != nil {
		return decoded{}, fmt.Errorf("%w: %v", domain.ErrCorruptSave, err)
	}
	if d.snap.Game == "" {
		return decoded{}, fmt.Errorf("%w: missing game progress", domain.ErrCorruptSave)
	}
	if err := json.Unmarshal([]byte(d.snap.Game), &d.progress); err != nil {
		return decoded{}, fmt.Errorf("%w: game progress: %v", domain.ErrCorruptSave, err)
	}
	if d.progress.Chapter < 1 || d.progress.Chapter > domain.MaxChapter {
		return decoded{}, fmt.Errorf("%w: chapter %d out of range", domain.ErrCorruptSave, d.progress.Chapter)
	}
	if d.progress.PlayTime < 0 || d.progress.PlayTimeNanos < 0 {
		return decoded{}, fmt.Errorf("%w: negative play time", domain.ErrCorruptSave)
	}
	if d.snap.Terminal.CurrentMachine == "" {
		d.snap.Terminal.CurrentMachine = domain.LocalMachine
	}
	if len(d.snap.Terminal.CurrentPath) == 0 {
		d.snap.Terminal.CurrentPath = []string{domain.HomeRoot}
	}
	return d, nil
}

// Restore decodes data and applies it to st. Nothing is mutated unless the
// whole payload decodes and validates. The board and the chat are only
// replaced when the snapshot carries them.
func Restore(st *state.Context, data []byte) error {
	d, err := decode(data)
	if err != nil {
		return err
	}

	st.Dialogue.Clear()
	st.Game.RestoreProgress(d.progress)
	st.Terminal.SetMachine(d.snap.Terminal.CurrentMachine)
	st.Terminal.SetPath(d.snap.Terminal.CurrentPath)
	st.Terminal.ClearScrollback()
	if d.snap.Investigation.Clues != nil {
		st.Investigation.Restore(d.snap.Investigation.Clues, d.snap.Investigation.Connections)
	}
	if d.snap.Chat.Contacts != nil {
		st.Chat.Restore(d.snap.Chat.Contacts, d.snap.Chat.Conversations)
	}
	return nil
}
