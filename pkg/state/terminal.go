package state

import (
	"slices"
	"sync"

	"github.com/aretw0/disconnected/pkg/domain"
)

// TerminalStore holds the shell location, scrollback and command history.
type TerminalStore struct {
	mu sync.RWMutex

	machine    string
	path       []string
	scrollback []domain.Line
	commands   []string
	cursor     int
}

func NewTerminalStore() *TerminalStore {
	return &TerminalStore{
		machine: domain.LocalMachine,
		path:    []string{domain.HomeRoot},
		cursor:  -1,
	}
}

func (t *TerminalStore) Machine() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.machine
}

func (t *TerminalStore) Path() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.path)
}

// Location returns machine and path under one lock.
func (t *TerminalStore) Location() (string, []string) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.machine, slices.Clone(t.path)
}

func (t *TerminalStore) SetMachine(machine string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.machine = machine
}

func (t *TerminalStore) SetPath(path []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.path = slices.Clone(path)
}

func (t *TerminalStore) Append(lines ...domain.Line) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scrollback = append(t.scrollback, lines...)
}

func (t *TerminalStore) Scrollback() []domain.Line {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.scrollback)
}

func (t *TerminalStore) ClearScrollback() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scrollback = nil
}

// PushCommand records a submitted line and resets the history cursor.
func (t *TerminalStore) PushCommand(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.commands = append(t.commands, line)
	t.cursor = -1
}

func (t *TerminalStore) Commands() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return slices.Clone(t.commands)
}

// Navigate moves the history cursor and returns the recalled line. Moving
// down past the newest entry returns "" and parks the cursor.
func (t *TerminalStore) Navigate(up bool) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.commands) == 0 {
		return ""
	}
	switch {
	case up && t.cursor == -1:
		t.cursor = len(t.commands) - 1
	case up:
		t.cursor = max(0, t.cursor-1)
	case t.cursor == -1 || t.cursor >= len(t.commands)-1:
		t.cursor = -1
	default:
		t.cursor++
	}
	if t.cursor == -1 {
		return ""
	}
	return t.commands[t.cursor]
}
