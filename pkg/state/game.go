package state

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/disconnected/pkg/domain"
	"github.com/google/uuid"
)

// Progress is the serializable part of GameStore. PlayTime is whole seconds;
// PlayTimeNanos carries the exact duration and wins when set.
type Progress struct {
	Chapter       int                `json:"chapter"`
	Flags         map[string]bool    `json:"flags"`
	Choices       map[string]string  `json:"choices"`
	PlayTime      int64              `json:"playTime"`
	PlayTimeNanos int64              `json:"playTimeNanos,omitempty"`
	Objectives    []domain.Objective `json:"objectives"`
	Relationships map[string]int     `json:"relationships,omitempty"`
}

// GameStore holds screen, progress and preferences.
type GameStore struct {
	mu sync.RWMutex

	screen        domain.Screen
	view          domain.View
	chapter       int
	flags         map[string]bool
	choices       map[string]string
	relationships map[string]int
	objectives    []domain.Objective
	settings      domain.Settings
	notifications []domain.Notification
	ending        domain.Ending
	playTime      time.Duration
}

// NewGameStore returns a store at the main menu with default settings.
func NewGameStore() *GameStore {
	return &GameStore{
		screen:        domain.ScreenMainMenu,
		view:          domain.ViewTerminal,
		chapter:       1,
		flags:         make(map[string]bool),
		choices:       make(map[string]string),
		relationships: make(map[string]int),
		settings:      domain.DefaultSettings(),
	}
}

// StartNewGame resets progress. Settings survive.
func (g *GameStore) StartNewGame() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.screen = domain.ScreenGame
	g.view = domain.ViewCutscene
	g.chapter = 1
	g.flags = make(map[string]bool)
	g.choices = make(map[string]string)
	g.relationships = make(map[string]int)
	g.objectives = nil
	g.notifications = nil
	g.ending = ""
	g.playTime = 0
}

func (g *GameStore) Screen() domain.Screen {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.screen
}

func (g *GameStore) SetScreen(s domain.Screen) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.screen = s
}

func (g *GameStore) View() domain.View {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.view
}

func (g *GameStore) SetView(v domain.View) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.view = v
}

func (g *GameStore) Chapter() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.chapter
}

// SetChapter moves to chapter n. Chapters never go backwards outside of a
// restore; it reports whether the chapter changed.
func (g *GameStore) SetChapter(n int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n <= g.chapter || n > domain.MaxChapter {
		return false
	}
	g.chapter = n
	return true
}

func (g *GameStore) SetFlag(flag string, value bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.flags[flag] = value
}

func (g *GameStore) RemoveFlag(flag string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.flags, flag)
}

// HasFlag reports whether flag is present and true.
func (g *GameStore) HasFlag(flag string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.flags[flag]
}

// Flags returns a copy of every flag.
func (g *GameStore) Flags() map[string]bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return maps.Clone(g.flags)
}

// SetChoice records the choice taken at a node.
func (g *GameStore) SetChoice(nodeID, choiceID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.choices[nodeID] = choiceID
}

func (g *GameStore) Choices() map[string]string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return maps.Clone(g.choices)
}

// ChangeRelationship adds delta to a character's score and returns the result.
func (g *GameStore) ChangeRelationship(character string, delta int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.relationships[character] += delta
	return g.relationships[character]
}

func (g *GameStore) Relationship(character string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.relationships[character]
}

func (g *GameStore) Relationships() map[string]int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return maps.Clone(g.relationships)
}

// AddObjective appends o unless an objective with the same id exists.
func (g *GameStore) AddObjective(o domain.Objective) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if slices.ContainsFunc(g.objectives, func(e domain.Objective) bool { return e.ID == o.ID }) {
		return false
	}
	g.objectives = append(g.objectives, o)
	return true
}

// CompleteObjective marks an objective done and reports whether it changed.
func (g *GameStore) CompleteObjective(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.objectives {
		if g.objectives[i].ID == id && !g.objectives[i].Completed {
			g.objectives[i].Completed = true
			return true
		}
	}
	return false
}

func (g *GameStore) Objectives() []domain.Objective {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.objectives)
}

func (g *GameStore) Settings() domain.Settings {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.settings
}

// UpdateSettings applies fn to the current settings.
func (g *GameStore) UpdateSettings(fn func(*domain.Settings)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(&g.settings)
}

// Notify queues a notification and returns it.
func (g *GameStore) Notify(kind domain.NotificationKind, title, message string) domain.Notification {
	n := domain.Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Title:     title,
		Message:   message,
		Timestamp: time.Now(),
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.notifications = append(g.notifications, n)
	return n
}

func (g *GameStore) Notifications() []domain.Notification {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.notifications)
}

func (g *GameStore) Dismiss(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.notifications = slices.DeleteFunc(g.notifications, func(n domain.Notification) bool { return n.ID == id })
}

func (g *GameStore) SetEnding(e domain.Ending) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ending = e
}

// Ending returns the reached ending, if any.
func (g *GameStore) Ending() (domain.Ending, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.ending, g.ending != ""
}

func (g *GameStore) AddPlayTime(d time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.playTime += d
}

func (g *GameStore) PlayTime() time.Duration {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.playTime
}

// Progress captures the serializable progress.
func (g *GameStore) Progress() Progress {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return Progress{
		Chapter:       g.chapter,
		Flags:         maps.Clone(g.flags),
		Choices:       maps.Clone(g.choices),
		PlayTime:      int64(g.playTime / time.Second),
		PlayTimeNanos: int64(g.playTime),
		Objectives:    slices.Clone(g.objectives),
		Relationships: maps.Clone(g.relationships),
	}
}

// RestoreProgress replaces progress wholesale and drops the player into the
// terminal view.
func (g *GameStore) RestoreProgress(p Progress) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.chapter = p.Chapter
	g.flags = orEmpty(maps.Clone(p.Flags))
	g.choices = orEmpty(maps.Clone(p.Choices))
	g.relationships = orEmpty(maps.Clone(p.Relationships))
	g.objectives = slices.Clone(p.Objectives)
	g.playTime = p.Duration()
	g.screen = domain.ScreenGame
	g.view = domain.ViewTerminal
	g.ending = ""
}

// Duration returns the recorded play time, exact when PlayTimeNanos is set.
func (p Progress) Duration() time.Duration {
	if p.PlayTimeNanos > 0 {
		return time.Duration(p.PlayTimeNanos)
	}
	return time.Duration(p.PlayTime) * time.Second
}

func orEmpty[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return make(map[K]V)
	}
	return m
}
