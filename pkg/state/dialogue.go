package state

import (
	"slices"
	"sync"
	"time"

	"github.com/aretw0/disconnected/pkg/domain"
)

// HistoryEntry is one line of past dialogue.
type HistoryEntry struct {
	Speaker   string    `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// DialogueView is a consistent copy of the dialogue state.
type DialogueView struct {
	Node          *domain.StoryNode    `json:"node,omitempty"`
	Typing        bool                 `json:"typing"`
	DisplayedText string               `json:"displayedText"`
	Choices       []domain.StoryChoice `json:"-"`
	Active        bool                 `json:"active"`
}

// DialogueStore tracks the node on screen and the typing sequence.
type DialogueStore struct {
	mu sync.RWMutex

	node      *domain.StoryNode
	typing    bool
	displayed string
	choices   []domain.StoryChoice
	history   []HistoryEntry
	active    bool
}

func NewDialogueStore() *DialogueStore {
	return &DialogueStore{}
}

// Node returns the current node, if any.
func (d *DialogueStore) Node() (domain.StoryNode, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.node == nil {
		return domain.StoryNode{}, false
	}
	return *d.node, true
}

func (d *DialogueStore) SetNode(n domain.StoryNode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.node = &n
}

func (d *DialogueStore) Typing() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.typing
}

func (d *DialogueStore) SetTyping(typing bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.typing = typing
}

func (d *DialogueStore) SetDisplayedText(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.displayed = text
}

func (d *DialogueStore) Choices() []domain.StoryChoice {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.choices)
}

func (d *DialogueStore) SetChoices(c []domain.StoryChoice) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.choices = slices.Clone(c)
}

func (d *DialogueStore) AddHistory(speaker, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.history = append(d.history, HistoryEntry{Speaker: speaker, Text: text, Timestamp: time.Now()})
}

func (d *DialogueStore) History() []HistoryEntry {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.history)
}

func (d *DialogueStore) Active() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.active
}

func (d *DialogueStore) SetActive(active bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.active = active
}

// Clear resets everything except the history.
func (d *DialogueStore) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.node = nil
	d.typing = false
	d.displayed = ""
	d.choices = nil
	d.active = false
}

// View returns a copy of the whole dialogue state under one lock.
func (d *DialogueStore) View() DialogueView {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v := DialogueView{
		Typing:        d.typing,
		DisplayedText: d.displayed,
		Choices:       slices.Clone(d.choices),
		Active:        d.active,
	}
	if d.node != nil {
		n := *d.node
		v.Node = &n
	}
	return v
}
