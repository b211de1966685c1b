package state

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/disconnected/pkg/domain"
	"github.com/google/uuid"
)

const (
	initialSuspicion = 0
	initialTrust     = 50
)

// ChatStore holds contacts and conversations.
type ChatStore struct {
	mu sync.RWMutex

	contacts      []string
	conversations map[string][]domain.ChatMessage
	unread        map[string]int
	active        string
	suspicion     int
	trust         int
}

func NewChatStore() *ChatStore {
	return &ChatStore{
		conversations: make(map[string][]domain.ChatMessage),
		unread:        make(map[string]int),
		suspicion:     initialSuspicion,
		trust:         initialTrust,
	}
}

// AddContact appends a contact unless already present.
func (c *ChatStore) AddContact(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if slices.Contains(c.contacts, id) {
		return false
	}
	c.contacts = append(c.contacts, id)
	return true
}

func (c *ChatStore) HasContact(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Contains(c.contacts, id)
}

// Contacts returns contacts in unlock order.
func (c *ChatStore) Contacts() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.contacts)
}

// AddMessage appends to a conversation. Missing ids and timestamps are filled
// in. Messages from anyone but the player count as unread.
func (c *ChatStore) AddMessage(contact string, m domain.ChatMessage) domain.ChatMessage {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conversations[contact] = append(c.conversations[contact], m)
	if !m.IsPlayer {
		c.unread[contact]++
	}
	return m
}

func (c *ChatStore) Conversation(contact string) []domain.ChatMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.conversations[contact])
}

// Conversations returns a deep copy of every transcript.
func (c *ChatStore) Conversations() map[string][]domain.ChatMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string][]domain.ChatMessage, len(c.conversations))
	for k, v := range c.conversations {
		out[k] = slices.Clone(v)
	}
	return out
}

func (c *ChatStore) Unread(contact string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.unread[contact]
}

// SetActive opens a conversation and marks it read.
func (c *ChatStore) SetActive(contact string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = contact
	if contact != "" {
		c.unread[contact] = 0
	}
}

func (c *ChatStore) Active() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

func (c *ChatStore) Suspicion() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.suspicion
}

// SetSuspicion stores level clamped to 0..100.
func (c *ChatStore) SetSuspicion(level int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.suspicion = clampPercent(level)
}

func (c *ChatStore) Trust() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.trust
}

// SetTrust stores level clamped to 0..100.
func (c *ChatStore) SetTrust(level int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trust = clampPercent(level)
}

// Restore replaces contacts and conversations. Unread counts and the active
// contact reset.
func (c *ChatStore) Restore(contacts []string, conversations map[string][]domain.ChatMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.contacts = nil
	for _, id := range contacts {
		if !slices.Contains(c.contacts, id) {
			c.contacts = append(c.contacts, id)
		}
	}
	c.conversations = orEmpty(maps.Clone(conversations))
	c.unread = make(map[string]int)
	c.active = ""
}

func clampPercent(v int) int {
	return min(max(v, 0), 100)
}
