package state

import (
	"slices"
	"sync"

	"github.com/aretw0/disconnected/pkg/domain"
)

// InvestigationStore is the evidence board. Clues and connections come from a
// fixed catalog and appear on the board once discovered.
type InvestigationStore struct {
	mu sync.RWMutex

	catalog     map[string]domain.Clue
	links       []domain.ClueConnection
	clues       []domain.Clue
	connections []domain.ClueConnection
}

// NewInvestigationStore builds an empty board over the given catalog.
func NewInvestigationStore(catalog []domain.Clue, links []domain.ClueConnection) *InvestigationStore {
	s := &InvestigationStore{catalog: make(map[string]domain.Clue, len(catalog))}
	for _, c := range catalog {
		c.Discovered = false
		s.catalog[c.ID] = c
	}
	for _, l := range links {
		l.Discovered = false
		s.links = append(s.links, l)
	}
	return s
}

// Known reports whether id is in the catalog.
func (s *InvestigationStore) Known(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.catalog[id]
	return ok
}

// Discover places a catalog clue on the board exactly once. It returns the
// clue and whether this call discovered it; unknown ids are ignored.
func (s *InvestigationStore) Discover(id string) (domain.Clue, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.clues[i], false
	}
	c, ok := s.catalog[id]
	if !ok {
		return domain.Clue{}, false
	}
	c.Discovered = true
	s.clues = append(s.clues, c)
	s.linkLocked()
	return c, true
}

func (s *InvestigationStore) indexOf(id string) int {
	return slices.IndexFunc(s.clues, func(c domain.Clue) bool { return c.ID == id })
}

// linkLocked reveals every catalog connection whose endpoints are both on the
// board.
func (s *InvestigationStore) linkLocked() {
	for _, l := range s.links {
		if slices.ContainsFunc(s.connections, func(c domain.ClueConnection) bool { return c.ID == l.ID }) {
			continue
		}
		if s.indexOf(l.From) >= 0 && s.indexOf(l.To) >= 0 {
			l.Discovered = true
			s.connections = append(s.connections, l)
		}
	}
}

// HasClue reports whether a clue is discovered.
func (s *InvestigationStore) HasClue(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(id) >= 0
}

// DiscoveredIDs returns the ids of discovered clues in discovery order.
func (s *InvestigationStore) DiscoveredIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.clues))
	for _, c := range s.clues {
		ids = append(ids, c.ID)
	}
	return ids
}

func (s *InvestigationStore) Clues() []domain.Clue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.clues)
}

func (s *InvestigationStore) Connections() []domain.ClueConnection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.connections)
}

// Move repositions a discovered clue on the board.
func (s *InvestigationStore) Move(id string, pos domain.Position) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.clues[i].Position = pos
	return true
}

// Restore replaces the board contents.
func (s *InvestigationStore) Restore(clues []domain.Clue, connections []domain.ClueConnection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clues = slices.Clone(clues)
	s.connections = slices.Clone(connections)
}
