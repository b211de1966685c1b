// Package state holds the explicit, per-game state stores.
//
// Each store guards its own fields with a RWMutex and hands out copies, so a
// reader never observes a half-applied write. Cross-store consistency is the
// engine's job: it is the single writer during story processing.
package state

import (
	"github.com/aretw0/disconnected/internal/condition"
	"github.com/aretw0/disconnected/pkg/domain"
)

// Context bundles the stores of one game.
type Context struct {
	Game          *GameStore
	Dialogue      *DialogueStore
	Chat          *ChatStore
	Investigation *InvestigationStore
	Terminal      *TerminalStore
	Ambient       *AmbientStore
}

// Option configures a Context.
type Option func(*contextConfig)

type contextConfig struct {
	clues []domain.Clue
	links []domain.ClueConnection
}

// WithClueCatalog sets the clues and connections the board can reveal.
func WithClueCatalog(clues []domain.Clue, links []domain.ClueConnection) Option {
	return func(c *contextConfig) {
		c.clues = clues
		c.links = links
	}
}

// NewContext returns fresh stores with default values.
func NewContext(opts ...Option) *Context {
	var cfg contextConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Context{
		Game:          NewGameStore(),
		Dialogue:      NewDialogueStore(),
		Chat:          NewChatStore(),
		Investigation: NewInvestigationStore(cfg.clues, cfg.links),
		Terminal:      NewTerminalStore(),
		Ambient:       NewAmbientStore(),
	}
}

// Conditions snapshots the values conditions are evaluated against.
func (c *Context) Conditions() condition.Context {
	return condition.Context{
		Flags:           c.Game.Flags(),
		DiscoveredClues: c.Investigation.DiscoveredIDs(),
		Relationships:   c.Game.Relationships(),
		Choices:         c.Game.Choices(),
	}
}
