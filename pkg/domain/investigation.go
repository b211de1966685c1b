package domain

import "time"

// ClueChain is the narrative thread a clue belongs to.
type ClueChain string

const (
	ChainMurder  ClueChain = "murder"
	ChainLethe   ClueChain = "lethe"
	ChainCoverup ClueChain = "coverup"
)

// ClueKind describes the artifact type of a clue.
type ClueKind string

const (
	ClueEmail     ClueKind = "email"
	ClueDocument  ClueKind = "document"
	ClueLog       ClueKind = "log"
	ClueFinancial ClueKind = "financial"
	ClueTestimony ClueKind = "testimony"
	ClueCode      ClueKind = "code"
	ClueImage     ClueKind = "image"
)

// Position is a location on the investigation board.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Clue is a discoverable investigation artifact.
type Clue struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	Kind        ClueKind  `json:"type" yaml:"type"`
	Chain       ClueChain `json:"chain" yaml:"chain"`
	Chapter     int       `json:"chapter" yaml:"chapter"`
	Discovered  bool      `json:"discovered" yaml:"discovered"`
	Content     string    `json:"content" yaml:"content"`
	Position    Position  `json:"position" yaml:"position"`
}

// ClueConnection links two clues on the board.
type ClueConnection struct {
	ID         string `json:"id" yaml:"id"`
	From       string `json:"from" yaml:"from"`
	To         string `json:"to" yaml:"to"`
	Label      string `json:"label" yaml:"label"`
	Discovered bool   `json:"discovered" yaml:"discovered"`
}

// ChatMessage is one entry of a conversation transcript.
type ChatMessage struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	IsPlayer  bool      `json:"isPlayer,omitempty"`
}

// PlayerID is the sender id used for messages typed by the player.
const PlayerID = "maya"

// Characters lists the known cast ids.
var Characters = []string{"maya", "vasquez", "prism", "zara", "marcus", "victor", "marsh", "ghost"}
