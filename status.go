package disconnected

import (
	"github.com/aretw0/disconnected/pkg/domain"
)

// Status is a read-only view of a game for headless surfaces.
type Status struct {
	Screen        domain.Screen         `json:"screen"`
	View          domain.View           `json:"view"`
	Chapter       int                   `json:"chapter"`
	Act           string                `json:"act"`
	Node          string                `json:"node,omitempty"`
	NodeType      domain.NodeType       `json:"nodeType,omitempty"`
	Text          string                `json:"text,omitempty"`
	Hint          string                `json:"hint,omitempty"`
	Dialogue      *DialogueStatus       `json:"dialogue,omitempty"`
	Minigame      *MinigameStatus       `json:"minigame,omitempty"`
	Prompt        string                `json:"prompt"`
	Objectives    []domain.Objective    `json:"objectives"`
	Notifications []domain.Notification `json:"notifications,omitempty"`
	Ending        domain.Ending         `json:"ending,omitempty"`
	PlayTime      int64                 `json:"playTime"`
	Complete      bool                  `json:"complete"`
}

// DialogueStatus is the node on screen.
type DialogueStatus struct {
	Speaker string         `json:"speaker,omitempty"`
	Text    string         `json:"text"`
	Choices []ChoiceStatus `json:"choices,omitempty"`
}

// ChoiceStatus is one available choice.
type ChoiceStatus struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// MinigameStatus is the running mini-game.
type MinigameStatus struct {
	ID    string              `json:"id"`
	Type  domain.MinigameType `json:"type"`
	Title string              `json:"title"`
	Intro []domain.Line       `json:"intro"`
}

// GameCompleteFlag is set when the final screen is reached.
const GameCompleteFlag = "game_complete"

// Status snapshots the game.
func (g *Game) Status() Status {
	gs := g.st.Game
	s := Status{
		Screen:        gs.Screen(),
		View:          gs.View(),
		Chapter:       gs.Chapter(),
		Prompt:        g.engine.Prompt(),
		Hint:          g.engine.Hint(),
		Notifications: gs.Notifications(),
		PlayTime:      int64(gs.PlayTime().Seconds()),
		Complete:      gs.HasFlag(GameCompleteFlag),
	}
	s.Act = domain.ActNames[s.Chapter]

	for _, o := range gs.Objectives() {
		if !o.Hidden {
			s.Objectives = append(s.Objectives, o)
		}
	}
	if e, ok := gs.Ending(); ok {
		s.Ending = e
	}
	if n, ok := g.engine.Current(); ok {
		s.Node = n.ID
		s.NodeType = n.Type
		if n.Type == domain.NodeCutscene || n.Type == domain.NodeTransition {
			s.Text = n.Text
		}
	}

	if d := g.st.Dialogue.View(); d.Node != nil {
		ds := &DialogueStatus{Speaker: d.Node.Speaker, Text: d.DisplayedText}
		for _, c := range d.Choices {
			ds.Choices = append(ds.Choices, ChoiceStatus{ID: c.ID, Text: c.Text})
		}
		s.Dialogue = ds
	}

	if m, ok := g.engine.ActiveMinigame(); ok {
		cfg := m.Config()
		s.Minigame = &MinigameStatus{ID: cfg.ID, Type: cfg.Type, Title: cfg.Title, Intro: m.Intro()}
	}
	return s
}
