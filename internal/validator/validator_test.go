package validator_test

import (
	"strings"
	"testing"

	"github.com/aretw0/disconnected/internal/content"
	"github.com/aretw0/disconnected/internal/validator"
	"github.com/aretw0/disconnected/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bundle(nodes ...domain.StoryNode) *content.Bundle {
	ch := domain.Chapter{Number: 1, StartNode: "start", Nodes: make(map[string]domain.StoryNode)}
	for _, n := range nodes {
		n.Chapter = 1
		ch.Nodes[n.ID] = n
	}
	return &content.Bundle{
		Chapters:  []domain.Chapter{ch},
		Minigames: make(map[string]domain.MinigameConfig),
	}
}

func messages(issues []validator.Issue) string {
	var sb strings.Builder
	for _, i := range issues {
		sb.WriteString(i.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

func TestValidate_EmbeddedStory(t *testing.T) {
	b := content.MustDefault()

	report := validator.Check(b)

	assert.Empty(t, report.Errors(), messages(report.Errors()))
	assert.NoError(t, validator.Validate(b))
}

func TestValidate_Graph(t *testing.T) {
	ending := domain.StoryNode{
		ID:      "end",
		Type:    domain.NodeDialogue,
		Actions: []domain.Action{domain.TriggerEnding{Ending: domain.EndingHero}},
	}

	tests := []struct {
		name     string
		bundle   *content.Bundle
		errors   []string
		warnings []string
	}{
		{
			name: "valid",
			bundle: bundle(
				domain.StoryNode{ID: "start", Type: domain.NodeDialogue, NextNode: "end"},
				ending,
			),
		},
		{
			name: "dangling next node",
			bundle: bundle(
				domain.StoryNode{ID: "start", Type: domain.NodeDialogue, NextNode: "nowhere"},
			),
			errors: []string{`references missing node "nowhere"`},
		},
		{
			name: "dangling choice",
			bundle: bundle(
				domain.StoryNode{ID: "start", Type: domain.NodeChoice, Choices: []domain.StoryChoice{
					{ID: "a", NextNode: "end"},
					{ID: "b", NextNode: "ghost"},
				}},
				ending,
			),
			errors: []string{`references missing node "ghost"`},
		},
		{
			name:   "missing start node",
			bundle: bundle(ending),
			errors: []string{`start node "start" not found`},
			warnings: []string{
				"orphaned node",
			},
		},
		{
			name: "dead end",
			bundle: bundle(
				domain.StoryNode{ID: "start", Type: domain.NodeDialogue},
			),
			errors: []string{"dead end"},
		},
		{
			name: "terminal nodes wait on triggers",
			bundle: bundle(
				domain.StoryNode{ID: "start", Type: domain.NodeTerminal},
			),
		},
		{
			name: "orphan",
			bundle: bundle(
				domain.StoryNode{ID: "start", Type: domain.NodeDialogue, NextNode: "end"},
				ending,
				domain.StoryNode{ID: "lost", Type: domain.NodeDialogue, NextNode: "end"},
			),
			warnings: []string{"ch1/lost: orphaned node"},
		},
		{
			name: "trigger handlers are entry points",
			bundle: bundle(
				domain.StoryNode{ID: "start", Type: domain.NodeTerminal},
				domain.StoryNode{
					ID:       "on_login",
					Type:     domain.NodeDialogue,
					NextNode: "end",
					Metadata: map[string]string{domain.MetaTrigger: "login"},
				},
				ending,
			),
		},
		{
			name: "unknown tags",
			bundle: bundle(
				domain.StoryNode{
					ID:         "start",
					Type:       "hologram",
					NextNode:   "end",
					Actions:    []domain.Action{domain.UnknownAction{Raw: domain.ActionDescriptor{Type: "summon"}}},
					Conditions: []domain.Condition{domain.UnknownCondition{Raw: domain.ConditionDescriptor{Type: "moon_phase"}}},
				},
				ending,
			),
			errors: []string{
				`unknown node type "hologram"`,
				`unknown condition type "moon_phase"`,
				`unknown action type "summon"`,
			},
		},
		{
			name: "mini-game without config",
			bundle: bundle(
				domain.StoryNode{
					ID:       "start",
					Type:     domain.NodeTerminal,
					Actions:  []domain.Action{domain.TriggerMinigame{Minigame: "crack_mainframe"}},
					NextNode: "end",
				},
				ending,
			),
			errors: []string{`mini-game "crack_mainframe" has no config`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := validator.Check(tt.bundle)

			errs := messages(report.Errors())
			require.Len(t, report.Errors(), len(tt.errors), errs)
			for _, want := range tt.errors {
				assert.Contains(t, errs, want)
			}
			warns := messages(report.Warnings())
			for _, want := range tt.warnings {
				assert.Contains(t, warns, want)
			}
			if len(tt.errors) == 0 {
				assert.NoError(t, validator.Validate(tt.bundle))
			} else {
				assert.Error(t, validator.Validate(tt.bundle))
			}
		})
	}
}

func TestCheck_UnconsumedTriggers(t *testing.T) {
	b := bundle(
		domain.StoryNode{
			ID:         "start",
			Type:       domain.NodeDialogue,
			NextNode:   "end",
			Conditions: []domain.Condition{domain.FlagCondition{Flag: "door_open"}},
		},
		domain.StoryNode{
			ID:      "end",
			Type:    domain.NodeDialogue,
			Actions: []domain.Action{domain.TriggerEnding{Ending: domain.EndingGhost}},
		},
	)
	b.Machines = []domain.Machine{{
		ID: domain.LocalMachine,
		Root: &domain.Directory{Name: "~", Children: map[string]domain.Entry{
			"door.txt":    &domain.File{Name: "door.txt", OnRead: "door_open"},
			"note.txt":    &domain.File{Name: "note.txt", OnRead: "note_read"},
			"zara.txt":    &domain.File{Name: "zara.txt", OnRead: "contact_unlock_zara"},
			"secrets.enc": &domain.File{Name: "secrets.enc", Encrypted: true},
		}},
	}}
	b.Minigames["crack_x"] = domain.MinigameConfig{ID: "crack_x", OnSuccess: "start", OnFailure: "alarm"}

	report := validator.Check(b)

	assert.Empty(t, report.Errors())
	warns := messages(report.Warnings())
	assert.Contains(t, warns, `onRead trigger "note_read" has no consumer`)
	assert.Contains(t, warns, `mini-game crack_x: trigger "alarm" has no consumer`)
	assert.Contains(t, warns, "encrypted file has no decrypt_secrets.enc config")
	assert.NotContains(t, warns, "door_open")
	assert.NotContains(t, warns, "contact_unlock_zara")
	assert.Len(t, report.Warnings(), 3)
}

func TestCheck_UnknownClue(t *testing.T) {
	b := bundle(domain.StoryNode{
		ID:      "start",
		Type:    domain.NodeDialogue,
		Actions: []domain.Action{domain.AddClue{Clue: "clue_typo"}, domain.TriggerEnding{Ending: domain.EndingHero}},
	})
	b.Clues = []domain.Clue{{ID: "clue_real"}}

	report := validator.Check(b)

	require.Len(t, report.Warnings(), 1)
	assert.Contains(t, report.Warnings()[0].String(), `clue "clue_typo" is not in the catalog`)
}
