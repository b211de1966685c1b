package tui_test

import (
	"bytes"
	"testing"

	"github.com/aretw0/disconnected/internal/presentation/tui"
	"github.com/aretw0/disconnected/pkg/domain"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStyles_PlainWithoutColor(t *testing.T) {
	var buf bytes.Buffer
	s := tui.NewStyles(&buf, false)

	assert.Equal(t, "Access denied.", s.Line(domain.Line{Type: domain.LineError, Content: "Access denied."}))
	assert.Equal(t, "a\nb", s.Lines([]domain.Line{
		{Type: domain.LineOutput, Content: "a"},
		{Type: "unknown", Content: "b"},
	}))
	assert.Equal(t, "[1] Trust Marcus\n[2] Walk away", s.Choices([]domain.StoryChoice{
		{ID: "a", Text: "Trust Marcus"},
		{ID: "b", Text: "Walk away"},
	}))
}

func TestStyles_Objectives(t *testing.T) {
	s := tui.NewStyles(&bytes.Buffer{}, false)

	out := s.Objectives([]domain.Objective{
		{ID: "a", Title: "Read the email", Completed: true},
		{ID: "b", Title: "Find NEXAGEN", Description: "Get past the gateway."},
		{ID: "c", Title: "Secret", Hidden: true},
	})

	assert.Contains(t, out, "[x] Read the email")
	assert.Contains(t, out, "[ ] Find NEXAGEN")
	assert.Contains(t, out, "Get past the gateway.")
	assert.NotContains(t, out, "Secret")
}

func TestStyles_Board(t *testing.T) {
	s := tui.NewStyles(&bytes.Buffer{}, false)

	assert.Contains(t, s.Board(nil, nil), "No evidence yet.")

	out := s.Board(
		[]domain.Clue{
			{ID: "a", Title: "Vasquez Email", Kind: domain.ClueEmail, Chain: "murder", Discovered: true},
			{ID: "b", Title: "Access Log", Kind: domain.ClueLog, Chain: "murder", Discovered: true},
			{ID: "c", Title: "Hidden Ledger", Chain: "coverup"},
		},
		[]domain.ClueConnection{
			{ID: "ab", From: "a", To: "b", Label: "same night", Discovered: true},
		},
	)

	assert.Contains(t, out, "MURDER")
	assert.Contains(t, out, "- Vasquez Email (email)")
	assert.NotContains(t, out, "Hidden Ledger")
	assert.Contains(t, out, "Vasquez Email <-same night-> Access Log")
}

func TestStyles_Notification(t *testing.T) {
	s := tui.NewStyles(&bytes.Buffer{}, false)
	out := s.Notification(domain.Notification{Title: "New Contact", Message: "zara added to contacts"})
	assert.Contains(t, out, "New Contact")
	assert.Contains(t, out, "zara added to contacts")
}

func TestRenderer(t *testing.T) {
	render := tui.NewRenderer(false)
	out, err := render(tui.DialogueMarkdown("prism", "They're watching."))
	require.NoError(t, err)
	assert.Contains(t, out, "PRISM")
	assert.Contains(t, out, "watching")

	assert.Equal(t, "static", tui.DialogueMarkdown("", "static"))
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf, termenv.Ascii)
	assert.Contains(t, buf.String(), "Trust no one.")
	assert.NotContains(t, buf.String(), "\x1b[", "ascii profile has no escapes")
}
