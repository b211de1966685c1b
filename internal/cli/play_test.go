package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/disconnected"
	"github.com/aretw0/disconnected/pkg/adapters/memory"
	"github.com/aretw0/disconnected/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGame(t *testing.T, opts ...disconnected.Option) *disconnected.Game {
	t.Helper()
	g, err := disconnected.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	require.NoError(t, g.Start(context.Background()))
	return g
}

func script(lines ...string) *strings.Reader {
	return strings.NewReader(strings.Join(lines, "\n") + "\n")
}

func TestPlay_ChapterOneOpening(t *testing.T) {
	store := memory.NewStore()
	g := newGame(t, disconnected.WithSlotStore(store))
	var out bytes.Buffer

	err := Play(context.Background(), g, Options{
		In: script(
			":continue",
			":next",
			":choose ch1_investigate_immediately",
			":next",
			":next",
			"cd documents",
			"cat vasquez_last_email.txt",
			":board",
			":objectives",
			":save 2",
			":bogus",
			":quit",
		),
		Out: &out,
	})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Vasquez's Last Email")
	assert.Contains(t, text, "slot 2")
	assert.Contains(t, text, "Unknown command :bogus")
	assert.Contains(t, text, "Autosaved.")
	assert.Equal(t, "ch1_after_exploration", g.Status().Node)

	slots, err := g.Saves().List(context.Background())
	require.NoError(t, err)
	var ids []string
	for _, s := range slots {
		ids = append(ids, s.ID)
	}
	assert.Contains(t, ids, "2")
	assert.Contains(t, ids, "autosave")
}

func TestPlay_EndOfInput(t *testing.T) {
	g := newGame(t)
	var out bytes.Buffer

	require.NoError(t, Play(context.Background(), g, Options{In: strings.NewReader(""), Out: &out}))
	assert.NotContains(t, out.String(), "Autosaved.")
}

func TestPlay_RejectsInputOutsideTerminal(t *testing.T) {
	g := newGame(t)
	var out bytes.Buffer

	require.NoError(t, Play(context.Background(), g, Options{In: script("ls", ":load", ":load nope"), Out: &out}))
	text := out.String()
	assert.Contains(t, text, "Nothing to type into here.")
	assert.Contains(t, text, "Usage: :load <slot>")
	assert.Contains(t, text, domain.ErrSlotNotFound.Error())
}

func TestChoiceID(t *testing.T) {
	s := disconnected.Status{Dialogue: &disconnected.DialogueStatus{Choices: []disconnected.ChoiceStatus{
		{ID: "trust", Text: "Trust Marcus"},
		{ID: "leave", Text: "Walk away"},
	}}}

	tests := []struct {
		name string
		arg  string
		want string
		ok   bool
	}{
		{"Index", "2", "leave", true},
		{"ID", "trust", "trust", true},
		{"Out Of Range", "3", "", false},
		{"Zero", "0", "", false},
		{"Unknown", "stay", "", false},
		{"Empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := choiceID(s, tt.arg)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := choiceID(disconnected.Status{}, "1")
	assert.False(t, ok, "no dialogue on screen")
}

func TestTypeOut(t *testing.T) {
	g := newGame(t, disconnected.WithTextSpeed(domain.TextSlow))
	var out bytes.Buffer
	p := NewPlayer(g, Options{In: strings.NewReader(""), Out: &out, Typewriter: true})

	var waited []time.Duration
	p.sleep = func(_ context.Context, d time.Duration) bool {
		waited = append(waited, d)
		return len(waited) < 3
	}

	p.typeOut(context.Background(), "ab cdef")
	assert.Equal(t, "ab cdef", out.String(), "the rest is flushed once the reveal stops")
	assert.Equal(t, []time.Duration{60 * time.Millisecond, 60 * time.Millisecond, 60 * time.Millisecond}, waited)
}
