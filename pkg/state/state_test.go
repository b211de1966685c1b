package state_test

import (
	"sync"
	"testing"
	"time"

	"github.com/aretw0/disconnected/pkg/domain"
	"github.com/aretw0/disconnected/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameStore_Defaults(t *testing.T) {
	g := state.NewGameStore()
	assert.Equal(t, domain.ScreenMainMenu, g.Screen())
	assert.Equal(t, domain.ViewTerminal, g.View())
	assert.Equal(t, 1, g.Chapter())
	assert.Equal(t, domain.DefaultSettings(), g.Settings())
	assert.Empty(t, g.Flags())
	_, ended := g.Ending()
	assert.False(t, ended)
}

func TestGameStore_ChapterIsMonotonic(t *testing.T) {
	g := state.NewGameStore()

	assert.True(t, g.SetChapter(3))
	assert.False(t, g.SetChapter(2), "never backwards")
	assert.False(t, g.SetChapter(3), "same chapter is no change")
	assert.False(t, g.SetChapter(domain.MaxChapter+1))
	assert.Equal(t, 3, g.Chapter())

	g.RestoreProgress(state.Progress{Chapter: 1})
	assert.Equal(t, 1, g.Chapter(), "restore may rewind")
}

func TestGameStore_Flags(t *testing.T) {
	g := state.NewGameStore()
	g.SetFlag("a", true)
	g.SetFlag("b", false)

	assert.True(t, g.HasFlag("a"))
	assert.False(t, g.HasFlag("b"), "false-valued flags are not set")

	flags := g.Flags()
	flags["a"] = false
	assert.True(t, g.HasFlag("a"), "getter returns a copy")

	g.RemoveFlag("a")
	assert.NotContains(t, g.Flags(), "a")
}

func TestGameStore_Objectives(t *testing.T) {
	g := state.NewGameStore()
	assert.True(t, g.AddObjective(domain.Objective{ID: "obj", Title: "Find it"}))
	assert.False(t, g.AddObjective(domain.Objective{ID: "obj", Title: "dup"}))

	assert.True(t, g.CompleteObjective("obj"))
	assert.False(t, g.CompleteObjective("obj"), "already complete")
	assert.False(t, g.CompleteObjective("missing"))

	objs := g.Objectives()
	require.Len(t, objs, 1)
	assert.True(t, objs[0].Completed)
}

func TestGameStore_Relationships(t *testing.T) {
	g := state.NewGameStore()
	assert.Equal(t, 10, g.ChangeRelationship("zara", 10))
	assert.Equal(t, 5, g.ChangeRelationship("zara", -5))
	assert.Equal(t, 0, g.Relationship("victor"))
}

func TestGameStore_StartNewGameKeepsSettings(t *testing.T) {
	g := state.NewGameStore()
	g.UpdateSettings(func(s *domain.Settings) { s.TextSpeed = domain.TextFast })
	g.SetFlag("x", true)
	g.SetChapter(4)
	g.Notify(domain.NoticeInfo, "t", "m")

	g.StartNewGame()

	assert.Equal(t, domain.ScreenGame, g.Screen())
	assert.Equal(t, domain.ViewCutscene, g.View())
	assert.Equal(t, 1, g.Chapter())
	assert.Empty(t, g.Flags())
	assert.Empty(t, g.Notifications())
	assert.Equal(t, domain.TextFast, g.Settings().TextSpeed)
}

func TestGameStore_ProgressRoundTrip(t *testing.T) {
	g := state.NewGameStore()
	g.SetChapter(2)
	g.SetFlag("f", true)
	g.SetChoice("n", "c")
	g.ChangeRelationship("zara", 15)
	g.AddObjective(domain.Objective{ID: "o"})
	g.AddPlayTime(90*time.Second + 250*time.Millisecond)

	p := g.Progress()
	assert.Equal(t, int64(90), p.PlayTime)

	other := state.NewGameStore()
	other.RestoreProgress(p)
	assert.Equal(t, p, other.Progress())
	assert.Equal(t, g.PlayTime(), other.PlayTime())
	assert.Equal(t, domain.ViewTerminal, other.View())

	other.RestoreProgress(state.Progress{Chapter: 1, PlayTime: 42})
	assert.Equal(t, 42*time.Second, other.PlayTime(), "whole seconds when the exact value is absent")
}

func TestGameStore_Notifications(t *testing.T) {
	g := state.NewGameStore()
	n := g.Notify(domain.NoticeClue, "Clue", "found")
	assert.NotEmpty(t, n.ID)
	require.Len(t, g.Notifications(), 1)

	g.Dismiss(n.ID)
	assert.Empty(t, g.Notifications())
}

func TestChatStore(t *testing.T) {
	c := state.NewChatStore()
	assert.Equal(t, 0, c.Suspicion())
	assert.Equal(t, 50, c.Trust())

	assert.True(t, c.AddContact("zara"))
	assert.False(t, c.AddContact("zara"))
	c.AddContact("prism")
	assert.Equal(t, []string{"zara", "prism"}, c.Contacts())

	m := c.AddMessage("zara", domain.ChatMessage{Sender: "zara", Text: "hi"})
	assert.NotEmpty(t, m.ID)
	assert.False(t, m.Timestamp.IsZero())
	c.AddMessage("zara", domain.ChatMessage{Sender: domain.PlayerID, Text: "hey", IsPlayer: true})
	assert.Equal(t, 1, c.Unread("zara"), "player messages are never unread")
	assert.Len(t, c.Conversation("zara"), 2)

	c.SetActive("zara")
	assert.Equal(t, 0, c.Unread("zara"))

	c.SetSuspicion(140)
	c.SetTrust(-3)
	assert.Equal(t, 100, c.Suspicion())
	assert.Equal(t, 0, c.Trust())
}

func TestChatStore_RestoreDeduplicates(t *testing.T) {
	c := state.NewChatStore()
	c.Restore([]string{"zara", "prism", "zara"}, nil)
	assert.Equal(t, []string{"zara", "prism"}, c.Contacts())
	assert.Empty(t, c.Conversations())
}

func catalog() *state.InvestigationStore {
	return state.NewInvestigationStore(
		[]domain.Clue{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}, {ID: "c", Title: "C"}},
		[]domain.ClueConnection{{ID: "ab", From: "a", To: "b"}, {ID: "bc", From: "b", To: "c"}},
	)
}

func TestInvestigationStore_DiscoverOnce(t *testing.T) {
	s := catalog()

	c, changed := s.Discover("a")
	assert.True(t, changed)
	assert.True(t, c.Discovered)

	_, changed = s.Discover("a")
	assert.False(t, changed, "second discovery is a no-op")

	_, changed = s.Discover("zzz")
	assert.False(t, changed, "unknown clues are ignored")

	assert.Equal(t, []string{"a"}, s.DiscoveredIDs())
	assert.True(t, s.HasClue("a"))
	assert.False(t, s.HasClue("b"))
	assert.True(t, s.Known("b"))
}

func TestInvestigationStore_ConnectionsFollowEndpoints(t *testing.T) {
	s := catalog()
	s.Discover("a")
	assert.Empty(t, s.Connections())

	s.Discover("b")
	conns := s.Connections()
	require.Len(t, conns, 1)
	assert.Equal(t, "ab", conns[0].ID)
	assert.True(t, conns[0].Discovered)

	s.Discover("c")
	assert.Len(t, s.Connections(), 2)
}

func TestInvestigationStore_Move(t *testing.T) {
	s := catalog()
	assert.False(t, s.Move("a", domain.Position{X: 1}), "undiscovered clues are not on the board")
	s.Discover("a")
	assert.True(t, s.Move("a", domain.Position{X: 10, Y: 20}))
	assert.Equal(t, domain.Position{X: 10, Y: 20}, s.Clues()[0].Position)
}

func TestTerminalStore_Navigate(t *testing.T) {
	ts := state.NewTerminalStore()
	assert.Equal(t, "", ts.Navigate(true), "empty history")

	ts.PushCommand("ls")
	ts.PushCommand("cd docs")
	ts.PushCommand("cat a")

	assert.Equal(t, "cat a", ts.Navigate(true))
	assert.Equal(t, "cd docs", ts.Navigate(true))
	assert.Equal(t, "ls", ts.Navigate(true))
	assert.Equal(t, "ls", ts.Navigate(true), "clamped at oldest")
	assert.Equal(t, "cd docs", ts.Navigate(false))
	assert.Equal(t, "cat a", ts.Navigate(false))
	assert.Equal(t, "", ts.Navigate(false), "past newest clears the input")
}

func TestTerminalStore_Location(t *testing.T) {
	ts := state.NewTerminalStore()
	m, p := ts.Location()
	assert.Equal(t, domain.LocalMachine, m)
	assert.Equal(t, []string{"~"}, p)

	ts.SetPath([]string{"~", "docs"})
	p = ts.Path()
	p[1] = "mutated"
	assert.Equal(t, []string{"~", "docs"}, ts.Path())
}

func TestContext_Conditions(t *testing.T) {
	ctx := state.NewContext(state.WithClueCatalog([]domain.Clue{{ID: "clue_x"}}, nil))
	ctx.Game.SetFlag("f", true)
	ctx.Game.ChangeRelationship("zara", 5)
	ctx.Game.SetChoice("n", "c")
	ctx.Investigation.Discover("clue_x")

	cc := ctx.Conditions()
	assert.True(t, cc.Flags["f"])
	assert.Equal(t, []string{"clue_x"}, cc.DiscoveredClues)
	assert.Equal(t, 5, cc.Relationships["zara"])
	assert.Equal(t, "c", cc.Choices["n"])
}

func TestStores_ConcurrentAccess(t *testing.T) {
	ctx := state.NewContext()
	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ctx.Game.SetFlag("f", i%2 == 0)
			_ = ctx.Game.Flags()
			ctx.Terminal.Append(domain.Line{Type: domain.LineOutput, Content: "x"})
			_ = ctx.Terminal.Scrollback()
		}(i)
	}
	wg.Wait()
	assert.Len(t, ctx.Terminal.Scrollback(), 20)
}
