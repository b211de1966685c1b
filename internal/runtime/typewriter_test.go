package runtime_test

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/disconnected/internal/runtime"
	"github.com/aretw0/disconnected/pkg/domain"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ticks records onTick calls, which arrive on timer goroutines.
type ticks struct {
	mu  sync.Mutex
	got []string
}

func (r *ticks) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, s)
}

func (r *ticks) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.got)
}

// step fires the one pending reveal tick.
func step(t *testing.T, clock *clockwork.FakeClock, d time.Duration) {
	t.Helper()
	waitTimers(t, clock, 1)
	clock.Advance(d)
}

func TestTypewriter_RevealsOnSchedule(t *testing.T) {
	clock := clockwork.NewFakeClock()
	var rec ticks
	var done atomic.Int32
	tw := runtime.NewTypewriter(runtime.NewClockScheduler(clock), "héllo", 10*time.Millisecond,
		rec.add,
		func() { done.Add(1) },
	)

	tw.Start()
	step(t, clock, 10*time.Millisecond)
	step(t, clock, 10*time.Millisecond)
	eventually(t, func() bool { return len(rec.all()) == 2 }, "two ticks")
	assert.Equal(t, []string{"h", "hé"}, rec.all(), "steps are runes, not bytes")
	assert.False(t, tw.Done())

	for range 3 {
		step(t, clock, 10*time.Millisecond)
	}
	eventually(t, tw.Done, "reveal finishes")
	assert.Equal(t, "héllo", tw.Shown())
	eventually(t, func() bool { return done.Load() == 1 }, "onDone runs once")
	waitTimers(t, clock, 0)
}

func TestTypewriter_Skip(t *testing.T) {
	clock := clockwork.NewFakeClock()
	var rec ticks
	var done atomic.Int32
	tw := runtime.NewTypewriter(runtime.NewClockScheduler(clock), "signal lost", 50*time.Millisecond,
		rec.add,
		func() { done.Add(1) },
	)
	tw.Start()
	step(t, clock, 50*time.Millisecond)
	eventually(t, func() bool { return len(rec.all()) == 1 }, "first tick")

	tw.Skip()
	tw.Skip()

	got := rec.all()
	assert.Equal(t, "signal lost", got[len(got)-1])
	assert.Equal(t, int32(1), done.Load())
	waitTimers(t, clock, 0)
}

func TestTypewriter_Cancel(t *testing.T) {
	clock := clockwork.NewFakeClock()
	var done atomic.Bool
	tw := runtime.NewTypewriter(runtime.NewClockScheduler(clock), "static", 10*time.Millisecond, nil, func() { done.Store(true) })
	tw.Start()
	waitTimers(t, clock, 1)

	tw.Cancel()
	waitTimers(t, clock, 0)
	clock.Advance(time.Second)

	assert.False(t, done.Load())
	assert.Empty(t, tw.Shown())
}

func TestEngineType_PublishesChoicesWhenFinished(t *testing.T) {
	f := newFixture(t)
	ask := domain.StoryNode{
		ID:      "ask",
		Type:    domain.NodeChoice,
		Text:    "Go?",
		Choices: []domain.StoryChoice{{ID: "yes", Text: "Yes"}},
	}
	f.engine.RegisterChapter(chapter(1, "ask", ask))
	f.engine.StartChapter(context.Background(), 1)

	tw := f.engine.Type(nil)
	require.NotNil(t, tw)
	per := domain.TextNormal.PerCharacter()
	step(t, f.clock, per)
	eventually(t, func() bool { return f.state.Dialogue.View().DisplayedText == "G" }, "first rune")
	assert.Empty(t, f.state.Dialogue.View().Choices)

	step(t, f.clock, per)
	step(t, f.clock, per)
	eventually(t, func() bool { return !f.state.Dialogue.View().Typing }, "typing finishes")
	view := f.state.Dialogue.View()
	assert.Equal(t, "Go?", view.DisplayedText)
	assert.Len(t, view.Choices, 1)

	assert.Nil(t, f.engine.Type(nil), "nothing left to type")
}

func TestEngineType_InstantSpeed(t *testing.T) {
	f := newFixture(t)
	f.state.Game.UpdateSettings(func(s *domain.Settings) { s.TextSpeed = domain.TextInstant })
	f.engine.RegisterChapter(chapter(1, "a", dialogue("a", "")))
	f.engine.StartChapter(context.Background(), 1)

	f.engine.Type(nil)

	assert.False(t, f.state.Dialogue.Typing())
	waitTimers(t, f.clock, 0)
}

func TestEngineType_StaleRevealDoesNotLeak(t *testing.T) {
	f := newFixture(t)
	f.engine.RegisterChapter(chapter(1, "a", dialogue("a", "b"), dialogue("b", "")))
	ctx := context.Background()
	f.engine.StartChapter(ctx, 1)

	f.engine.Type(nil)
	waitTimers(t, f.clock, 1)
	require.True(t, f.engine.AdvanceDialogue(ctx, ""))
	waitTimers(t, f.clock, 0)
	f.clock.Advance(time.Minute)

	assert.Equal(t, "b", f.node(t).ID)
	assert.True(t, f.state.Dialogue.Typing(), "the old reveal was cancelled")
}
