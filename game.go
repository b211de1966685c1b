package disconnected

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/disconnected/internal/content"
	"github.com/aretw0/disconnected/internal/logging"
	"github.com/aretw0/disconnected/internal/minigame"
	"github.com/aretw0/disconnected/internal/presentation/graph"
	"github.com/aretw0/disconnected/internal/runtime"
	"github.com/aretw0/disconnected/internal/vfs"
	"github.com/aretw0/disconnected/pkg/adapters/memory"
	"github.com/aretw0/disconnected/pkg/domain"
	"github.com/aretw0/disconnected/pkg/persistence"
	"github.com/aretw0/disconnected/pkg/ports"
	"github.com/aretw0/disconnected/pkg/state"
	"github.com/jonboulle/clockwork"
)

// MaxIdle caps how much play time a single gap between inputs can add.
const MaxIdle = 5 * time.Minute

// DefaultTransitionDelay is the pause an interactive surface shows before a
// transition node moves on.
const DefaultTransitionDelay = runtime.DefaultTransitionDelay

// settleRounds bounds how many chained transitions one input may flush.
const settleRounds = 32

// Game is one playthrough: content, stores, engine and saves wired together.
// It is safe for concurrent use; the engine serializes story processing.
type Game struct {
	engine *runtime.Engine
	st     *state.Context
	saves  *persistence.Manager
	bundle *content.Bundle
	sched  *deferredScheduler

	logger     *slog.Logger
	hooks      domain.LifecycleHooks
	store      ports.SlotStore
	clock      clockwork.Clock
	textSpeed  domain.TextSpeed
	maxSlots   int
	transition time.Duration

	mu   sync.Mutex
	last time.Time
}

// Option configures a Game.
type Option func(*Game)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Game) {
		g.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(g *Game) {
		g.hooks = g.hooks.Merge(hooks)
	}
}

// WithSlotStore sets where saves go. The default keeps them in memory.
func WithSlotStore(store ports.SlotStore) Option {
	return func(g *Game) {
		g.store = store
	}
}

// WithContent replaces the embedded story.
func WithContent(b *content.Bundle) Option {
	return func(g *Game) {
		g.bundle = b
	}
}

// WithTextSpeed sets the dialogue reveal rate presentation layers honor.
func WithTextSpeed(s domain.TextSpeed) Option {
	return func(g *Game) {
		g.textSpeed = s
	}
}

// WithClock replaces the wall clock for play time, save timestamps, mini-game
// limits and transition pacing.
func WithClock(clock clockwork.Clock) Option {
	return func(g *Game) {
		g.clock = clock
	}
}

// WithTransitionDelay keeps transition nodes on screen for d before the story
// moves on; see AwaitTransition. The default of zero moves on at once.
func WithTransitionDelay(d time.Duration) Option {
	return func(g *Game) {
		g.transition = d
	}
}

// WithMaxSlots overrides the save slot cap.
func WithMaxSlots(n int) Option {
	return func(g *Game) {
		g.maxSlots = n
	}
}

// New builds a game at the main menu. Call Start to begin chapter one.
func New(opts ...Option) (*Game, error) {
	g := &Game{
		logger:    logging.NewNop(),
		clock:     clockwork.NewRealClock(),
		textSpeed: domain.TextNormal,
		maxSlots:  persistence.DefaultMaxSlots,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.sched = newDeferredScheduler(g.clock)

	if g.bundle == nil {
		b, err := content.Default()
		if err != nil {
			return nil, fmt.Errorf("failed to load content: %w", err)
		}
		g.bundle = b
	}
	if g.store == nil {
		g.store = memory.NewStore()
	}

	g.st = state.NewContext(state.WithClueCatalog(g.bundle.Clues, g.bundle.Connections))
	g.st.Game.UpdateSettings(func(s *domain.Settings) {
		s.TextSpeed = g.textSpeed
	})

	g.engine = runtime.New(g.st,
		runtime.WithLogger(g.logger),
		runtime.WithLifecycleHooks(g.hooks),
		runtime.WithScheduler(g.sched),
		runtime.WithTransitionDelay(g.transition),
		runtime.WithObjectives(g.bundle.Objectives),
		runtime.WithMinigames(g.bundle.Minigames),
		runtime.WithMinigameOptions(minigame.WithClock(g.clock.Now)),
		runtime.WithFilesystem(vfs.NewRegistry(g.bundle.Machines...)),
	)
	for _, ch := range g.bundle.Chapters {
		g.engine.RegisterChapter(ch)
	}

	g.saves = persistence.NewManager(g.store, g.st,
		persistence.WithLogger(g.logger),
		persistence.WithClock(g.clock.Now),
		persistence.WithMaxSlots(g.maxSlots),
	)
	g.last = g.clock.Now()
	return g, nil
}

// Start resets progress and enters chapter one.
func (g *Game) Start(ctx context.Context) error {
	g.mu.Lock()
	g.last = g.clock.Now()
	g.mu.Unlock()

	g.engine.Reset()
	g.st.Game.StartNewGame()
	g.st.Terminal.SetMachine(domain.LocalMachine)
	g.st.Terminal.SetPath([]string{domain.HomeRoot})
	g.st.Terminal.ClearScrollback()
	g.st.Chat.Restore(nil, nil)
	g.st.Investigation.Restore(g.bundle.Clues, g.bundle.Connections)
	if !g.engine.StartChapter(ctx, 1) {
		return fmt.Errorf("chapter 1 is not registered")
	}
	g.settle()
	g.logger.Info("new game started")
	return nil
}

// Execute runs one terminal line.
func (g *Game) Execute(ctx context.Context, line string) domain.CommandResult {
	g.accrue()
	res := g.engine.Execute(ctx, line)
	g.settle()
	return res
}

// Input routes a line to the running mini-game, or to the terminal when no
// mini-game is running.
func (g *Game) Input(ctx context.Context, line string) ([]domain.Line, error) {
	if _, ok := g.engine.ActiveMinigame(); ok {
		out, err := g.SubmitMinigame(ctx, line)
		return out.Lines, err
	}
	return g.Execute(ctx, line).Lines, nil
}

// Advance leaves the current dialogue, taking choiceID when it is set.
func (g *Game) Advance(ctx context.Context, choiceID string) bool {
	g.accrue()
	g.engine.CompleteTyping()
	ok := g.engine.AdvanceDialogue(ctx, choiceID)
	g.settle()
	return ok
}

// Continue leaves the current cutscene or surface node.
func (g *Game) Continue(ctx context.Context) bool {
	g.accrue()
	ok := g.engine.Continue(ctx)
	g.settle()
	return ok
}

// Trigger fires a trigger id by hand, as a scripted surface would.
func (g *Game) Trigger(ctx context.Context, id string) {
	g.accrue()
	g.engine.HandleTrigger(ctx, id)
	g.settle()
}

// SubmitMinigame sends one line to the running mini-game.
func (g *Game) SubmitMinigame(ctx context.Context, input string) (minigame.Outcome, error) {
	g.accrue()
	out, err := g.engine.SubmitMinigame(ctx, input)
	g.settle()
	return out, err
}

// AbortMinigame gives up on the running mini-game, which counts as failure.
func (g *Game) AbortMinigame(ctx context.Context) error {
	g.accrue()
	err := g.engine.ResolveMinigame(ctx, domain.ResultFailure)
	g.settle()
	return err
}

// AwaitTransition blocks while the transition node on screen waits out its
// delay and reports whether the story moved on. It returns false at once when
// no transition is pending or when ctx ends first.
func (g *Game) AwaitTransition(ctx context.Context) bool {
	if !g.engine.TransitionPending() {
		return false
	}
	from := g.currentNode()
	for g.engine.TransitionPending() && g.currentNode() == from {
		if !g.sched.wait(ctx) {
			return false
		}
		g.settle()
	}
	return true
}

// Complete returns tab-completion candidates.
func (g *Game) Complete(partial string) []string {
	return g.engine.Complete(partial)
}

// Prompt renders the shell prompt.
func (g *Game) Prompt() string {
	return g.engine.Prompt()
}

// Save writes the game into slotID.
func (g *Game) Save(ctx context.Context, slotID, name string) (domain.SaveSlot, error) {
	g.accrue()
	return g.saves.Save(ctx, slotID, name)
}

// Autosave writes the autosave slot.
func (g *Game) Autosave(ctx context.Context) (domain.SaveSlot, error) {
	g.accrue()
	return g.saves.Autosave(ctx)
}

// Load restores slotID. On success traversal state is dropped and the story
// resumes from the armed triggers in the restored flags.
func (g *Game) Load(ctx context.Context, slotID string) (bool, error) {
	g.accrue()
	ok, err := g.saves.Load(ctx, slotID)
	if !ok {
		return false, err
	}
	g.engine.Reset()
	g.logger.Info("game loaded", "slot", slotID, "chapter", g.st.Game.Chapter())
	return true, nil
}

// Saves exposes the save slot manager.
func (g *Game) Saves() *persistence.Manager {
	return g.saves
}

// State exposes the stores. Callers must treat them as read-only.
func (g *Game) State() *state.Context {
	return g.st
}

// Content returns the loaded story.
func (g *Game) Content() *content.Bundle {
	return g.bundle
}

// Graph renders the story as Mermaid. With overlay set, the choices made and
// the current node are highlighted.
func (g *Game) Graph(overlay bool) string {
	var o *graph.Overlay
	if overlay {
		o = graph.NewOverlay(g.st.Game.Choices(), g.currentNode())
	}
	return graph.GenerateMermaid(g.engine.Chapters(), o)
}

// Close cancels pending engine work.
func (g *Game) Close() error {
	return g.engine.Close()
}

// accrue adds the time since the previous input to the play time and runs
// timers that fell due in between, such as an expired mini-game limit.
func (g *Game) accrue() {
	g.mu.Lock()
	now := g.clock.Now()
	d := min(now.Sub(g.last), MaxIdle)
	g.last = now
	if d > 0 && g.st.Game.Screen() == domain.ScreenGame {
		g.st.Game.AddPlayTime(d)
	}
	g.mu.Unlock()
	g.settle()
}

func (g *Game) currentNode() string {
	if n, ok := g.engine.Current(); ok {
		return n.ID
	}
	return ""
}

// settle runs due timers and shows dialogue in full.
func (g *Game) settle() {
	g.sched.drain(settleRounds)
	g.engine.CompleteTyping()
}
