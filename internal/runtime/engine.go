// Package runtime implements the story engine: node traversal over the
// registered chapters, the action dispatcher, trigger resumption, mini-game
// lifecycle and the terminal exchange. The engine is the single writer of
// game progress; every exported method is a critical section.
package runtime

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/disconnected/internal/condition"
	"github.com/aretw0/disconnected/internal/logging"
	"github.com/aretw0/disconnected/internal/minigame"
	"github.com/aretw0/disconnected/internal/terminal"
	"github.com/aretw0/disconnected/internal/vfs"
	"github.com/aretw0/disconnected/pkg/domain"
	"github.com/aretw0/disconnected/pkg/state"
	"github.com/jonboulle/clockwork"
)

const (
	// DefaultTransitionDelay is the pause before a transition node advances.
	DefaultTransitionDelay = 1500 * time.Millisecond
	// DefaultMaxHops bounds a single traversal through skip-gated nodes.
	DefaultMaxHops = 64
)

// Engine drives the story graph against a set of state stores.
type Engine struct {
	mu sync.Mutex

	st         *state.Context
	chapters   map[int]domain.Chapter
	objectives map[string]domain.Objective
	minigames  map[string]domain.MinigameConfig
	shell      *terminal.Interpreter

	sched           Scheduler
	logger          *slog.Logger
	hooks           domain.LifecycleHooks
	maxHops         int
	transitionDelay time.Duration
	minigameOpts    []minigame.Option

	current    *domain.StoryNode
	game       *activeGame
	typer      *Typewriter
	transition Timer
	timers     map[Timer]struct{}
	closed     bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithScheduler replaces the wall-clock scheduler.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) {
		e.sched = s
	}
}

// WithClock schedules on clock and hands its Now to mini-game sessions.
func WithClock(clock clockwork.Clock) Option {
	return func(e *Engine) {
		e.sched = NewClockScheduler(clock)
		e.minigameOpts = append(e.minigameOpts, minigame.WithClock(clock.Now))
	}
}

// WithMaxHops bounds skip-gated traversal.
func WithMaxHops(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxHops = n
		}
	}
}

// WithTransitionDelay overrides the transition pause.
func WithTransitionDelay(d time.Duration) Option {
	return func(e *Engine) {
		e.transitionDelay = d
	}
}

// WithObjectives sets the catalog add_objective resolves ids against.
func WithObjectives(objectives []domain.Objective) Option {
	return func(e *Engine) {
		for _, o := range objectives {
			e.objectives[o.ID] = o
		}
	}
}

// WithMinigames sets the mini-game configs trigger_minigame can start.
func WithMinigames(configs map[string]domain.MinigameConfig) Option {
	return func(e *Engine) {
		maps.Copy(e.minigames, configs)
	}
}

// WithMinigameOptions are passed to every started mini-game session.
func WithMinigameOptions(opts ...minigame.Option) Option {
	return func(e *Engine) {
		e.minigameOpts = append(e.minigameOpts, opts...)
	}
}

// WithFilesystem sets the machines served by the terminal.
func WithFilesystem(fs *vfs.Registry) Option {
	return func(e *Engine) {
		e.shell = terminal.New(fs)
	}
}

// New creates an engine over st.
func New(st *state.Context, opts ...Option) *Engine {
	e := &Engine{
		st:              st,
		chapters:        make(map[int]domain.Chapter),
		objectives:      make(map[string]domain.Objective),
		minigames:       make(map[string]domain.MinigameConfig),
		sched:           NewClockScheduler(nil),
		logger:          logging.NewNop(),
		maxHops:         DefaultMaxHops,
		transitionDelay: DefaultTransitionDelay,
		timers:          make(map[Timer]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.shell == nil {
		e.shell = terminal.New(vfs.NewRegistry())
	}
	return e
}

// State returns the stores the engine writes.
func (e *Engine) State() *state.Context {
	return e.st
}

// RegisterChapter stores a chapter graph. Re-registering a number replaces it.
func (e *Engine) RegisterChapter(ch domain.Chapter) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.chapters[ch.Number] = ch
}

// Chapter returns a registered chapter.
func (e *Engine) Chapter(n int) (domain.Chapter, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ch, ok := e.chapters[n]
	return ch, ok
}

// Chapters returns every registered chapter in ascending order.
func (e *Engine) Chapters() []domain.Chapter {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.Chapter, 0, len(e.chapters))
	for _, n := range e.chapterNumbers() {
		out = append(out, e.chapters[n])
	}
	return out
}

// StartChapter makes n the current chapter and processes its start node.
// It reports false when the chapter is not registered.
func (e *Engine) StartChapter(ctx context.Context, n int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	ch, ok := e.chapters[n]
	if !ok {
		e.logger.Debug("chapter not registered", "chapter", n)
		return false
	}
	e.st.Game.SetChapter(n)
	e.process(ctx, n, ch.StartNode)
	return true
}

// ProcessNode runs the transition function for a node.
func (e *Engine) ProcessNode(ctx context.Context, chapter int, nodeID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.process(ctx, chapter, nodeID)
}

// Current returns the node most recently dispatched.
func (e *Engine) Current() (domain.StoryNode, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return domain.StoryNode{}, false
	}
	return *e.current, true
}

// AdvanceDialogue leaves the current dialogue node. With a choice id it
// takes that choice; without one it follows the plain successor. It reports
// false and changes nothing when there is no dialogue, the choice is not
// available, or a choice node is advanced without picking one.
func (e *Engine) AdvanceDialogue(ctx context.Context, choiceID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	node, ok := e.st.Dialogue.Node()
	if !ok {
		return false
	}
	conds := e.st.Conditions()

	if choiceID != "" {
		choice, ok := node.Choice(choiceID)
		if !ok || !condition.EvaluateAll(choice.Conditions, conds) {
			e.logger.Debug("choice not available", "node", node.ID, "choice", choiceID)
			return false
		}
		e.st.Game.SetChoice(node.ID, choice.ID)
		for _, a := range choice.Actions {
			e.execute(ctx, a)
		}
		e.clearDialogue()
		e.process(ctx, node.Chapter, choice.NextNode)
		return true
	}

	if len(condition.Filter(node.Choices, conds)) > 0 && node.NextNode == "" {
		return false
	}
	e.clearDialogue()
	e.process(ctx, node.Chapter, node.NextNode)
	return true
}

// Continue resumes from the current cutscene, chat, investigation or
// mini-game node once some node along its successor's skip chain has
// conditions that hold. Dialogue advances through AdvanceDialogue; terminal
// and transition nodes resume on their own.
func (e *Engine) Continue(ctx context.Context) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.current == nil {
		return false
	}
	node := *e.current
	switch node.Type {
	case domain.NodeDialogue, domain.NodeChoice, domain.NodeTerminal, domain.NodeTransition:
		return false
	}
	next, ok := e.resolve(node.Chapter, node.NextNode)
	if !ok {
		return false
	}
	if e.game == nil {
		e.st.Game.SetView(domain.ViewTerminal)
	}
	e.current = nil
	e.process(ctx, next.Chapter, next.ID)
	return true
}

// CompleteTyping marks the current dialogue text as fully shown and
// publishes the choices whose conditions hold.
func (e *Engine) CompleteTyping() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.completeTyping()
}

// Hint returns the hint metadata of the current node.
func (e *Engine) Hint() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return ""
	}
	return e.current.Metadata[domain.MetaHint]
}

// Reset drops traversal state after progress was replaced wholesale, such as
// a loaded save. Pending timers and the running mini-game are discarded.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelPending()
	e.current = nil
	e.game = nil
	e.st.Dialogue.Clear()
}

// TransitionPending reports whether a transition node is waiting out its
// delay.
func (e *Engine) TransitionPending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.transition != nil
}

// CancelPending stops scheduled transitions, time limits and typing.
func (e *Engine) CancelPending() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelPending()
}

// Close cancels pending work. Callbacks that were already due are ignored.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelPending()
	e.closed = true
	return nil
}

func (e *Engine) cancelPending() {
	for t := range e.timers {
		t.Stop()
	}
	clear(e.timers)
	e.transition = nil
	if e.typer != nil {
		e.typer.Cancel()
		e.typer = nil
	}
}

// process is the lock-free transition function. Failing conditions skip to
// the successor; traversal stops at the first dispatched node.
func (e *Engine) process(ctx context.Context, chapter int, id string) {
	for hops := 0; id != ""; hops++ {
		if hops >= e.maxHops {
			e.logger.Warn("traversal halted by hop guard", "chapter", chapter, "node", id, "hops", hops)
			return
		}
		node, ok := e.lookup(chapter, id)
		if !ok {
			e.logger.Debug("node not found", "chapter", chapter, "node", id)
			return
		}
		chapter = node.Chapter
		if !condition.EvaluateAll(node.Conditions, e.st.Conditions()) {
			e.logger.Debug("node skipped", "node", node.ID, "next", node.NextNode)
			id = node.NextNode
			continue
		}
		for _, a := range node.Actions {
			e.execute(ctx, a)
		}
		e.dispatch(ctx, node)
		return
	}
}

func (e *Engine) dispatch(ctx context.Context, node domain.StoryNode) {
	e.current = &node
	if e.hooks.OnNodeEnter != nil {
		e.hooks.OnNodeEnter(ctx, &domain.NodeEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventNodeEnter},
			Chapter:   node.Chapter,
			NodeID:    node.ID,
			NodeType:  node.Type,
		})
	}
	e.logger.Debug("node dispatched", "chapter", node.Chapter, "node", node.ID, "type", node.Type)

	switch node.Type {
	case domain.NodeDialogue, domain.NodeChoice:
		e.showDialogue(node)
	case domain.NodeTerminal:
		if e.game == nil {
			e.st.Game.SetView(domain.ViewTerminal)
		}
		if node.NextNode != "" {
			e.st.Game.SetFlag(domain.AwaitingTriggerFlag(node.NextNode), true)
		}
	case domain.NodeTransition:
		if node.NextNode == "" {
			return
		}
		bg := context.WithoutCancel(ctx)
		chapter, next := node.Chapter, node.NextNode
		e.transition = e.schedule(e.transitionDelay, func() {
			e.transition = nil
			e.process(bg, chapter, next)
		})
	default:
		if v, ok := node.Type.View(); ok {
			e.st.Game.SetView(v)
			return
		}
		e.logger.Debug("unknown node type", "node", node.ID, "type", node.Type)
	}
}

func (e *Engine) showDialogue(node domain.StoryNode) {
	if e.typer != nil {
		e.typer.Cancel()
		e.typer = nil
	}
	d := e.st.Dialogue
	d.SetNode(node)
	d.SetTyping(true)
	d.SetActive(true)
	d.SetDisplayedText("")
	d.SetChoices(nil)
	d.AddHistory(node.Speaker, node.Text)
}

func (e *Engine) clearDialogue() {
	if e.typer != nil {
		e.typer.Cancel()
		e.typer = nil
	}
	e.st.Dialogue.Clear()
	e.current = nil
}

func (e *Engine) completeTyping() {
	node, ok := e.st.Dialogue.Node()
	if !ok {
		return
	}
	e.st.Dialogue.SetTyping(false)
	e.st.Dialogue.SetDisplayedText(node.Text)
	e.st.Dialogue.SetChoices(condition.Filter(node.Choices, e.st.Conditions()))
}

// lookup searches the given chapter first and then every other registered
// chapter in ascending order.
func (e *Engine) lookup(chapter int, id string) (domain.StoryNode, bool) {
	if id == "" {
		return domain.StoryNode{}, false
	}
	if ch, ok := e.chapters[chapter]; ok {
		if n, ok := ch.Node(id); ok {
			return n, true
		}
	}
	for _, num := range e.chapterNumbers() {
		if num == chapter {
			continue
		}
		if n, ok := e.chapters[num].Node(id); ok {
			return n, true
		}
	}
	return domain.StoryNode{}, false
}

// resolve follows the skip chain from id the way process does and returns
// the first node whose conditions hold.
func (e *Engine) resolve(chapter int, id string) (domain.StoryNode, bool) {
	conds := e.st.Conditions()
	for hops := 0; hops < e.maxHops; hops++ {
		node, ok := e.lookup(chapter, id)
		if !ok {
			return domain.StoryNode{}, false
		}
		if condition.EvaluateAll(node.Conditions, conds) {
			return node, true
		}
		chapter, id = node.Chapter, node.NextNode
	}
	return domain.StoryNode{}, false
}

func (e *Engine) chapterNumbers() []int {
	return slices.Sorted(maps.Keys(e.chapters))
}

// schedule runs f under the engine lock after d unless cancelled first.
func (e *Engine) schedule(d time.Duration, f func()) Timer {
	var t Timer
	t = e.sched.AfterFunc(d, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if _, pending := e.timers[t]; !pending || e.closed {
			return
		}
		delete(e.timers, t)
		f()
	})
	e.timers[t] = struct{}{}
	return t
}

func (e *Engine) unschedule(t Timer) {
	if t == nil {
		return
	}
	t.Stop()
	delete(e.timers, t)
}
