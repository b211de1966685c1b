package runtime

import (
	"sync"
	"time"
)

// Typewriter reveals text one rune per step on a Scheduler. It never blocks:
// each step is a scheduled callback, and Skip or Cancel stop the sequence.
type Typewriter struct {
	mu     sync.Mutex
	sched  Scheduler
	runes  []rune
	shown  int
	step   time.Duration
	timer  Timer
	done   bool
	onTick func(shown string)
	onDone func()
}

// NewTypewriter prepares a reveal of text. onTick receives the visible prefix
// after every step; onDone runs once when the full text is visible, whether
// by reaching the end or by Skip. Either callback may be nil.
func NewTypewriter(sched Scheduler, text string, step time.Duration, onTick func(string), onDone func()) *Typewriter {
	return &Typewriter{
		sched:  sched,
		runes:  []rune(text),
		step:   step,
		onTick: onTick,
		onDone: onDone,
	}
}

// Start begins the reveal. A zero step shows everything at once.
func (t *Typewriter) Start() {
	if t.step <= 0 || len(t.runes) == 0 {
		t.Skip()
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done || t.timer != nil {
		return
	}
	t.timer = t.sched.AfterFunc(t.step, t.tick)
}

func (t *Typewriter) tick() {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return
	}
	t.shown++
	text := string(t.runes[:t.shown])
	finished := t.shown >= len(t.runes)
	if finished {
		t.done = true
		t.timer = nil
	} else {
		t.timer = t.sched.AfterFunc(t.step, t.tick)
	}
	t.mu.Unlock()

	if t.onTick != nil {
		t.onTick(text)
	}
	if finished && t.onDone != nil {
		t.onDone()
	}
}

// Skip reveals the remaining text immediately.
func (t *Typewriter) Skip() {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return
	}
	t.done = true
	t.shown = len(t.runes)
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	text := string(t.runes)
	t.mu.Unlock()

	if t.onTick != nil {
		t.onTick(text)
	}
	if t.onDone != nil {
		t.onDone()
	}
}

// Cancel stops the reveal without completing it.
func (t *Typewriter) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return
	}
	t.done = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// Done reports whether the sequence has ended.
func (t *Typewriter) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// Shown returns the visible prefix.
func (t *Typewriter) Shown() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.runes[:t.shown])
}

// Type starts revealing the current dialogue text at the configured text
// speed. The displayed text is mirrored into the dialogue store and choices
// are published when the reveal completes. onTick may be nil. It returns nil
// when no dialogue is on screen.
func (e *Engine) Type(onTick func(shown string)) *Typewriter {
	e.mu.Lock()
	node, ok := e.st.Dialogue.Node()
	if !ok || !e.st.Dialogue.Typing() {
		e.mu.Unlock()
		return nil
	}
	if e.typer != nil {
		e.typer.Cancel()
	}
	step := e.st.Game.Settings().TextSpeed.PerCharacter()
	tw := NewTypewriter(e.sched, node.Text, step,
		func(shown string) {
			e.st.Dialogue.SetDisplayedText(shown)
			if onTick != nil {
				onTick(shown)
			}
		},
		func() { e.finishTyping(node.ID) },
	)
	e.typer = tw
	e.mu.Unlock()

	tw.Start()
	return tw
}

// finishTyping completes typing only if nodeID is still on screen.
func (e *Engine) finishTyping(nodeID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	node, ok := e.st.Dialogue.Node()
	if !ok || node.ID != nodeID {
		return
	}
	e.typer = nil
	e.completeTyping()
}
