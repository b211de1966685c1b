// Package cli implements the interactive play loop.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/disconnected"
	"github.com/aretw0/disconnected/internal/input"
	"github.com/aretw0/disconnected/internal/logging"
	"github.com/aretw0/disconnected/internal/presentation/tui"
	"github.com/aretw0/disconnected/pkg/domain"
)

// DefaultSlot is where :save writes without an argument.
const DefaultSlot = "1"

const helpText = `Commands:
  :next              advance the dialogue or cutscene
  :choose <id|n>     pick a dialogue choice
  :continue          leave the cutscene on screen
  :save [slot]       save the game (slot 1 by default)
  :load <slot>       load a saved game
  :board             show the evidence board
  :objectives        list objectives
  :hint              show the hint for this scene
  :abort             give up on the running mini-game
  :quit              autosave and leave
Anything else is typed into the terminal.`

// Options configures Play.
type Options struct {
	In  io.Reader
	Out io.Writer
	// Color enables lipgloss styles and glamour's auto style.
	Color bool
	// Typewriter reveals dialogue at the game's text speed.
	Typewriter bool
	Logger     *slog.Logger
}

// Player drives one game from a line-oriented terminal.
type Player struct {
	game   *disconnected.Game
	con    *console
	out    io.Writer
	styles *tui.Styles
	render func(string) (string, error)
	logger *slog.Logger

	typewriter bool
	sleep      func(context.Context, time.Duration) bool

	lastNode string
	seen     map[string]bool
	ended    bool
}

// NewPlayer binds a started game to the given streams.
func NewPlayer(g *disconnected.Game, opts Options) *Player {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	return &Player{
		game:       g,
		con:        newConsole(opts.In),
		out:        opts.Out,
		styles:     tui.NewStyles(opts.Out, opts.Color),
		render:     tui.NewRenderer(opts.Color),
		logger:     opts.Logger,
		typewriter: opts.Typewriter,
		sleep:      sleepCtx,
		seen:       make(map[string]bool),
	}
}

// Play runs the loop until :quit, end of input or ctx ends.
func Play(ctx context.Context, g *disconnected.Game, opts Options) error {
	return NewPlayer(g, opts).Run(ctx)
}

// Run runs the loop until :quit, end of input or ctx ends.
func (p *Player) Run(ctx context.Context) error {
	p.refresh(ctx)
	for {
		fmt.Fprint(p.out, p.prompt())
		raw, err := p.con.ReadLine(ctx)
		if err != nil {
			fmt.Fprintln(p.out)
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		line, err := input.Sanitize(raw)
		if err != nil {
			p.println(p.styles.Line(domain.Line{Type: domain.LineError, Content: fmt.Sprintf("Error: %v. Please try again.", err)}))
			continue
		}

		if quit := p.handle(ctx, line); quit {
			p.autosave(ctx)
			return nil
		}
		p.refresh(ctx)
	}
}

// refresh shows the current scene, then keeps showing while a transition
// plays out.
func (p *Player) refresh(ctx context.Context) {
	p.show(ctx)
	for p.game.AwaitTransition(ctx) {
		p.show(ctx)
	}
}

// handle runs one line and reports whether the player asked to quit.
func (p *Player) handle(ctx context.Context, line string) bool {
	s := p.game.Status()

	if !strings.HasPrefix(line, ":") {
		switch {
		case line == "" && s.Minigame == nil && s.Dialogue != nil:
			p.game.Advance(ctx, "")
		case line == "" && s.Minigame == nil && s.View != domain.ViewTerminal:
			p.game.Continue(ctx)
		case line == "":
		case s.Minigame != nil || s.View == domain.ViewTerminal:
			lines, err := p.game.Input(ctx, line)
			if err != nil {
				p.fail(err)
			}
			p.println(p.styles.Lines(lines))
		default:
			p.system("Nothing to type into here. Use :next or :help.")
		}
		return false
	}

	cmd, arg, _ := strings.Cut(strings.TrimPrefix(line, ":"), " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(cmd) {
	case "q", "quit", "exit":
		return true
	case "help", "h":
		p.println(helpText)
	case "next", "n":
		if s.Dialogue != nil {
			p.refuse(p.game.Advance(ctx, ""), "Pick a choice with :choose.")
		} else {
			p.refuse(p.game.Continue(ctx), "Nothing to advance.")
		}
	case "continue", "c":
		p.refuse(p.game.Continue(ctx), "Nothing to continue.")
	case "choose":
		id, ok := choiceID(s, arg)
		if !ok {
			p.system(fmt.Sprintf("No choice %q.", arg))
			return false
		}
		p.refuse(p.game.Advance(ctx, id), "That choice is not available.")
	case "save":
		slot := arg
		if slot == "" {
			slot = DefaultSlot
		}
		saved, err := p.game.Save(ctx, slot, "")
		if err != nil {
			p.fail(err)
			return false
		}
		p.system(fmt.Sprintf("Saved %q to slot %s.", saved.Name, saved.ID))
	case "load":
		if arg == "" {
			p.system("Usage: :load <slot>")
			return false
		}
		if _, err := p.game.Load(ctx, arg); err != nil {
			p.fail(err)
			return false
		}
		p.lastNode = ""
		p.system(fmt.Sprintf("Loaded slot %s. Chapter %d.", arg, p.game.Status().Chapter))
	case "board":
		inv := p.game.State().Investigation
		p.println(p.styles.Board(inv.Clues(), inv.Connections()))
	case "objectives":
		p.println(p.styles.Objectives(s.Objectives))
	case "hint":
		if s.Hint == "" {
			p.system("No hint here.")
		} else {
			p.system("Hint: " + s.Hint)
		}
	case "abort":
		if err := p.game.AbortMinigame(ctx); err != nil {
			p.fail(err)
		}
	default:
		p.system(fmt.Sprintf("Unknown command :%s. Try :help.", cmd))
	}
	return false
}

// show prints whatever changed since the last input: a new node, fresh
// notifications and the ending.
func (p *Player) show(ctx context.Context) {
	s := p.game.Status()

	for _, n := range s.Notifications {
		if p.seen[n.ID] {
			continue
		}
		p.seen[n.ID] = true
		p.println(p.styles.Notification(n))
	}

	if s.Node != "" && s.Node != p.lastNode {
		p.lastNode = s.Node
		switch {
		case s.Minigame != nil:
			p.println(p.styles.Lines(s.Minigame.Intro))
		case s.Dialogue != nil:
			p.dialogue(ctx, s.Dialogue)
		case s.Text != "":
			p.typeOut(ctx, s.Text)
			fmt.Fprintln(p.out)
			if s.NodeType == domain.NodeCutscene {
				p.system("[:next to continue]")
			}
		case s.View == domain.ViewTerminal:
			if s.Hint != "" {
				p.system(s.Hint)
			}
		}
	}

	if s.Ending != "" && !p.ended {
		p.ended = true
		p.system(fmt.Sprintf("ENDING: %s", strings.ToUpper(string(s.Ending))))
	}
}

func (p *Player) dialogue(ctx context.Context, d *disconnected.DialogueStatus) {
	out, err := p.render(tui.DialogueMarkdown(d.Speaker, d.Text))
	if err != nil {
		out = d.Text
	}
	p.typeOut(ctx, strings.TrimSpace(out))
	fmt.Fprintln(p.out)

	if len(d.Choices) > 0 {
		choices := make([]domain.StoryChoice, len(d.Choices))
		for i, c := range d.Choices {
			choices[i] = domain.StoryChoice{ID: c.ID, Text: c.Text}
		}
		p.println(p.styles.Choices(choices))
	}
}

// typeOut reveals text at the game's text speed. The reveal stops early
// when ctx ends.
func (p *Player) typeOut(ctx context.Context, text string) {
	delay := p.game.State().Game.Settings().TextSpeed.PerCharacter()
	if !p.typewriter || delay == 0 {
		fmt.Fprint(p.out, text)
		return
	}
	for i, r := range text {
		fmt.Fprint(p.out, string(r))
		if r == ' ' || r == '\n' {
			continue
		}
		if !p.sleep(ctx, delay) {
			fmt.Fprint(p.out, text[i+len(string(r)):])
			return
		}
	}
}

func (p *Player) prompt() string {
	s := p.game.Status()
	switch {
	case s.Minigame != nil:
		return p.styles.Prompt(fmt.Sprintf("[%s]> ", s.Minigame.Title))
	case s.View == domain.ViewTerminal:
		return p.styles.Prompt(s.Prompt)
	default:
		return "> "
	}
}

func (p *Player) autosave(ctx context.Context) {
	if p.game.Status().Screen != domain.ScreenGame {
		return
	}
	if _, err := p.game.Autosave(ctx); err != nil {
		p.logger.Warn("autosave failed", "err", err)
		return
	}
	p.system("Autosaved.")
}

func (p *Player) refuse(ok bool, msg string) {
	if !ok {
		p.system(msg)
	}
}

func (p *Player) system(msg string) {
	p.println(p.styles.Line(domain.Line{Type: domain.LineSystem, Content: msg}))
}

func (p *Player) fail(err error) {
	p.println(p.styles.Line(domain.Line{Type: domain.LineError, Content: err.Error()}))
}

func (p *Player) println(s string) {
	if s == "" {
		return
	}
	fmt.Fprintln(p.out, s)
}

// choiceID resolves a 1-based index or a choice id.
func choiceID(s disconnected.Status, arg string) (string, bool) {
	if s.Dialogue == nil || arg == "" {
		return "", false
	}
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(s.Dialogue.Choices) {
			return "", false
		}
		return s.Dialogue.Choices[n-1].ID, true
	}
	for _, c := range s.Dialogue.Choices {
		if c.ID == arg {
			return c.ID, true
		}
	}
	return "", false
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
