package runtime

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/disconnected/internal/terminal"
	"github.com/aretw0/disconnected/internal/vfs"
	"github.com/aretw0/disconnected/pkg/domain"
)

// Execute runs one terminal line and applies its result to the stores. The
// requested actions run before the output reaches the scrollback.
func (e *Engine) Execute(ctx context.Context, line string) domain.CommandResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	ts := e.st.Terminal
	prompt := e.shell.Prompt(e.session())
	if strings.TrimSpace(line) != "" {
		ts.PushCommand(line)
	}
	res := e.shell.Execute(line, e.session())

	if res.NewMachine != "" {
		ts.SetMachine(res.NewMachine)
		if res.NewMachine != domain.LocalMachine {
			e.st.Game.SetFlag(domain.Machine{ID: res.NewMachine}.AccessFlag(), true)
		}
	}
	if res.NewPath != nil {
		ts.SetPath(res.NewPath)
	}

	for _, d := range res.Actions {
		a := domain.ParseAction(d)
		if tm, ok := a.(domain.TriggerMinigame); ok {
			if err := e.startMinigame(ctx, tm.Minigame); err != nil {
				res.Lines = append(res.Lines, minigameRefusal(tm.Minigame, err))
			}
			continue
		}
		e.execute(ctx, a)
	}

	if res.Clear {
		ts.ClearScrollback()
	} else {
		ts.Append(domain.Line{Type: domain.LineInput, Content: prompt + line})
		ts.Append(res.Lines...)
	}

	if e.hooks.OnCommand != nil {
		e.hooks.OnCommand(ctx, &domain.CommandEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventCommand},
			Command:   terminal.CommandName(line),
			Machine:   ts.Machine(),
			Failed:    slices.ContainsFunc(res.Lines, func(l domain.Line) bool { return l.Type == domain.LineError }),
		})
	}
	return res
}

func minigameRefusal(id string, err error) domain.Line {
	target := id
	if i := strings.IndexByte(id, '_'); i >= 0 {
		target = id[i+1:]
	}
	msg := fmt.Sprintf("%s: no known attack vector", target)
	if !errors.Is(err, domain.ErrUnknownMinigame) {
		msg = fmt.Sprintf("%s: attack failed to start", target)
	}
	return domain.Line{Type: domain.LineError, Content: msg}
}

// Prompt renders the shell prompt for the current location.
func (e *Engine) Prompt() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shell.Prompt(e.session())
}

// Complete returns tab-completion candidates for a partial line.
func (e *Engine) Complete(partial string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shell.Complete(partial, e.session())
}

// Filesystem returns the machines currently served, downloads included.
func (e *Engine) Filesystem() *vfs.Registry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shell.Filesystem()
}

func (e *Engine) session() terminal.Session {
	machine, path := e.st.Terminal.Location()
	return terminal.Session{
		Machine: machine,
		Path:    path,
		Flags:   e.st.Game.Flags(),
		History: e.st.Terminal.Commands(),
	}
}
