package runtime

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/disconnected/internal/minigame"
	"github.com/aretw0/disconnected/pkg/domain"
)

// Mini-game flag conventions.
const (
	CrackPrefix = "crack_"
)

// MinigameActiveFlag is set while the mini-game runs.
func MinigameActiveFlag(id string) string {
	return "minigame_active_" + id
}

// MinigameSolvedFlag is set once the mini-game was won.
func MinigameSolvedFlag(id string) string {
	return "minigame_" + id + "_solved"
}

type activeGame struct {
	session minigame.Session
	timer   Timer
}

// StartMinigame launches a configured mini-game, replacing any running one.
func (e *Engine) StartMinigame(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.startMinigame(ctx, id)
}

// ActiveMinigame returns the running session.
func (e *Engine) ActiveMinigame() (minigame.Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.game == nil {
		return nil, false
	}
	return e.game.session, true
}

// SubmitMinigame forwards one line of input to the running mini-game and
// resolves it when the outcome is decided.
func (e *Engine) SubmitMinigame(ctx context.Context, input string) (minigame.Outcome, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.game == nil {
		return minigame.Outcome{}, domain.ErrNoActiveMinigame
	}
	out, err := e.game.session.Submit(input)
	if err != nil {
		return out, err
	}
	if out.Done() {
		e.resolveMinigame(ctx, out.Result)
	}
	return out, nil
}

// ResolveMinigame ends the running mini-game with result. Aborting a game is
// resolving it as a failure.
func (e *Engine) ResolveMinigame(ctx context.Context, result domain.MinigameResult) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.game == nil {
		return domain.ErrNoActiveMinigame
	}
	e.resolveMinigame(ctx, result)
	return nil
}

func (e *Engine) startMinigame(ctx context.Context, id string) error {
	cfg, ok := e.minigames[id]
	if !ok {
		e.logger.Warn("minigame not configured", "minigame", id)
		return fmt.Errorf("%w: %s", domain.ErrUnknownMinigame, id)
	}
	sess, err := minigame.New(cfg, e.minigameOpts...)
	if err != nil {
		e.logger.Warn("minigame failed to start", "minigame", id, "err", err)
		return err
	}
	if e.game != nil {
		e.dropMinigame()
	}

	g := &activeGame{session: sess}
	e.game = g
	e.st.Game.SetFlag(MinigameActiveFlag(id), true)
	e.st.Game.SetView(domain.ViewMinigame)

	if cfg.TimeLimit > 0 {
		bg := context.WithoutCancel(ctx)
		g.timer = e.schedule(cfg.TimeLimit, func() {
			if e.game == g {
				e.resolveMinigame(bg, domain.ResultTimeout)
			}
		})
	}
	e.logger.Debug("minigame started", "minigame", id, "type", cfg.Type)
	return nil
}

// dropMinigame discards the running game without firing its outcome.
func (e *Engine) dropMinigame() {
	e.unschedule(e.game.timer)
	e.st.Game.RemoveFlag(MinigameActiveFlag(e.game.session.Config().ID))
	e.game = nil
}

func (e *Engine) resolveMinigame(ctx context.Context, result domain.MinigameResult) {
	cfg := e.game.session.Config()
	e.dropMinigame()

	g := e.st.Game
	trigger := cfg.OnFailure
	if result == domain.ResultSuccess {
		trigger = cfg.OnSuccess
		g.SetFlag(MinigameSolvedFlag(cfg.ID), true)
		if machine, ok := strings.CutPrefix(cfg.ID, CrackPrefix); ok {
			g.SetFlag(domain.Machine{ID: machine}.AccessFlag(), true)
		}
	}
	g.SetView(domain.ViewTerminal)

	e.logger.Debug("minigame resolved", "minigame", cfg.ID, "result", result)
	if e.hooks.OnMinigameEnd != nil {
		e.hooks.OnMinigameEnd(ctx, &domain.MinigameEvent{
			EventBase:  domain.EventBase{Timestamp: time.Now(), Type: domain.EventMinigameEnd},
			MinigameID: cfg.ID,
			Type:       cfg.Type,
			Result:     result,
		})
	}
	e.handleTrigger(ctx, trigger)
}
