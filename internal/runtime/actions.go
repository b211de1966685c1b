package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/disconnected/internal/terminal"
	"github.com/aretw0/disconnected/pkg/domain"
)

// ExecuteAction applies a single action.
func (e *Engine) ExecuteAction(ctx context.Context, a domain.Action) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.execute(ctx, a)
}

// execute dispatches one action. Each branch writes a single store, except
// the ones that forward into the trigger or mini-game lifecycle.
func (e *Engine) execute(ctx context.Context, a domain.Action) {
	ignored := false
	g := e.st.Game

	switch a := a.(type) {
	case domain.SetFlag:
		g.SetFlag(a.Flag, a.Value)
	case domain.RemoveFlag:
		g.RemoveFlag(a.Flag)
	case domain.AddClue:
		e.discoverClue(a.Clue)
	case domain.ChangeRelationship:
		g.ChangeRelationship(a.Character, a.Delta)
	case domain.TriggerMinigame:
		e.startMinigame(ctx, a.Minigame)
	case domain.PlaySound:
		e.logger.Debug("sound requested", "sound", a.Sound)
	case domain.SetChapter:
		if !g.SetChapter(a.Chapter) {
			e.logger.Debug("chapter not advanced", "requested", a.Chapter, "current", g.Chapter())
		}
	case domain.AddObjective:
		g.AddObjective(e.objective(a))
	case domain.CompleteObjective:
		g.CompleteObjective(a.Objective)
	case domain.UnlockContact:
		e.unlockContact(a.Contact)
	case domain.SendMessage:
		e.st.Chat.AddMessage(a.Conversation, domain.ChatMessage{Sender: a.Conversation, Text: a.Text})
	case domain.SetView:
		g.SetView(a.View)
	case domain.SetAmbient:
		e.st.Ambient.SetMood(a.Mood)
	case domain.TriggerEnding:
		g.SetEnding(a.Ending)
	case domain.Trigger:
		e.handleTrigger(ctx, a.ID)
	case domain.AddFile:
		e.addDownload(a)
	case domain.SetActiveContact:
		e.st.Chat.SetActive(a.Contact)
	default:
		ignored = true
		e.logger.Debug("unknown action ignored", "type", a.Kind())
	}

	if e.hooks.OnAction != nil {
		e.hooks.OnAction(ctx, &domain.ActionEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventActionExecuted},
			Action:    a.Descriptor(),
			Ignored:   ignored,
		})
	}
}

// objective resolves an add_objective action against the catalog.
func (e *Engine) objective(a domain.AddObjective) domain.Objective {
	o, ok := e.objectives[a.Objective]
	if !ok {
		o = domain.Objective{ID: a.Objective, Chapter: e.st.Game.Chapter()}
	}
	switch {
	case a.Title != "":
		o.Title = a.Title
	case o.Title == "":
		o.Title = a.Objective
	}
	o.Completed = false
	return o
}

func (e *Engine) discoverClue(id string) {
	clue, changed := e.st.Investigation.Discover(id)
	if !changed {
		return
	}
	e.st.Game.Notify(domain.NoticeClue, "Clue Discovered", clue.Title)
}

func (e *Engine) unlockContact(contact string) {
	if !e.st.Chat.AddContact(contact) {
		return
	}
	e.st.Game.Notify(domain.NoticeInfo, "New Contact", fmt.Sprintf("%s added to contacts", contact))
}

func (e *Engine) addDownload(a domain.AddFile) {
	fs, err := e.shell.Filesystem().WithFile(domain.LocalMachine, terminal.DownloadDir, domain.File{
		Name:    a.Name,
		Content: a.Content,
	})
	if err != nil {
		e.logger.Warn("download failed", "file", a.Name, "err", err)
		return
	}
	e.shell = terminal.New(fs)
}
