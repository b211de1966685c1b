// Package validator lints narrative content before it ships: broken node
// references, dead ends, orphaned nodes and trigger ids nothing listens to.
package validator

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/disconnected/internal/content"
	"github.com/aretw0/disconnected/internal/runtime"
	"github.com/aretw0/disconnected/pkg/domain"
)

// Severity grades an Issue. Only errors fail Validate.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is a single finding.
type Issue struct {
	Severity Severity
	Chapter  int
	Node     string
	Message  string
}

func (i Issue) String() string {
	var loc string
	switch {
	case i.Node != "":
		loc = fmt.Sprintf("ch%d/%s: ", i.Chapter, i.Node)
	case i.Chapter > 0:
		loc = fmt.Sprintf("ch%d: ", i.Chapter)
	}
	return fmt.Sprintf("[%s] %s%s", i.Severity, loc, i.Message)
}

// Report collects the findings of a Check.
type Report struct {
	Issues []Issue
}

// Errors returns the error-severity issues.
func (r Report) Errors() []Issue { return r.filter(SeverityError) }

// Warnings returns the warning-severity issues.
func (r Report) Warnings() []Issue { return r.filter(SeverityWarning) }

func (r Report) filter(s Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == s {
			out = append(out, i)
		}
	}
	return out
}

// Err joins the error-severity issues, or returns nil when there are none.
func (r Report) Err() error {
	var errs []error
	for _, i := range r.Errors() {
		errs = append(errs, errors.New(i.String()))
	}
	return errors.Join(errs...)
}

// Validate checks b and returns the joined error-severity issues.
func Validate(b *content.Bundle) error {
	return Check(b).Err()
}

// Check lints every chapter, machine and mini-game of b.
func Check(b *content.Bundle) Report {
	c := &checker{
		bundle:   b,
		index:    make(map[string]int),
		consumed: make(map[string]bool),
		clues:    make(map[string]bool),
	}
	for _, ch := range b.Chapters {
		for id := range ch.Nodes {
			c.index[id] = ch.Number
		}
	}
	for _, cl := range b.Clues {
		c.clues[cl.ID] = true
		c.consumed[cl.ID] = true
	}

	c.crawl()
	c.inspectNodes()
	c.inspectProducers()
	return Report{Issues: c.issues}
}

type checker struct {
	bundle *content.Bundle
	// index maps node id to the chapter that declares it.
	index    map[string]int
	consumed map[string]bool
	clues    map[string]bool
	issues   []Issue
}

func (c *checker) add(sev Severity, chapter int, node, format string, args ...any) {
	c.issues = append(c.issues, Issue{
		Severity: sev,
		Chapter:  chapter,
		Node:     node,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (c *checker) node(id string) (domain.StoryNode, bool) {
	n, ok := c.index[id]
	if !ok {
		return domain.StoryNode{}, false
	}
	ch, _ := c.bundle.Chapter(n)
	return ch.Node(id)
}

// crawl walks the graph breadth-first from every entry point: chapter start
// nodes and metadata trigger handlers. Nodes never visited are orphans.
func (c *checker) crawl() {
	visited := make(map[string]bool)
	var queue []string

	for _, ch := range c.bundle.Chapters {
		if ch.StartNode == "" {
			c.add(SeverityError, ch.Number, "", "chapter has no start node")
		} else if _, ok := ch.Node(ch.StartNode); !ok {
			c.add(SeverityError, ch.Number, "", "start node %q not found", ch.StartNode)
		} else {
			queue = append(queue, ch.StartNode)
		}
		for _, id := range sortedIDs(ch) {
			if ch.Nodes[id].Metadata[domain.MetaTrigger] != "" {
				queue = append(queue, id)
			}
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true

		n, _ := c.node(id)
		for _, target := range n.Targets() {
			if _, ok := c.index[target]; !ok {
				c.add(SeverityError, c.index[id], id, "references missing node %q", target)
				continue
			}
			if !visited[target] {
				queue = append(queue, target)
			}
		}
	}

	for _, ch := range c.bundle.Chapters {
		for _, id := range sortedIDs(ch) {
			if !visited[id] {
				c.add(SeverityWarning, ch.Number, id, "orphaned node: unreachable from any start node or trigger")
			}
		}
	}
}

func (c *checker) inspectNodes() {
	for _, ch := range c.bundle.Chapters {
		for _, id := range sortedIDs(ch) {
			n := ch.Nodes[id]
			if !n.Type.IsKnown() {
				c.add(SeverityError, ch.Number, id, "unknown node type %q", n.Type)
			}
			if t := n.Metadata[domain.MetaTrigger]; t != "" {
				c.consumed[t] = true
			}
			c.consumed[id] = true

			c.conditions(ch.Number, id, n.Conditions)
			c.actions(ch.Number, id, n.Actions)
			for _, choice := range n.Choices {
				c.conditions(ch.Number, id, choice.Conditions)
				c.actions(ch.Number, id, choice.Actions)
			}

			if deadEnd(n) {
				c.add(SeverityError, ch.Number, id, "dead end: %s node has no exit and triggers no ending", n.Type)
			}
		}
	}
}

// deadEnd reports nodes that stop the story with nothing to resume them.
// Terminal and surface nodes wait on triggers and are exempt.
func deadEnd(n domain.StoryNode) bool {
	switch n.Type {
	case domain.NodeDialogue, domain.NodeChoice, domain.NodeTransition:
	default:
		return false
	}
	if len(n.Targets()) > 0 {
		return false
	}
	return !slices.ContainsFunc(n.Actions, func(a domain.Action) bool {
		_, ok := a.(domain.TriggerEnding)
		return ok
	})
}

func (c *checker) conditions(chapter int, node string, conds []domain.Condition) {
	for _, cond := range conds {
		switch v := cond.(type) {
		case domain.FlagCondition:
			c.consumed[v.Flag] = true
		case domain.NotFlagCondition:
			c.consumed[v.Flag] = true
		case domain.ClueCondition:
			c.consumed[v.Clue] = true
			c.clueRef(chapter, node, v.Clue)
		case domain.UnknownCondition:
			c.add(SeverityError, chapter, node, "unknown condition type %q", v.Raw.Type)
		}
	}
}

func (c *checker) actions(chapter int, node string, actions []domain.Action) {
	for _, a := range actions {
		switch v := a.(type) {
		case domain.AddClue:
			c.clueRef(chapter, node, v.Clue)
		case domain.TriggerMinigame:
			if _, ok := c.bundle.Minigames[v.Minigame]; !ok {
				c.add(SeverityError, chapter, node, "mini-game %q has no config", v.Minigame)
			}
		case domain.UnknownAction:
			c.add(SeverityError, chapter, node, "unknown action type %q", v.Raw.Type)
		}
	}
}

func (c *checker) clueRef(chapter int, node, clue string) {
	if len(c.clues) > 0 && !c.clues[clue] {
		c.add(SeverityWarning, chapter, node, "clue %q is not in the catalog", clue)
	}
}

// inspectProducers flags trigger ids fired by files and mini-games that
// nothing in the story consumes.
func (c *checker) inspectProducers() {
	for _, m := range c.bundle.Machines {
		walkFiles(m.Root, "", func(p string, f *domain.File) {
			where := m.ID + ":" + p
			if f.OnRead != "" && !c.isConsumed(f.OnRead) {
				c.add(SeverityWarning, 0, "", "%s: onRead trigger %q has no consumer", where, f.OnRead)
			}
			if f.Encrypted {
				if _, ok := c.bundle.Minigames["decrypt_"+f.Name]; !ok {
					c.add(SeverityWarning, 0, "", "%s: encrypted file has no decrypt_%s config", where, f.Name)
				}
			}
		})
	}

	ids := make([]string, 0, len(c.bundle.Minigames))
	for id := range c.bundle.Minigames {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		cfg := c.bundle.Minigames[id]
		for _, t := range []string{cfg.OnSuccess, cfg.OnFailure} {
			if t != "" && !c.isConsumed(t) {
				c.add(SeverityWarning, 0, "", "mini-game %s: trigger %q has no consumer", id, t)
			}
		}
	}
}

func (c *checker) isConsumed(id string) bool {
	return c.consumed[id] || strings.HasPrefix(id, runtime.ContactUnlockPrefix)
}

func walkFiles(d *domain.Directory, prefix string, fn func(path string, f *domain.File)) {
	if d == nil {
		return
	}
	names := make([]string, 0, len(d.Children))
	for name := range d.Children {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		p := prefix + "/" + name
		switch e := d.Children[name].(type) {
		case *domain.File:
			fn(p, e)
		case *domain.Directory:
			walkFiles(e, p, fn)
		}
	}
}

func sortedIDs(ch domain.Chapter) []string {
	ids := make([]string, 0, len(ch.Nodes))
	for id := range ch.Nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
