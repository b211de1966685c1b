// Package terminal implements the simulated shell: command parsing and
// dispatch, the built-in command set, tab completion and the prompt.
//
// Handlers are pure over (args, Session). They never mutate the session; the
// desired path/machine change and any requested actions are returned in a
// domain.CommandResult for the caller to apply.
package terminal

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/disconnected/internal/vfs"
	"github.com/aretw0/disconnected/pkg/domain"
)

// Session is the read-only terminal context a command executes against.
type Session struct {
	Machine string
	Path    []string
	Flags   map[string]bool
	// History holds previously submitted lines, oldest first.
	History []string
}

// Handler executes one command.
type Handler func(args []string, s Session) domain.CommandResult

type section int

const (
	sectionBasic section = iota
	sectionTools
	sectionHidden
)

type command struct {
	name    string
	usage   string
	summary string
	section section
	run     Handler
}

// Interpreter dispatches input lines to the built-in command registry.
type Interpreter struct {
	fs       *vfs.Registry
	commands map[string]command
	ordered  []string
}

// New builds an interpreter over the given filesystem registry.
func New(fs *vfs.Registry) *Interpreter {
	i := &Interpreter{fs: fs, commands: make(map[string]command)}
	i.registerBuiltins()
	return i
}

// Filesystem returns the registry the interpreter reads.
func (i *Interpreter) Filesystem() *vfs.Registry {
	return i.fs
}

func (i *Interpreter) register(c command) {
	if _, exists := i.commands[c.name]; !exists {
		i.ordered = append(i.ordered, c.name)
	}
	i.commands[c.name] = c
}

// Commands returns every registered command name, sorted.
func (i *Interpreter) Commands() []string {
	names := slices.Clone(i.ordered)
	slices.Sort(names)
	return names
}

// Execute parses a raw input line and runs the matching command. Blank input
// yields an empty result; an unknown command yields a single error line.
func (i *Interpreter) Execute(line string, s Session) domain.CommandResult {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return domain.CommandResult{}
	}
	name := strings.ToLower(fields[0])
	cmd, ok := i.commands[name]
	if !ok {
		return errorResult(fmt.Sprintf("Command not found: %s. Type 'help' for available commands.", name))
	}
	if len(s.Path) == 0 {
		s.Path = []string{domain.HomeRoot}
	}
	return cmd.run(fields[1:], s)
}

// CommandName returns the lower-cased command token of a line, or "".
func CommandName(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

// Prompt renders the shell prompt for the session.
func (i *Interpreter) Prompt(s Session) string {
	user := "guest"
	if s.Machine == domain.LocalMachine {
		user = "echo"
	}
	host := s.Machine
	if m, ok := i.fs.Machine(s.Machine); ok {
		host = m.Hostname
	}
	return fmt.Sprintf("%s@%s:%s$ ", user, host, vfs.FormatPath(s.Path))
}

func errorResult(msg string) domain.CommandResult {
	return domain.CommandResult{Lines: []domain.Line{{Type: domain.LineError, Content: msg}}}
}

func warningResult(msg string) domain.CommandResult {
	return domain.CommandResult{Lines: []domain.Line{{Type: domain.LineWarning, Content: msg}}}
}

func lines(t domain.LineType, text string) []domain.Line {
	parts := strings.Split(text, "\n")
	out := make([]domain.Line, 0, len(parts))
	for _, p := range parts {
		out = append(out, domain.Line{Type: t, Content: p})
	}
	return out
}

func out(content string) domain.Line     { return domain.Line{Type: domain.LineOutput, Content: content} }
func system(content string) domain.Line  { return domain.Line{Type: domain.LineSystem, Content: content} }
func success(content string) domain.Line { return domain.Line{Type: domain.LineSuccess, Content: content} }
func warning(content string) domain.Line { return domain.Line{Type: domain.LineWarning, Content: content} }
