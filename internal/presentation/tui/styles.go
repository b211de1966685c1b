package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/disconnected/pkg/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles renders game state as styled terminal text.
type Styles struct {
	lines    map[domain.LineType]lipgloss.Style
	speaker  lipgloss.Style
	notice   lipgloss.Style
	title    lipgloss.Style
	dim      lipgloss.Style
	done     lipgloss.Style
	selected lipgloss.Style
}

// NewStyles binds the styles to w. With color false every style renders
// plain text.
func NewStyles(w io.Writer, color bool) *Styles {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	fg := func(c string) lipgloss.Style { return r.NewStyle().Foreground(lipgloss.Color(c)) }

	return &Styles{
		lines: map[domain.LineType]lipgloss.Style{
			domain.LineInput:   fg("#e2e8f0").Bold(true),
			domain.LineOutput:  fg("#22c55e"),
			domain.LineError:   fg("#ef4444"),
			domain.LineSystem:  fg("#06b6d4"),
			domain.LineSuccess: fg("#4ade80").Bold(true),
			domain.LineWarning: fg("#f59e0b"),
			domain.LineASCII:   fg("#a78bfa"),
		},
		speaker:  fg("#f472b6").Bold(true),
		notice:   r.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#06b6d4")).Padding(0, 1),
		title:    fg("#22c55e").Bold(true).Underline(true),
		dim:      fg("#64748b"),
		done:     fg("#64748b").Strikethrough(true),
		selected: fg("#facc15"),
	}
}

// Line styles one terminal line by its category.
func (s *Styles) Line(l domain.Line) string {
	st, ok := s.lines[l.Type]
	if !ok {
		st = s.lines[domain.LineOutput]
	}
	return st.Render(l.Content)
}

// Lines styles and joins terminal lines.
func (s *Styles) Lines(lines []domain.Line) string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = s.Line(l)
	}
	return strings.Join(out, "\n")
}

// Prompt styles the terminal prompt.
func (s *Styles) Prompt(prompt string) string {
	return s.lines[domain.LineSystem].Render(prompt)
}

// Speaker styles a dialogue speaker name.
func (s *Styles) Speaker(name string) string {
	return s.speaker.Render(strings.ToUpper(name))
}

// Notification boxes a notification.
func (s *Styles) Notification(n domain.Notification) string {
	return s.notice.Render(fmt.Sprintf("%s\n%s", s.title.Render(n.Title), n.Message))
}

// Choices numbers the available choices from 1.
func (s *Styles) Choices(choices []domain.StoryChoice) string {
	var sb strings.Builder
	for i, c := range choices {
		fmt.Fprintf(&sb, "%s %s\n", s.selected.Render(fmt.Sprintf("[%d]", i+1)), c.Text)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Objectives lists visible objectives, completed ones struck through.
func (s *Styles) Objectives(objs []domain.Objective) string {
	var sb strings.Builder
	sb.WriteString(s.title.Render("OBJECTIVES"))
	for _, o := range objs {
		if o.Hidden {
			continue
		}
		if o.Completed {
			fmt.Fprintf(&sb, "\n  [x] %s", s.done.Render(o.Title))
			continue
		}
		fmt.Fprintf(&sb, "\n  [ ] %s", o.Title)
		if o.Description != "" {
			fmt.Fprintf(&sb, "\n      %s", s.dim.Render(o.Description))
		}
	}
	return sb.String()
}

// Board lists discovered clues grouped by chain, then the discovered links.
func (s *Styles) Board(clues []domain.Clue, links []domain.ClueConnection) string {
	titles := make(map[string]string)
	byChain := make(map[domain.ClueChain][]domain.Clue)
	var chains []domain.ClueChain
	for _, c := range clues {
		if !c.Discovered {
			continue
		}
		titles[c.ID] = c.Title
		if _, seen := byChain[c.Chain]; !seen {
			chains = append(chains, c.Chain)
		}
		byChain[c.Chain] = append(byChain[c.Chain], c)
	}

	var sb strings.Builder
	sb.WriteString(s.title.Render("EVIDENCE BOARD"))
	if len(titles) == 0 {
		sb.WriteString("\n  " + s.dim.Render("No evidence yet."))
		return sb.String()
	}
	for _, chain := range chains {
		fmt.Fprintf(&sb, "\n  %s", s.speaker.Render(strings.ToUpper(string(chain))))
		for _, c := range byChain[chain] {
			fmt.Fprintf(&sb, "\n    - %s %s", c.Title, s.dim.Render("("+string(c.Kind)+")"))
		}
	}
	for _, l := range links {
		if !l.Discovered {
			continue
		}
		fmt.Fprintf(&sb, "\n  %s %s %s", titles[l.From], s.selected.Render("<-"+l.Label+"->"), titles[l.To])
	}
	return sb.String()
}
