package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
)

// DefaultWordWrap is the column dialogue wraps at.
const DefaultWordWrap = 80

// NewRenderer returns a function that renders markdown using glamour.
// Without color it falls back to the plain notty style.
func NewRenderer(color bool) func(string) (string, error) {
	style := glamour.WithAutoStyle() // Automatically detect light/dark background
	if !color {
		style = glamour.WithStandardStyle("notty")
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(DefaultWordWrap))
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// DialogueMarkdown formats a dialogue line for the renderer.
func DialogueMarkdown(speaker, text string) string {
	if speaker == "" {
		return text
	}
	return fmt.Sprintf("**%s**\n\n%s", strings.ToUpper(speaker), text)
}
