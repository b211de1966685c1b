package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/disconnected/pkg/domain"
)

// Overlay contains playthrough state to visualize on the graph.
type Overlay struct {
	VisitedNodes []string
	CurrentNode  string
	// Choices maps choice node ids to the choice taken. Taken edges are drawn thick.
	Choices map[string]string
}

// NewOverlay builds an overlay from recorded choices and the current node.
// Every node a choice was made on counts as visited.
func NewOverlay(choices map[string]string, current string) *Overlay {
	o := &Overlay{CurrentNode: current, Choices: choices}
	for id := range choices {
		o.VisitedNodes = append(o.VisitedNodes, id)
	}
	slices.Sort(o.VisitedNodes)
	return o
}

// GenerateMermaid produces a Mermaid flowchart with one subgraph per chapter.
// Node shapes follow the node type:
// - Start: ((Circle))
// - Choice: {Rhombus}
// - Terminal: [[Subroutine]]
// - Transition: ([Stadium])
// - Minigame: {{Hexagon}}
// - Default: [Rectangle]
// Edges into another chapter are dotted. Metadata triggers get their own
// flag-shaped entry node.
func GenerateMermaid(chapters []domain.Chapter, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	chapterOf := make(map[string]int)
	for _, ch := range chapters {
		for id := range ch.Nodes {
			chapterOf[id] = ch.Number
		}
	}

	for _, ch := range chapters {
		title := fmt.Sprintf("Chapter %d", ch.Number)
		if ch.Title != "" {
			title += ": " + ch.Title
		}
		fmt.Fprintf(&sb, "    subgraph ch%d[\"%s\"]\n", ch.Number, escapeLabel(title))

		ids := make([]string, 0, len(ch.Nodes))
		for id := range ch.Nodes {
			ids = append(ids, id)
		}
		slices.Sort(ids)

		for _, id := range ids {
			node := ch.Nodes[id]
			safeID := sanitizeMermaidID(id)
			opener, closer := shape(node, id == ch.StartNode)
			label := id
			if e, ok := ending(node); ok {
				label = fmt.Sprintf("%s <br/> ending: %s", id, e)
			}
			fmt.Fprintf(&sb, "        %s%s\"%s\"%s\n", safeID, opener, label, closer)

			if t := node.Metadata[domain.MetaTrigger]; t != "" {
				trig := "trigger_" + sanitizeMermaidID(t)
				fmt.Fprintf(&sb, "        %s>\"⚡ %s\"]\n", trig, escapeLabel(t))
				fmt.Fprintf(&sb, "        %s -.-> %s\n", trig, safeID)
			}
		}
		sb.WriteString("    end\n")
	}

	// Edges are drawn outside the subgraphs so cross-chapter links render.
	for _, ch := range chapters {
		ids := make([]string, 0, len(ch.Nodes))
		for id := range ch.Nodes {
			ids = append(ids, id)
		}
		slices.Sort(ids)

		for _, id := range ids {
			node := ch.Nodes[id]
			safeID := sanitizeMermaidID(id)
			if node.NextNode != "" {
				jump := chapterOf[node.NextNode] != ch.Number
				arrow := "-->"
				switch {
				case node.Type == domain.NodeTerminal:
					arrow = "-. \"⚡ trigger\" .->"
				case jump:
					arrow = "-.->"
				}
				fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, sanitizeMermaidID(node.NextNode))
			}
			for _, c := range node.Choices {
				if c.NextNode == "" {
					continue
				}
				text := escapeLabel(c.Text)
				if text == "" {
					text = c.ID
				}
				arrow := fmt.Sprintf("-- \"%s\" -->", text)
				if overlay != nil && overlay.Choices[id] == c.ID {
					arrow = fmt.Sprintf("== \"%s\" ==>", text)
				}
				fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, sanitizeMermaidID(c.NextNode))
			}
		}
	}

	// Apply Overlay Styles
	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}

		if overlay.CurrentNode != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode))
		}
	}

	return sb.String()
}

func shape(node domain.StoryNode, start bool) (string, string) {
	switch {
	case start:
		return "((", "))"
	case node.Type == domain.NodeChoice:
		return "{", "}"
	case node.Type == domain.NodeTerminal:
		return "[[", "]]"
	case node.Type == domain.NodeTransition:
		return "([", "])"
	case node.Type == domain.NodeMinigame:
		return "{{", "}}"
	}
	return "[", "]"
}

func ending(node domain.StoryNode) (domain.Ending, bool) {
	for _, a := range node.Actions {
		if e, ok := a.(domain.TriggerEnding); ok {
			return e.Ending, true
		}
	}
	return "", false
}

// escapeLabel swaps double quotes for single ones so labels stay quoted.
func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "end" {
		// reserved by Mermaid
		s = "end_"
	}
	return s
}
