package domain

// LineType is the severity/category of a terminal output line.
type LineType string

const (
	LineInput   LineType = "input"
	LineOutput  LineType = "output"
	LineError   LineType = "error"
	LineSystem  LineType = "system"
	LineSuccess LineType = "success"
	LineWarning LineType = "warning"
	LineASCII   LineType = "ascii"
)

// Line is one categorized line of terminal output.
type Line struct {
	Type    LineType `json:"type"`
	Content string   `json:"content"`
}

// CommandResult is the outcome of executing one input line. The interpreter
// never applies it; the caller does.
type CommandResult struct {
	Lines      []Line             `json:"lines"`
	Actions    []ActionDescriptor `json:"actions,omitempty"`
	NewPath    []string           `json:"newPath,omitempty"`
	NewMachine string             `json:"newMachine,omitempty"`
	// Clear requests the scrollback be emptied.
	Clear bool `json:"clear,omitempty"`
}
