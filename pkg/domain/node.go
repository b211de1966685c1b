package domain

// NodeType selects the presentation surface a node hands control to.
type NodeType string

const (
	// NodeDialogue shows a line of text and waits for the player to advance.
	NodeDialogue NodeType = "dialogue"
	// NodeChoice shows a line of text followed by selectable choices.
	NodeChoice NodeType = "choice"
	// NodeTerminal hands control to the terminal until a trigger resumes the graph.
	NodeTerminal NodeType = "terminal"
	// NodeCutscene switches to the cutscene player.
	NodeCutscene NodeType = "cutscene"
	// NodeMinigame switches to the mini-game surface.
	NodeMinigame NodeType = "minigame"
	// NodeChat switches to the chat panel.
	NodeChat NodeType = "chat"
	// NodeInvestigation switches to the investigation board.
	NodeInvestigation NodeType = "investigation"
	// NodeTransition waits a fixed delay and then auto-advances.
	NodeTransition NodeType = "transition"
)

// Metadata keys with engine semantics.
const (
	// MetaTrigger declares the node as the direct handler of a trigger id.
	MetaTrigger = "trigger"
	// MetaHint is a player-facing hint shown while the node is active.
	MetaHint = "hint"
	// MetaTransitionText is shown by the presentation layer during a transition.
	MetaTransitionText = "transition_text"
)

// AwaitingTriggerPrefix prefixes the flag armed by terminal nodes for their successor.
const AwaitingTriggerPrefix = "awaiting_trigger_"

// AwaitingTriggerFlag returns the flag name armed for nodeID.
func AwaitingTriggerFlag(nodeID string) string {
	return AwaitingTriggerPrefix + nodeID
}

// IsKnown reports whether t is one of the declared node types.
func (t NodeType) IsKnown() bool {
	switch t {
	case NodeDialogue, NodeChoice, NodeTerminal, NodeCutscene, NodeMinigame,
		NodeChat, NodeInvestigation, NodeTransition:
		return true
	}
	return false
}

// View maps a surface node type to the view it activates.
// Dialogue, choice and transition nodes do not switch views.
func (t NodeType) View() (View, bool) {
	switch t {
	case NodeTerminal:
		return ViewTerminal, true
	case NodeCutscene:
		return ViewCutscene, true
	case NodeMinigame:
		return ViewMinigame, true
	case NodeChat:
		return ViewChat, true
	case NodeInvestigation:
		return ViewInvestigation, true
	}
	return "", false
}

// StoryNode is a unit of narrative content. Nodes are authored once and never
// mutated at runtime.
type StoryNode struct {
	ID         string
	Type       NodeType
	Chapter    int
	Speaker    string
	Text       string
	Choices    []StoryChoice
	Actions    []Action
	Conditions []Condition
	NextNode   string
	Metadata   map[string]string
}

// Choice returns the declared choice with the given id.
func (n StoryNode) Choice(id string) (StoryChoice, bool) {
	for _, c := range n.Choices {
		if c.ID == id {
			return c, true
		}
	}
	return StoryChoice{}, false
}

// Targets returns every node id this node can transition into.
func (n StoryNode) Targets() []string {
	var out []string
	if n.NextNode != "" {
		out = append(out, n.NextNode)
	}
	for _, c := range n.Choices {
		if c.NextNode != "" {
			out = append(out, c.NextNode)
		}
	}
	return out
}

// StoryChoice is one selectable option of a choice node.
type StoryChoice struct {
	ID         string
	Text       string
	Conditions []Condition
	Actions    []Action
	NextNode   string
}

// Chapter is a registered node graph.
type Chapter struct {
	Number    int
	Title     string
	ActName   string
	Subtitle  string
	StartNode string
	Nodes     map[string]StoryNode
}

// Node looks up a node by id.
func (c Chapter) Node(id string) (StoryNode, bool) {
	n, ok := c.Nodes[id]
	return n, ok
}
