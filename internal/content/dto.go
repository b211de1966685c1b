package content

import (
	"time"

	"github.com/aretw0/disconnected/pkg/domain"
)

// The types below mirror the YAML files under data/. They are converted into
// domain types by the loader and never escape this package.

type chapterDoc struct {
	Number    int       `yaml:"number"`
	Title     string    `yaml:"title"`
	ActName   string    `yaml:"actName"`
	Subtitle  string    `yaml:"subtitle"`
	StartNode string    `yaml:"startNode"`
	Nodes     []nodeDoc `yaml:"nodes"`
}

type nodeDoc struct {
	ID         string                       `yaml:"id"`
	Type       string                       `yaml:"type"`
	Speaker    string                       `yaml:"speaker"`
	Text       string                       `yaml:"text"`
	Choices    []choiceDoc                  `yaml:"choices"`
	Actions    []domain.ActionDescriptor    `yaml:"actions"`
	Conditions []domain.ConditionDescriptor `yaml:"conditions"`
	NextNode   string                       `yaml:"nextNode"`
	Metadata   map[string]string            `yaml:"metadata"`
}

type choiceDoc struct {
	ID         string                       `yaml:"id"`
	Text       string                       `yaml:"text"`
	Conditions []domain.ConditionDescriptor `yaml:"conditions"`
	Actions    []domain.ActionDescriptor    `yaml:"actions"`
	NextNode   string                       `yaml:"nextNode"`
}

type cluesDoc struct {
	Clues       []domain.Clue           `yaml:"clues"`
	Connections []domain.ClueConnection `yaml:"connections"`
}

type objectivesDoc struct {
	Objectives []domain.Objective `yaml:"objectives"`
}

type machinesDoc struct {
	Machines []machineDoc `yaml:"machines"`
}

type machineDoc struct {
	ID             string   `yaml:"id"`
	Hostname       string   `yaml:"hostname"`
	IP             string   `yaml:"ip"`
	RequiresAccess bool     `yaml:"requiresAccess"`
	AccessGranted  bool     `yaml:"accessGranted"`
	MOTD           string   `yaml:"motd"`
	Filesystem     entryDoc `yaml:"filesystem"`
}

// entryDoc is a file unless Children is present, even when empty.
type entryDoc struct {
	Name      string      `yaml:"name"`
	Hidden    bool        `yaml:"hidden"`
	Children  *[]entryDoc `yaml:"children"`
	Content   string      `yaml:"content"`
	Encrypted bool        `yaml:"encrypted"`
	OnRead    string      `yaml:"onRead"`
}

type minigamesDoc struct {
	Minigames []minigameDoc `yaml:"minigames"`
}

type minigameDoc struct {
	ID             string `yaml:"id"`
	Type           string `yaml:"type"`
	Title          string `yaml:"title"`
	Description    string `yaml:"description"`
	Difficulty     int    `yaml:"difficulty"`
	TimeLimit      int    `yaml:"timeLimit"`
	DetectionLimit int    `yaml:"detectionLimit"`
	OnSuccess      string `yaml:"onSuccess"`
	OnFailure      string `yaml:"onFailure"`
	Data           any    `yaml:"data"`
}

func (d chapterDoc) toDomain() domain.Chapter {
	ch := domain.Chapter{
		Number:    d.Number,
		Title:     d.Title,
		ActName:   d.ActName,
		Subtitle:  d.Subtitle,
		StartNode: d.StartNode,
		Nodes:     make(map[string]domain.StoryNode, len(d.Nodes)),
	}
	for _, n := range d.Nodes {
		node := domain.StoryNode{
			ID:         n.ID,
			Type:       domain.NodeType(n.Type),
			Chapter:    d.Number,
			Speaker:    n.Speaker,
			Text:       n.Text,
			Actions:    domain.ParseActions(n.Actions),
			Conditions: domain.ParseConditions(n.Conditions),
			NextNode:   n.NextNode,
			Metadata:   n.Metadata,
		}
		for _, c := range n.Choices {
			node.Choices = append(node.Choices, domain.StoryChoice{
				ID:         c.ID,
				Text:       c.Text,
				Conditions: domain.ParseConditions(c.Conditions),
				Actions:    domain.ParseActions(c.Actions),
				NextNode:   c.NextNode,
			})
		}
		ch.Nodes[n.ID] = node
	}
	return ch
}

func (d machineDoc) toDomain() domain.Machine {
	root, _ := d.Filesystem.toDomain().(*domain.Directory)
	if root == nil {
		root = &domain.Directory{Name: d.Filesystem.Name, Children: map[string]domain.Entry{}}
	}
	return domain.Machine{
		ID:             d.ID,
		Hostname:       d.Hostname,
		IP:             d.IP,
		Root:           root,
		RequiresAccess: d.RequiresAccess,
		AccessGranted:  d.AccessGranted,
		MOTD:           d.MOTD,
	}
}

func (e entryDoc) toDomain() domain.Entry {
	if e.Children == nil {
		return &domain.File{
			Name:      e.Name,
			Content:   e.Content,
			Hidden:    e.Hidden,
			Encrypted: e.Encrypted,
			OnRead:    e.OnRead,
		}
	}
	dir := &domain.Directory{Name: e.Name, Hidden: e.Hidden, Children: make(map[string]domain.Entry, len(*e.Children))}
	for _, c := range *e.Children {
		dir.Children[c.Name] = c.toDomain()
	}
	return dir
}

func (d minigameDoc) toDomain() domain.MinigameConfig {
	return domain.MinigameConfig{
		ID:             d.ID,
		Type:           domain.MinigameType(d.Type),
		Title:          d.Title,
		Description:    d.Description,
		Difficulty:     d.Difficulty,
		TimeLimit:      time.Duration(d.TimeLimit) * time.Second,
		DetectionLimit: d.DetectionLimit,
		Data:           d.Data,
		OnSuccess:      d.OnSuccess,
		OnFailure:      d.OnFailure,
	}
}
