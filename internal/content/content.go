// Package content loads the narrative: chapters, clues, objectives, machines
// and mini-game configs. The shipped story is embedded from data/.
package content

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"

	"github.com/aretw0/disconnected/internal/minigame"
	"github.com/aretw0/disconnected/pkg/domain"
	"gopkg.in/yaml.v3"
)

//go:embed data
var embedded embed.FS

// File names inside a content root.
const (
	ChaptersGlob   = "chapters/*.yaml"
	CluesFile      = "clues.yaml"
	ObjectivesFile = "objectives.yaml"
	MachinesFile   = "machines.yaml"
	MinigamesFile  = "minigames.yaml"
)

// Bundle is a fully loaded story.
type Bundle struct {
	Chapters    []domain.Chapter
	Clues       []domain.Clue
	Connections []domain.ClueConnection
	Objectives  []domain.Objective
	Machines    []domain.Machine
	Minigames   map[string]domain.MinigameConfig
}

// Default loads the embedded story.
func Default() (*Bundle, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// MustDefault is Default for callers that cannot recover from a broken
// build.
func MustDefault() *Bundle {
	b, err := Default()
	if err != nil {
		panic(err)
	}
	return b
}

// Load reads a content root. Every file except the chapters is optional.
func Load(fsys fs.FS) (*Bundle, error) {
	b := &Bundle{Minigames: make(map[string]domain.MinigameConfig)}

	files, err := fs.Glob(fsys, ChaptersGlob)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no chapters found under %s", path.Dir(ChaptersGlob))
	}
	for _, f := range files {
		var doc chapterDoc
		if err := decodeFile(fsys, f, &doc); err != nil {
			return nil, err
		}
		b.Chapters = append(b.Chapters, doc.toDomain())
	}
	slices.SortFunc(b.Chapters, func(a, c domain.Chapter) int { return a.Number - c.Number })

	var clues cluesDoc
	if err := decodeOptional(fsys, CluesFile, &clues); err != nil {
		return nil, err
	}
	b.Clues, b.Connections = clues.Clues, clues.Connections

	var objectives objectivesDoc
	if err := decodeOptional(fsys, ObjectivesFile, &objectives); err != nil {
		return nil, err
	}
	b.Objectives = objectives.Objectives

	var machines machinesDoc
	if err := decodeOptional(fsys, MachinesFile, &machines); err != nil {
		return nil, err
	}
	for _, m := range machines.Machines {
		b.Machines = append(b.Machines, m.toDomain())
	}

	var games minigamesDoc
	if err := decodeOptional(fsys, MinigamesFile, &games); err != nil {
		return nil, err
	}
	for _, g := range games.Minigames {
		cfg, err := typedMinigame(g.toDomain())
		if err != nil {
			return nil, fmt.Errorf("minigame %s: %w", g.ID, err)
		}
		b.Minigames[cfg.ID] = cfg
	}

	return b, nil
}

func decodeFile(fsys fs.FS, name string, out any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

func decodeOptional(fsys fs.FS, name string, out any) error {
	if _, err := fs.Stat(fsys, name); err != nil {
		return nil
	}
	return decodeFile(fsys, name, out)
}

// typedMinigame replaces the raw data map with the struct for its type.
func typedMinigame(cfg domain.MinigameConfig) (domain.MinigameConfig, error) {
	var err error
	switch cfg.Type {
	case domain.MinigamePassword:
		cfg.Data, err = minigame.Decode[domain.PasswordCrackerData](cfg.Data)
	case domain.MinigameEncryption:
		cfg.Data, err = minigame.Decode[domain.EncryptionPuzzleData](cfg.Data)
	case domain.MinigameNetwork:
		cfg.Data, err = minigame.Decode[domain.NetworkScannerData](cfg.Data)
	case domain.MinigameInjection:
		cfg.Data, err = minigame.Decode[domain.CodeInjectionData](cfg.Data)
	default:
		err = fmt.Errorf("%w: type %q", domain.ErrUnknownMinigame, cfg.Type)
	}
	return cfg, err
}

// Chapter returns the chapter with the given number.
func (b *Bundle) Chapter(n int) (domain.Chapter, bool) {
	for _, c := range b.Chapters {
		if c.Number == n {
			return c, true
		}
	}
	return domain.Chapter{}, false
}

// Objective returns a catalog objective by id.
func (b *Bundle) Objective(id string) (domain.Objective, bool) {
	for _, o := range b.Objectives {
		if o.ID == id {
			return o, true
		}
	}
	return domain.Objective{}, false
}

// Clue returns a catalog clue by id.
func (b *Bundle) Clue(id string) (domain.Clue, bool) {
	for _, c := range b.Clues {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Clue{}, false
}
