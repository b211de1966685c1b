// Package file provides a SlotStore that keeps one JSON file per save slot.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/disconnected/pkg/adapters/memory"
	"github.com/aretw0/disconnected/pkg/domain"
)

// ErrInvalidID is returned for slot ids that cannot name a file.
var ErrInvalidID = errors.New("invalid slot id")

// Store implements ports.SlotStore using the local filesystem.
// It stores slots as JSON files in a configured directory.
type Store struct {
	BasePath string
}

// DefaultPath returns ~/.disconnected/saves, or a relative
// .disconnected/saves when the home directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".disconnected", "saves")
	}
	return filepath.Join(home, ".disconnected", "saves")
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to DefaultPath.
func New(basePath string) *Store {
	if basePath == "" {
		basePath = DefaultPath()
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(id string) (string, error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, "tmp-") {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return filepath.Join(s.BasePath, id+".json"), nil
}

// Put persists the slot to a JSON file atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Put(ctx context.Context, slot domain.SaveSlot) error {
	destPath, err := s.path(slot.ID)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure save directory: %w", err)
	}

	data, err := json.MarshalIndent(slot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal slot: %w", err)
	}

	// Same directory keeps the rename on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+slot.ID+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing slot file for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to slot file: %w", err)
	}
	return nil
}

// Get reads a slot file.
func (s *Store) Get(ctx context.Context, id string) (domain.SaveSlot, error) {
	filePath, err := s.path(id)
	if err != nil {
		return domain.SaveSlot{}, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.SaveSlot{}, domain.ErrSlotNotFound
		}
		return domain.SaveSlot{}, fmt.Errorf("failed to read slot file: %w", err)
	}

	var slot domain.SaveSlot
	if err := json.Unmarshal(data, &slot); err != nil {
		return domain.SaveSlot{}, fmt.Errorf("%w: %s: %v", domain.ErrCorruptSave, filepath.Base(filePath), err)
	}
	return slot, nil
}

// Delete removes the slot file.
func (s *Store) Delete(ctx context.Context, id string) error {
	filePath, err := s.path(id)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete slot file: %w", err)
	}
	return nil
}

// List reads every slot file, newest first. Unreadable files are skipped.
func (s *Store) List(ctx context.Context) ([]domain.SaveSlot, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.SaveSlot{}, nil
		}
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}

	slots := make([]domain.SaveSlot, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, "tmp-") {
			continue
		}
		slot, err := s.Get(ctx, strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		slots = append(slots, slot)
	}
	memory.SortNewestFirst(slots)
	return slots, nil
}
