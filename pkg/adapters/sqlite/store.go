// Package sqlite provides a SQLite-backed SlotStore.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/disconnected/pkg/adapters/sqlite/migrations"
	"github.com/aretw0/disconnected/pkg/domain"
	_ "modernc.org/sqlite"
)

// Store persists save slots in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite slot store and applies embedded migrations.
// The parent directory is created when missing.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0755); err != nil {
		return nil, fmt.Errorf("ensure sqlite directory: %w", err)
	}

	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Put inserts or replaces a slot.
func (s *Store) Put(ctx context.Context, slot domain.SaveSlot) error {
	if strings.TrimSpace(slot.ID) == "" {
		return fmt.Errorf("slot id is required")
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO save_slots (id, name, chapter, timestamp, play_time, data)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   chapter = excluded.chapter,
		   timestamp = excluded.timestamp,
		   play_time = excluded.play_time,
		   data = excluded.data`,
		slot.ID, slot.Name, slot.Chapter, slot.Timestamp, slot.PlayTime, slot.Data,
	)
	if err != nil {
		return fmt.Errorf("put save slot: %w", err)
	}
	return nil
}

// Get returns one slot by id.
func (s *Store) Get(ctx context.Context, id string) (domain.SaveSlot, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, name, chapter, timestamp, play_time, data FROM save_slots WHERE id = ?`, id)

	slot, err := scanSlot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SaveSlot{}, domain.ErrSlotNotFound
	}
	if err != nil {
		return domain.SaveSlot{}, fmt.Errorf("get save slot: %w", err)
	}
	return slot, nil
}

// Delete removes a slot.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM save_slots WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete save slot: %w", err)
	}
	return nil
}

// List returns every slot, newest first.
func (s *Store) List(ctx context.Context) ([]domain.SaveSlot, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, name, chapter, timestamp, play_time, data FROM save_slots ORDER BY timestamp DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list save slots: %w", err)
	}
	defer rows.Close()

	slots := []domain.SaveSlot{}
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan save slot: %w", err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate save slots: %w", err)
	}
	return slots, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSlot(row scanner) (domain.SaveSlot, error) {
	var slot domain.SaveSlot
	err := row.Scan(&slot.ID, &slot.Name, &slot.Chapter, &slot.Timestamp, &slot.PlayTime, &slot.Data)
	return slot, err
}
