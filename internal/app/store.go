// Package app wires configuration into stores, games and sessions for the
// command line.
package app

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/disconnected/internal/config"
	"github.com/aretw0/disconnected/pkg/adapters/file"
	"github.com/aretw0/disconnected/pkg/adapters/memory"
	"github.com/aretw0/disconnected/pkg/adapters/redis"
	"github.com/aretw0/disconnected/pkg/adapters/sqlite"
	"github.com/aretw0/disconnected/pkg/persistence/middleware"
	"github.com/aretw0/disconnected/pkg/ports"
)

// LockPrefix namespaces session locks in redis.
const LockPrefix = "disconnected:"

// Store is an opened slot store and whatever must be closed with it.
type Store struct {
	ports.SlotStore
	// Locker is set for the redis backend so sessions can be shared.
	Locker ports.DistributedLocker

	closers []io.Closer
}

// Close releases the backend.
func (s *Store) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenStore opens the backend cfg.Store names and seals payloads when a save
// key is configured.
func OpenStore(cfg config.Config, logger *slog.Logger) (*Store, error) {
	out := &Store{}
	switch cfg.Store {
	case config.StoreMemory:
		out.SlotStore = memory.NewStore()
	case config.StoreFile:
		out.SlotStore = file.New(cfg.SaveDir)
	case config.StoreSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		out.SlotStore = db
		out.closers = append(out.closers, db)
	case config.StoreRedis:
		var opts []redis.Option
		if cfg.Redis.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.Redis.TTL))
		}
		rs := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		out.SlotStore = rs
		out.Locker = redis.NewLocker(rs.Client(), LockPrefix)
		out.closers = append(out.closers, rs)
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}

	enc, err := cfg.Encryption()
	if err != nil {
		_ = out.Close()
		return nil, err
	}
	if enc != nil {
		mw, err := middleware.NewEncryptionMiddleware(*enc)
		if err != nil {
			_ = out.Close()
			return nil, err
		}
		out.SlotStore = mw(out.SlotStore)
	}

	logger.Debug("slot store opened", "backend", cfg.Store, "encrypted", enc != nil)
	return out, nil
}
