package app

import (
	"context"
	"log/slog"
	"slices"

	"github.com/aretw0/disconnected"
	"github.com/aretw0/disconnected/internal/config"
	"github.com/aretw0/disconnected/internal/metrics"
	"github.com/aretw0/disconnected/internal/terminal"
	"github.com/aretw0/disconnected/internal/vfs"
	"github.com/aretw0/disconnected/pkg/domain"
	"github.com/aretw0/disconnected/pkg/ports"
	"github.com/aretw0/disconnected/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
)

// GameOptions turns configuration into game options.
func GameOptions(cfg config.Config, store ports.SlotStore, logger *slog.Logger) []disconnected.Option {
	return []disconnected.Option{
		disconnected.WithLogger(logger),
		disconnected.WithSlotStore(store),
		disconnected.WithTextSpeed(cfg.TextSpeed),
		disconnected.WithLifecycleHooks(DebugHooks(logger)),
	}
}

// NewMetrics registers the game collectors on a fresh registry. Command
// labels are bounded to the shell's builtins.
func NewMetrics() (*metrics.Collectors, error) {
	known := terminal.New(vfs.NewRegistry()).Commands()
	return metrics.New(prometheus.NewRegistry(), known)
}

// NewSessions builds a session manager whose games share store. The active
// session gauge of m is kept current when m is set.
func NewSessions(store *Store, opts []disconnected.Option, m *metrics.Collectors, logger *slog.Logger) *session.Manager {
	if m != nil {
		opts = append(slices.Clip(opts), disconnected.WithLifecycleHooks(m.Hooks()))
	}
	sopts := []session.Option{session.WithLogger(logger)}
	if store.Locker != nil {
		sopts = append(sopts, session.WithLocker(store.Locker))
	}
	if m != nil {
		sopts = append(sopts, session.WithOnChange(func(active int) {
			m.Sessions.Set(float64(active))
		}))
	}
	return session.NewManager(func(context.Context) (*disconnected.Game, error) {
		return disconnected.New(opts...)
	}, sopts...)
}

// DebugHooks logs story progress at debug level.
func DebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			logger.Debug("enter node", "chapter", e.Chapter, "node_id", e.NodeID, "type", e.NodeType)
		},
		OnCommand: func(_ context.Context, e *domain.CommandEvent) {
			logger.Debug("command", "command", e.Command)
		},
	}
}
