// Package metrics exposes Prometheus collectors fed by engine lifecycle hooks.
package metrics

import (
	"context"
	"net/http"
	"slices"

	"github.com/aretw0/disconnected/internal/terminal"
	"github.com/aretw0/disconnected/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OtherCommand labels commands outside the known set.
const OtherCommand = "other"

// Collectors groups the game counters.
type Collectors struct {
	Nodes     *prometheus.CounterVec
	Actions   *prometheus.CounterVec
	Commands  *prometheus.CounterVec
	Triggers  prometheus.Counter
	Minigames *prometheus.CounterVec
	Sessions  prometheus.Gauge

	known    []string
	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg. Command labels are
// bounded to known; anything else counts as OtherCommand. A nil known
// accepts every command name.
func New(reg *prometheus.Registry, known []string) (*Collectors, error) {
	c := &Collectors{
		Nodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "disconnected_nodes_processed_total",
			Help: "Story nodes dispatched, by node type.",
		}, []string{"type"}),
		Actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "disconnected_actions_total",
			Help: "Story actions executed, by action type.",
		}, []string{"type"}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "disconnected_commands_total",
			Help: "Terminal commands executed, by command name.",
		}, []string{"command"}),
		Triggers: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "disconnected_triggers_total",
			Help: "Trigger ids handled.",
		}),
		Minigames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "disconnected_minigames_total",
			Help: "Mini-games resolved, by type and result.",
		}, []string{"type", "result"}),
		Sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "disconnected_sessions_active",
			Help: "Live game sessions.",
		}),
		known:    slices.Clone(known),
		gatherer: reg,
	}
	for _, col := range []prometheus.Collector{c.Nodes, c.Actions, c.Commands, c.Triggers, c.Minigames, c.Sessions} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Hooks returns lifecycle hooks that feed the collectors.
func (c *Collectors) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			c.Nodes.WithLabelValues(string(e.NodeType)).Inc()
		},
		OnAction: func(_ context.Context, e *domain.ActionEvent) {
			c.Actions.WithLabelValues(e.Action.Type).Inc()
		},
		OnCommand: func(_ context.Context, e *domain.CommandEvent) {
			c.Commands.WithLabelValues(c.commandLabel(e.Command)).Inc()
		},
		OnTrigger: func(_ context.Context, _ *domain.TriggerEvent) {
			c.Triggers.Inc()
		},
		OnMinigameEnd: func(_ context.Context, e *domain.MinigameEvent) {
			c.Minigames.WithLabelValues(string(e.Type), string(e.Result)).Inc()
		},
	}
}

func (c *Collectors) commandLabel(line string) string {
	name := terminal.CommandName(line)
	if c.known != nil && !slices.Contains(c.known, name) {
		return OtherCommand
	}
	return name
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
