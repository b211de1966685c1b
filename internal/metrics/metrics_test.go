package metrics_test

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/disconnected/internal/metrics"
	"github.com/aretw0/disconnected/internal/runtime"
	"github.com/aretw0/disconnected/internal/vfs"
	"github.com/aretw0/disconnected/pkg/domain"
	"github.com/aretw0/disconnected/pkg/state"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectors_FedByEngineHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := metrics.New(reg, []string{"ls", "cat"})
	require.NoError(t, err)

	fs := vfs.NewRegistry(domain.Machine{
		ID:   domain.LocalMachine,
		Root: &domain.Directory{Name: "~", Children: map[string]domain.Entry{}},
	})
	e := runtime.New(state.NewContext(),
		runtime.WithClock(clockwork.NewFakeClock()),
		runtime.WithFilesystem(fs),
		runtime.WithLifecycleHooks(c.Hooks()),
	)
	t.Cleanup(func() { _ = e.Close() })
	e.RegisterChapter(domain.Chapter{Number: 1, StartNode: "a", Nodes: map[string]domain.StoryNode{
		"a": {ID: "a", Chapter: 1, Type: domain.NodeTerminal, Actions: []domain.Action{domain.SetFlag{Flag: "x", Value: true}}},
	}})
	ctx := context.Background()

	e.StartChapter(ctx, 1)
	e.Execute(ctx, "ls")
	e.Execute(ctx, "LS -a")
	e.Execute(ctx, "rm -rf /")
	e.HandleTrigger(ctx, "door")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Nodes.WithLabelValues("terminal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Actions.WithLabelValues("set_flag")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.Commands.WithLabelValues("ls")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Commands.WithLabelValues(metrics.OtherCommand)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Triggers))
}

func TestCollectors_MinigameAndHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := metrics.New(reg, nil)
	require.NoError(t, err)

	c.Hooks().OnMinigameEnd(context.Background(), &domain.MinigameEvent{
		Type:   domain.MinigamePassword,
		Result: domain.ResultSuccess,
	})
	c.Sessions.Inc()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	assert.Contains(t, string(body), `disconnected_minigames_total{result="success",type="password-cracker"} 1`)
	assert.Contains(t, string(body), "disconnected_sessions_active 1")
}

func TestNew_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.New(reg, nil)
	require.NoError(t, err)
	_, err = metrics.New(reg, nil)
	assert.Error(t, err)
}
