package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/disconnected"
	adapter "github.com/aretw0/disconnected/pkg/adapters/http"
	"github.com/aretw0/disconnected/pkg/adapters/memory"
	"github.com/aretw0/disconnected/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, opts ...adapter.Option) *httptest.Server {
	t.Helper()
	store := memory.NewStore()
	m := session.NewManager(func(context.Context) (*disconnected.Game, error) {
		return disconnected.New(disconnected.WithSlotStore(store))
	})
	t.Cleanup(func() { _ = m.Close() })

	srv := httptest.NewServer(adapter.NewHandler(m, opts...))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path string, body any, out any) int {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, srv.URL+path, r)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func create(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	var created adapter.SessionResponse
	require.Equal(t, http.StatusCreated, do(t, srv, http.MethodPost, "/sessions", nil, &created))
	require.NotEmpty(t, created.ID)
	return created.ID
}

func toTerminal(t *testing.T, srv *httptest.Server, id string) {
	t.Helper()
	var step adapter.StepResponse
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/sessions/"+id+"/continue", nil, &step))
	require.True(t, step.OK)
	for _, choice := range []string{"", "ch1_investigate_immediately", "", ""} {
		step = adapter.StepResponse{}
		require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/sessions/"+id+"/advance",
			adapter.AdvanceRequest{Choice: choice}, &step))
		require.True(t, step.OK, "choice %q", choice)
	}
	require.Equal(t, "ch1_terminal_free", step.Status.Node)
}

func TestServer_PlaysThroughTerminal(t *testing.T) {
	srv := newServer(t)
	id := create(t, srv)

	var got adapter.SessionResponse
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/sessions/"+id, nil, &got))
	assert.Equal(t, 1, got.Status.Chapter)

	toTerminal(t, srv, id)

	var out adapter.LinesResponse
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/sessions/"+id+"/command",
		adapter.LineRequest{Line: "cd documents"}, &out))
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/sessions/"+id+"/command",
		adapter.LineRequest{Line: "cat vasquez_last_email.txt"}, &out))
	assert.NotEmpty(t, out.Lines)
	assert.Equal(t, "ch1_after_exploration", out.Status.Node)
}

func TestServer_Complete(t *testing.T) {
	srv := newServer(t)
	id := create(t, srv)
	toTerminal(t, srv, id)

	var out adapter.CompleteResponse
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/sessions/"+id+"/complete",
		adapter.LineRequest{Line: "cd doc"}, &out))
	assert.Contains(t, out.Candidates, "documents")
}

func TestServer_SaveAndLoad(t *testing.T) {
	srv := newServer(t)
	id := create(t, srv)
	toTerminal(t, srv, id)

	var slot map[string]any
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPut, "/sessions/"+id+"/saves/1", nil, &slot))
	assert.Equal(t, "1", slot["id"])
	assert.Empty(t, slot["data"], "payload is not echoed back")

	var loaded adapter.SessionResponse
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodPost, "/sessions/"+id+"/saves/1/load", nil, &loaded))
	assert.Equal(t, 1, loaded.Status.Chapter)

	var e adapter.ErrorResponse
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodPost, "/sessions/"+id+"/saves/missing/load", nil, &e))
	assert.NotEmpty(t, e.Error)
}

func TestServer_Errors(t *testing.T) {
	srv := newServer(t)
	id := create(t, srv)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"Unknown Session", http.MethodGet, "/sessions/nope", nil, http.StatusNotFound},
		{"Unknown Session Command", http.MethodPost, "/sessions/nope/command", adapter.LineRequest{Line: "ls"}, http.StatusNotFound},
		{"No Active Minigame", http.MethodPost, "/sessions/" + id + "/minigame", adapter.LineRequest{Input: "1"}, http.StatusConflict},
		{"Oversized Line", http.MethodPost, "/sessions/" + id + "/command", adapter.LineRequest{Line: strings.Repeat("a", 5000)}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e adapter.ErrorResponse
			assert.Equal(t, tt.want, do(t, srv, tt.method, tt.path, tt.body, &e))
			assert.NotEmpty(t, e.Error)
		})
	}
}

func TestServer_DeleteSession(t *testing.T) {
	srv := newServer(t)
	id := create(t, srv)

	assert.Equal(t, http.StatusNoContent, do(t, srv, http.MethodDelete, "/sessions/"+id, nil, nil))
	assert.Equal(t, http.StatusNotFound, do(t, srv, http.MethodDelete, "/sessions/"+id, nil, &adapter.ErrorResponse{}))
}

func TestServer_Graph(t *testing.T) {
	srv := newServer(t)

	resp, err := srv.Client().Get(srv.URL + "/graph")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(string(body), "graph TD"))
	assert.NotContains(t, string(body), "classDef")

	id := create(t, srv)
	resp, err = srv.Client().Get(srv.URL + "/graph?session=" + id)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ = io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "current;")
}

func TestServer_HealthMetricsAndCORS(t *testing.T) {
	srv := newServer(t, adapter.WithMetrics(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, "disconnected_sessions_active 0\n")
	})))

	var health map[string]string
	require.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/health", nil, &health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, disconnected.Version, health["version"])

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "disconnected_sessions_active")

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/sessions", nil)
	opt, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer opt.Body.Close()
	assert.Equal(t, http.StatusOK, opt.StatusCode)
	assert.Equal(t, "*", opt.Header.Get("Access-Control-Allow-Origin"))
}
