package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/disconnected"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "missing.env")))
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "disconnected version "+disconnected.Version+"\n", out)
}

func TestValidateCommand(t *testing.T) {
	out, err := run(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Story is valid!")
}

func TestGraphCommand(t *testing.T) {
	out, err := run(t, "graph", "--chapter", "1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "graph TD"))
	assert.Contains(t, out, `subgraph ch1["Chapter 1`)
	assert.NotContains(t, out, `subgraph ch2`)

	_, err = run(t, "graph", "--chapter", "9")
	assert.Error(t, err)
}

func TestSavesCommands(t *testing.T) {
	t.Setenv("DISCONNECTED_SAVE_DIR", t.TempDir())
	t.Setenv("DISCONNECTED_SQLITE_PATH", filepath.Join(t.TempDir(), "saves.db"))

	out, err := run(t, "saves", "list", "--store", "file")
	require.NoError(t, err)
	assert.Contains(t, out, "No saves found.")

	out, err = run(t, "saves", "delete", "1", "--store", "file")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed save '1'")
}
