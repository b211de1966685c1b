package content_test

import (
	"testing"
	"testing/fstest"

	"github.com/aretw0/disconnected/internal/content"
	"github.com/aretw0/disconnected/internal/vfs"
	"github.com/aretw0/disconnected/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_LoadsEmbeddedStory(t *testing.T) {
	b, err := content.Default()
	require.NoError(t, err)

	require.Len(t, b.Chapters, domain.MaxChapter)
	for i, ch := range b.Chapters {
		assert.Equal(t, i+1, ch.Number)
		_, ok := ch.Node(ch.StartNode)
		assert.True(t, ok, "chapter %d start node %s", ch.Number, ch.StartNode)
	}

	ch1, ok := b.Chapter(1)
	require.True(t, ok)
	assert.Equal(t, "ch1_intro", ch1.StartNode)

	choice, ok := ch1.Node("ch1_first_choice")
	require.True(t, ok)
	assert.Equal(t, domain.NodeChoice, choice.Type)
	assert.Len(t, choice.Choices, 3)

	after, ok := ch1.Node("ch1_after_exploration")
	require.True(t, ok)
	assert.Contains(t, after.Conditions, domain.Condition(domain.FlagCondition{Flag: "clue_vasquez_email"}))
}

func TestDefault_ActionsDecodeIntoVariants(t *testing.T) {
	b := content.MustDefault()
	ch1, _ := b.Chapter(1)
	intro, _ := ch1.Node("ch1_intro")

	require.NotEmpty(t, intro.Actions)
	assert.Equal(t, domain.SetAmbient{Mood: domain.MoodDark}, intro.Actions[0])
	assert.Contains(t, intro.Actions, domain.Action(domain.UnlockContact{Contact: "prism"}))
}

func TestDefault_Machines(t *testing.T) {
	b := content.MustDefault()
	reg := vfs.NewRegistry(b.Machines...)

	local, ok := reg.Machine(domain.LocalMachine)
	require.True(t, ok)
	assert.Equal(t, "~", local.Root.Name)
	assert.False(t, local.RequiresAccess)

	e, err := reg.Lookup("localhost", []string{"~", "documents", "vasquez_last_email.txt"})
	require.NoError(t, err)
	assert.Equal(t, "clue_vasquez_email", e.(*domain.File).OnRead)

	ssh, err := reg.Lookup("localhost", []string{"~", ".ssh"})
	require.NoError(t, err)
	assert.True(t, ssh.IsHidden())

	dl, ok := reg.Dir("localhost", []string{"~", "downloads"})
	require.True(t, ok, "empty directories stay directories")
	assert.Empty(t, dl.Children)

	gw, ok := reg.Find("nexagen-gw")
	require.True(t, ok)
	assert.True(t, gw.RequiresAccess)
	assert.Equal(t, "/", gw.Root.Name)
}

func TestDefault_Minigames(t *testing.T) {
	b := content.MustDefault()

	for _, id := range []string{
		"crack_nexagen-gateway",
		"crack_nexagen-research",
		"decrypt_prism_channel.enc",
		"decrypt_deployment_plan.enc",
		"scan_marsh_accounts",
		"inject_lethe_core",
	} {
		cfg, ok := b.Minigames[id]
		require.True(t, ok, id)
		assert.NotEmpty(t, cfg.OnSuccess, id)
	}

	pw, ok := b.Minigames["crack_nexagen-gateway"].Data.(domain.PasswordCrackerData)
	require.True(t, ok, "data is decoded into the typed struct")
	assert.Len(t, pw.Answer, pw.Length)

	scan, ok := b.Minigames["scan_marsh_accounts"].Data.(domain.NetworkScannerData)
	require.True(t, ok)
	assert.Equal(t, "ledger", scan.TargetNode)
	assert.Len(t, scan.Edges, 5)
}

func TestDefault_Catalogs(t *testing.T) {
	b := content.MustDefault()

	c, ok := b.Clue("clue_vasquez_email")
	require.True(t, ok)
	assert.Equal(t, domain.ChainMurder, c.Chain)
	assert.Equal(t, domain.ClueEmail, c.Kind)
	assert.NotEmpty(t, b.Connections)

	o, ok := b.Objective("obj_read_prism")
	require.True(t, ok)
	assert.Equal(t, 1, o.Chapter)
}

func TestLoad_Fixture(t *testing.T) {
	fsys := fstest.MapFS{
		"chapters/one.yaml": {Data: []byte(`
number: 1
title: Test
startNode: a
nodes:
- id: a
  type: dialogue
  text: hello
  conditions:
  - type: relationship
    target: zara
    operator: ">"
    value: 5
  actions:
  - type: change_relationship
    target: zara
    value: 10
  nextNode: b
- id: b
  type: transition
`)},
	}

	b, err := content.Load(fsys)
	require.NoError(t, err)
	require.Len(t, b.Chapters, 1)

	a, ok := b.Chapters[0].Node("a")
	require.True(t, ok)
	assert.Equal(t, 1, a.Chapter)
	assert.Equal(t, []domain.Action{domain.ChangeRelationship{Character: "zara", Delta: 10}}, a.Actions)
	assert.Equal(t, []domain.Condition{domain.RelationshipCondition{Character: "zara", Op: domain.OpGT, Value: 5}}, a.Conditions)
	assert.Empty(t, b.Machines)
}

func TestLoad_Errors(t *testing.T) {
	_, err := content.Load(fstest.MapFS{})
	assert.Error(t, err, "no chapters")

	_, err = content.Load(fstest.MapFS{
		"chapters/bad.yaml": {Data: []byte("nodes: [")},
	})
	assert.Error(t, err)

	_, err = content.Load(fstest.MapFS{
		"chapters/ok.yaml": {Data: []byte("number: 1\nstartNode: a\nnodes: [{id: a, type: dialogue}]")},
		"minigames.yaml":   {Data: []byte("minigames: [{id: x, type: pinball}]")},
	})
	assert.ErrorIs(t, err, domain.ErrUnknownMinigame)
}
