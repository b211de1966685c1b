package vfs_test

import (
	"testing"

	"github.com/aretw0/disconnected/internal/vfs"
	"github.com/aretw0/disconnected/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() *vfs.Registry {
	home := &domain.Directory{Name: "~", Children: map[string]domain.Entry{
		"a": &domain.Directory{Name: "a", Children: map[string]domain.Entry{
			"b": &domain.Directory{Name: "b", Children: map[string]domain.Entry{}},
			"note.txt": &domain.File{Name: "note.txt", Content: "hello", OnRead: "clue_note"},
		}},
		".secret":  &domain.File{Name: ".secret", Content: "x", Hidden: true},
		"zeta.txt": &domain.File{Name: "zeta.txt", Content: "z"},
		"vault.enc": &domain.File{Name: "vault.enc", Content: "classified", Encrypted: true},
	}}
	remote := &domain.Directory{Name: "/", Children: map[string]domain.Entry{
		"var": &domain.Directory{Name: "var", Children: map[string]domain.Entry{}},
	}}
	return vfs.NewRegistry(
		domain.Machine{ID: "localhost", Hostname: "echo-station", IP: "127.0.0.1", Root: home},
		domain.Machine{ID: "gw", Hostname: "gateway", IP: "192.168.1.1", Root: remote, RequiresAccess: true},
	)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		current []string
		raw     string
		want    []string
	}{
		{"dot dot pops one", []string{"~", "a", "b"}, "..", []string{"~", "a"}},
		{"dot dot stops at root", []string{"~"}, "../..", []string{"~"}},
		{"tilde re-anchors from depth", []string{"~", "a", "b"}, "~", []string{"~"}},
		{"tilde mid-path discards prefix", []string{"~", "a"}, "b/~/x", []string{"~", "x"}},
		{"dot is a no-op", []string{"~", "a"}, ".", []string{"~", "a"}},
		{"relative descend", []string{"~"}, "a/b", []string{"~", "a", "b"}},
		{"trailing slash ignored", []string{"~"}, "a/", []string{"~", "a"}},
		{"leading slash is absolute", []string{"/", "var"}, "/etc", []string{"/", "etc"}},
		{"tilde on remote keeps remote root", []string{"/", "var"}, "~", []string{"/"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, vfs.Resolve(tt.current, tt.raw))
		})
	}
}

func TestResolve_DoesNotMutateInput(t *testing.T) {
	current := []string{"~", "a", "b"}
	_ = vfs.Resolve(current, "../c")
	assert.Equal(t, []string{"~", "a", "b"}, current)
}

func TestLookup(t *testing.T) {
	r := fixture()

	e, err := r.Lookup("localhost", []string{"~", "a", "note.txt"})
	require.NoError(t, err)
	assert.Equal(t, "note.txt", e.EntryName())

	root, err := r.Lookup("localhost", []string{"~"})
	require.NoError(t, err)
	assert.IsType(t, &domain.Directory{}, root)

	_, err = r.Lookup("localhost", []string{"~", "missing"})
	assert.ErrorIs(t, err, vfs.ErrNotFound)

	_, err = r.Lookup("localhost", []string{"~", "zeta.txt", "child"})
	assert.ErrorIs(t, err, vfs.ErrNotFound, "files have no children")

	_, err = r.Lookup("nowhere", []string{"~"})
	assert.ErrorIs(t, err, vfs.ErrUnknownMachine)
}

func TestList(t *testing.T) {
	r := fixture()
	dir, ok := r.Dir("localhost", []string{"~"})
	require.True(t, ok)

	assert.Equal(t, []string{"a", "vault.enc", "zeta.txt"}, vfs.List(dir, false))
	assert.Equal(t, []string{".secret", "a", "vault.enc", "zeta.txt"}, vfs.List(dir, true))
}

func TestRead(t *testing.T) {
	content, trigger, err := vfs.Read(&domain.File{Name: "n", Content: "body", OnRead: "clue_x"})
	require.NoError(t, err)
	assert.Equal(t, "body", content)
	assert.Equal(t, "clue_x", trigger)

	content, trigger, err = vfs.Read(&domain.File{Name: "s", Content: "secret", Encrypted: true, OnRead: "clue_y"})
	assert.ErrorIs(t, err, vfs.ErrEncrypted)
	assert.Empty(t, content)
	assert.Empty(t, trigger, "encrypted reads never fire the trigger")
}

func TestFind(t *testing.T) {
	r := fixture()
	for _, target := range []string{"gw", "gateway", "192.168.1.1"} {
		m, ok := r.Find(target)
		require.True(t, ok, target)
		assert.Equal(t, "gw", m.ID)
	}
	_, ok := r.Find("gate")
	assert.False(t, ok, "no partial matching")
}

func TestFormatPath(t *testing.T) {
	assert.Equal(t, "~", vfs.FormatPath([]string{"~"}))
	assert.Equal(t, "~/a/b", vfs.FormatPath([]string{"~", "a", "b"}))
	assert.Equal(t, "/", vfs.FormatPath([]string{"/"}))
	assert.Equal(t, "/var/log", vfs.FormatPath([]string{"/", "var", "log"}))
}

func TestWithFile(t *testing.T) {
	r := fixture()

	next, err := r.WithFile("localhost", []string{"~", "downloads"}, domain.File{Name: "todo.txt", Content: "buy milk"})
	require.NoError(t, err)

	e, err := next.Lookup("localhost", []string{"~", "downloads", "todo.txt"})
	require.NoError(t, err)
	assert.Equal(t, "buy milk", e.(*domain.File).Content)

	_, err = r.Lookup("localhost", []string{"~", "downloads"})
	assert.ErrorIs(t, err, vfs.ErrNotFound, "original registry is unchanged")

	_, err = next.Lookup("localhost", []string{"~", "a", "note.txt"})
	assert.NoError(t, err, "untouched branches are shared")
}
