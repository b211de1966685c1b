// Package vfs serves the simulated machines and their immutable directory
// trees to the terminal.
package vfs

import (
	"errors"
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/disconnected/pkg/domain"
)

var (
	// ErrNotFound is returned when a path does not resolve to an entry.
	ErrNotFound = errors.New("no such file or directory")
	// ErrUnknownMachine is returned for machine ids that are not registered.
	ErrUnknownMachine = errors.New("unknown machine")
	// ErrEncrypted is returned when reading an encrypted file.
	ErrEncrypted = errors.New("file requires decryption")
)

// Registry holds the known machines in registration order. It is immutable;
// WithFile returns a modified copy.
type Registry struct {
	machines map[string]domain.Machine
	order    []string
}

// NewRegistry registers machines in the given order.
func NewRegistry(machines ...domain.Machine) *Registry {
	r := &Registry{machines: make(map[string]domain.Machine, len(machines))}
	for _, m := range machines {
		if _, dup := r.machines[m.ID]; !dup {
			r.order = append(r.order, m.ID)
		}
		r.machines[m.ID] = m
	}
	return r
}

// Machine returns a registered machine by id.
func (r *Registry) Machine(id string) (domain.Machine, bool) {
	m, ok := r.machines[id]
	return m, ok
}

// Machines returns all machines in registration order.
func (r *Registry) Machines() []domain.Machine {
	out := make([]domain.Machine, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.machines[id])
	}
	return out
}

// Find resolves a target by hostname, IP or id. The first machine in
// registration order with an exact match wins.
func (r *Registry) Find(target string) (domain.Machine, bool) {
	for _, id := range r.order {
		m := r.machines[id]
		if m.Hostname == target || m.IP == target || m.ID == target {
			return m, true
		}
	}
	return domain.Machine{}, false
}

// Resolve applies a slash-separated path expression to the current path.
//
// The first element of current is the root marker. Empty segments are
// ignored, "." is a no-op, ".." pops unless only the root remains, and "~" or
// a leading "/" discard everything resolved so far and re-anchor at the root.
func Resolve(current []string, raw string) []string {
	root := domain.HomeRoot
	if len(current) > 0 {
		root = current[0]
	}
	result := slices.Clone(current)
	if len(result) == 0 {
		result = []string{root}
	}
	if strings.HasPrefix(raw, "/") {
		result = []string{root}
	}

	for _, part := range strings.Split(raw, "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			if len(result) > 1 {
				result = result[:len(result)-1]
			}
		case domain.HomeRoot:
			result = []string{root}
		default:
			result = append(result, part)
		}
	}
	return result
}

// Lookup walks the machine's tree along path. path[0] is the root marker.
func (r *Registry) Lookup(machineID string, path []string) (domain.Entry, error) {
	m, ok := r.machines[machineID]
	if !ok || m.Root == nil {
		return nil, ErrUnknownMachine
	}
	var cur domain.Entry = m.Root
	for i := 1; i < len(path); i++ {
		dir, ok := cur.(*domain.Directory)
		if !ok {
			return nil, ErrNotFound
		}
		next, ok := dir.Children[path[i]]
		if !ok {
			return nil, ErrNotFound
		}
		cur = next
	}
	return cur, nil
}

// Dir is Lookup restricted to directories.
func (r *Registry) Dir(machineID string, path []string) (*domain.Directory, bool) {
	e, err := r.Lookup(machineID, path)
	if err != nil {
		return nil, false
	}
	d, ok := e.(*domain.Directory)
	return d, ok
}

// List returns child names sorted lexicographically, without hidden entries
// unless showHidden is set.
func List(dir *domain.Directory, showHidden bool) []string {
	names := make([]string, 0, len(dir.Children))
	for name, child := range dir.Children {
		if child.IsHidden() && !showHidden {
			continue
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Read returns a file's content and its onRead trigger id. Encrypted files
// never yield content.
func Read(f *domain.File) (content, trigger string, err error) {
	if f.Encrypted {
		return "", "", ErrEncrypted
	}
	return f.Content, f.OnRead, nil
}

// FormatPath renders a path for display: "~/a/b", "/a/b", "~" or "/".
func FormatPath(path []string) string {
	if len(path) == 0 {
		return domain.HomeRoot
	}
	rest := strings.Join(path[1:], "/")
	switch {
	case rest == "":
		return path[0]
	case path[0] == domain.SystemRoot:
		return "/" + rest
	}
	return path[0] + "/" + rest
}

// WithFile returns a registry where file is added under dirPath on the given
// machine. Missing directories are created. The receiver is left untouched.
func (r *Registry) WithFile(machineID string, dirPath []string, file domain.File) (*Registry, error) {
	m, ok := r.machines[machineID]
	if !ok || m.Root == nil {
		return nil, ErrUnknownMachine
	}
	root, err := insert(m.Root, dirPath[1:], file)
	if err != nil {
		return nil, err
	}
	m.Root = root

	next := &Registry{
		machines: maps.Clone(r.machines),
		order:    r.order,
	}
	next.machines[machineID] = m
	return next, nil
}

// insert copies every directory along the path so the original tree is shared
// but never mutated.
func insert(dir *domain.Directory, rest []string, file domain.File) (*domain.Directory, error) {
	cp := &domain.Directory{Name: dir.Name, Hidden: dir.Hidden, Children: maps.Clone(dir.Children)}
	if cp.Children == nil {
		cp.Children = make(map[string]domain.Entry)
	}
	if len(rest) == 0 {
		f := file
		cp.Children[f.Name] = &f
		return cp, nil
	}

	var child *domain.Directory
	switch existing := cp.Children[rest[0]].(type) {
	case *domain.Directory:
		child = existing
	case nil:
		child = &domain.Directory{Name: rest[0]}
	default:
		return nil, ErrNotFound
	}
	sub, err := insert(child, rest[1:], file)
	if err != nil {
		return nil, err
	}
	cp.Children[rest[0]] = sub
	return cp, nil
}
