package domain

// Root markers used as the first path segment.
const (
	HomeRoot   = "~"
	SystemRoot = "/"
)

// LocalMachine is the id of the player's own machine.
const LocalMachine = "localhost"

// Entry is a node of a machine's filesystem: either a *File or a *Directory.
type Entry interface {
	EntryName() string
	IsHidden() bool
}

// File is a leaf entry.
type File struct {
	Name      string
	Content   string
	Hidden    bool
	Encrypted bool
	// OnRead is the trigger id fired on every successful read.
	OnRead string
}

// Directory is an inner entry.
type Directory struct {
	Name     string
	Hidden   bool
	Children map[string]Entry
}

func (f *File) EntryName() string      { return f.Name }
func (f *File) IsHidden() bool         { return f.Hidden }
func (d *Directory) EntryName() string { return d.Name }
func (d *Directory) IsHidden() bool    { return d.Hidden }

// Machine is a simulated host reachable from the terminal.
type Machine struct {
	ID             string
	Hostname       string
	IP             string
	Root           *Directory
	RequiresAccess bool
	AccessGranted  bool
	MOTD           string
}

// AccessFlag returns the flag that grants ssh access to the machine.
func (m Machine) AccessFlag() string {
	return "access_" + m.ID
}

// RootPath returns the path of the machine's filesystem root.
func (m Machine) RootPath() []string {
	if m.Root != nil && m.Root.Name == HomeRoot {
		return []string{HomeRoot}
	}
	return []string{SystemRoot}
}
