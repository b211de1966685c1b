package terminal

import (
	"strings"

	"github.com/aretw0/disconnected/internal/vfs"
)

// Complete returns candidates for the last token of partial. The first token
// completes against command names; later tokens complete against entries of
// the directory they point into, hidden ones included.
func (i *Interpreter) Complete(partial string, s Session) []string {
	fields := strings.Fields(partial)
	if len(fields) == 0 || (len(fields) == 1 && !strings.HasSuffix(partial, " ")) {
		prefix := ""
		if len(fields) == 1 {
			prefix = strings.ToLower(fields[0])
		}
		var out []string
		for _, name := range i.Commands() {
			if strings.HasPrefix(name, prefix) {
				out = append(out, name)
			}
		}
		return out
	}

	last := ""
	if !strings.HasSuffix(partial, " ") {
		last = fields[len(fields)-1]
	}

	dirPart, base := "", last
	if idx := strings.LastIndex(last, "/"); idx >= 0 {
		dirPart, base = last[:idx+1], last[idx+1:]
	}

	dirPath := s.Path
	if len(dirPath) == 0 {
		dirPath = []string{"~"}
	}
	if dirPart != "" {
		dirPath = vfs.Resolve(dirPath, dirPart)
	}
	dir, ok := i.fs.Dir(s.Machine, dirPath)
	if !ok {
		return nil
	}

	var out []string
	for _, name := range vfs.List(dir, true) {
		if strings.HasPrefix(name, base) {
			out = append(out, dirPart+name)
		}
	}
	return out
}
