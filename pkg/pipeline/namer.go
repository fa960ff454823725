package pipeline

import (
	"fmt"
	"strings"
)

// Namer hands out collision-free output file names within one run. On a
// collision an incrementing counter is inserted immediately before the
// file extension; a name with no extension gets the counter appended.
// State is scoped to the run and never persisted.
type Namer struct {
	seen map[string]struct{}
}

// NewNamer creates an empty namer.
func NewNamer() *Namer {
	return &Namer{seen: make(map[string]struct{})}
}

// Reserve returns baseName unchanged if unseen, otherwise the first unseen
// variant of it, and marks the returned name as claimed.
func (n *Namer) Reserve(baseName string) string {
	if _, taken := n.seen[baseName]; !taken {
		n.seen[baseName] = struct{}{}
		return baseName
	}

	stem, ext := splitExtension(baseName)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if _, taken := n.seen[candidate]; !taken {
			n.seen[candidate] = struct{}{}
			return candidate
		}
	}
}

// splitExtension splits on the last dot. "report.pdf" returns
// ("report", ".pdf"); "notes" returns ("notes", "").
func splitExtension(name string) (stem, ext string) {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return name, ""
	}
	return name[:idx], name[idx:]
}
