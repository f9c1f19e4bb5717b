package cnav

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// SnapshotRule derives a per-source-file snapshot path: strip the source
// extension, apply alias substring replacements, append the snapshot
// extension. The alternative to a single fixed snapshot path.
type SnapshotRule struct {
	// Aliases are substring replacements applied to the extension-stripped
	// path, e.g. {"/src/": "/build/ast/"}. Applied in sorted key order so
	// derivation is deterministic.
	Aliases map[string]string

	// Extension is the snapshot file extension including the dot, e.g.
	// ".ast". Empty means the rule is not configured.
	Extension string
}

// Configured reports whether the rule can derive paths.
func (r SnapshotRule) Configured() bool {
	return r.Extension != ""
}

// SnapshotPath derives the snapshot path for a source file.
func (r SnapshotRule) SnapshotPath(sourcePath string) string {
	p := strings.TrimSuffix(sourcePath, filepath.Ext(sourcePath))
	keys := make([]string, 0, len(r.Aliases))
	for k := range r.Aliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p = strings.Replace(p, k, r.Aliases[k], 1)
	}
	return p + r.Extension
}

// ParseAliases parses "old=new" pairs into an alias map. Malformed pairs
// are configuration errors and surface immediately.
func ParseAliases(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	aliases := make(map[string]string, len(pairs))
	for _, p := range pairs {
		old, repl, ok := strings.Cut(p, "=")
		if !ok || old == "" {
			return nil, fmt.Errorf("malformed alias %q: want old=new", p)
		}
		aliases[old] = repl
	}
	return aliases, nil
}
