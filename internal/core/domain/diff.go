package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Diff is a structural comparison of two lockfile snapshots.
type Diff struct {
	Added   []string
	Removed []string
	Changed []EntryChange
}

// EntryChange describes one install path whose entry differs between
// snapshots.
type EntryChange struct {
	Path   string
	Before string
	After  string
}

// Empty reports whether the two snapshots were identical.
func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// String renders the diff one line per affected path.
func (d Diff) String() string {
	if d.Empty() {
		return "lockfile unchanged"
	}
	var b strings.Builder
	for _, p := range d.Added {
		fmt.Fprintf(&b, "+ %s\n", p)
	}
	for _, p := range d.Removed {
		fmt.Fprintf(&b, "- %s\n", p)
	}
	for _, c := range d.Changed {
		fmt.Fprintf(&b, "~ %s: %s -> %s\n", c.Path, c.Before, c.After)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// CompareLockfiles computes the structural diff from old to new.
func CompareLockfiles(oldLock, newLock *Lockfile) Diff {
	var d Diff

	for _, path := range newLock.Paths() {
		newEntry := newLock.Entries[path]
		oldEntry, ok := oldLock.Entries[path]
		if !ok {
			d.Added = append(d.Added, path)
			continue
		}
		if !entriesEqual(oldEntry, newEntry) {
			d.Changed = append(d.Changed, EntryChange{
				Path:   path,
				Before: summarize(oldEntry),
				After:  summarize(newEntry),
			})
		}
	}

	for _, path := range oldLock.Paths() {
		if _, ok := newLock.Entries[path]; !ok {
			d.Removed = append(d.Removed, path)
		}
	}

	return d
}

func entriesEqual(a, b LockEntry) bool {
	return a.Name == b.Name &&
		a.Version == b.Version &&
		a.Resolved == b.Resolved &&
		a.Integrity == b.Integrity &&
		a.Link == b.Link &&
		a.Dev == b.Dev &&
		a.Optional == b.Optional &&
		a.Peer == b.Peer &&
		mapsEqual(a.Dependencies, b.Dependencies) &&
		mapsEqual(a.DevDependencies, b.DevDependencies) &&
		mapsEqual(a.OptionalDependencies, b.OptionalDependencies) &&
		mapsEqual(a.PeerDependencies, b.PeerDependencies) &&
		boolMapsEqual(a.PeerMeta, b.PeerMeta)
}

func summarize(e LockEntry) string {
	if e.Link {
		return "link:" + e.Resolved
	}
	return e.Version
}

// Unresolved is one dangling or violated edge found by the validator.
type Unresolved struct {
	Consumer   string
	Name       string
	Constraint string
	// Found is the version of the visible-but-incompatible node, empty when
	// no node of that name is visible at all.
	Found string
}

// String renders the edge in npm's "Missing: X from lock file" register.
func (u Unresolved) String() string {
	if u.Found == "" {
		return fmt.Sprintf("missing: %s@%s required by %s from lock file", u.Name, u.Constraint, u.Consumer)
	}
	return fmt.Sprintf("invalid: %s@%s required by %s, found %s", u.Name, u.Constraint, u.Consumer, u.Found)
}

func mapsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

func boolMapsEqual(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

func sortStrings(s []string) {
	slices.Sort(s)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
