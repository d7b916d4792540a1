// Package lockfile implements the package-lock.json v3 codec and the
// on-disk lockfile store.
package lockfile

import (
	"encoding/json"
	"strings"

	"go.trai.ch/relock/internal/core/domain"
	"go.trai.ch/zerr"
)

// lockfileVersion is the only supported format version.
const lockfileVersion = 3

// lockfileJSON mirrors package-lock.json lockfileVersion 3: a flat mapping
// from install path to entry, root at "".
type lockfileJSON struct {
	Name            string               `json:"name,omitempty"`
	Version         string               `json:"version,omitempty"`
	LockfileVersion int                  `json:"lockfileVersion"`
	Packages        map[string]entryJSON `json:"packages"`
}

type entryJSON struct {
	Name                 string                  `json:"name,omitempty"`
	Version              string                  `json:"version,omitempty"`
	Resolved             string                  `json:"resolved,omitempty"`
	Integrity            string                  `json:"integrity,omitempty"`
	Link                 bool                    `json:"link,omitempty"`
	Dev                  bool                    `json:"dev,omitempty"`
	Optional             bool                    `json:"optional,omitempty"`
	Peer                 bool                    `json:"peer,omitempty"`
	Dependencies         map[string]string       `json:"dependencies,omitempty"`
	DevDependencies      map[string]string       `json:"devDependencies,omitempty"`
	OptionalDependencies map[string]string       `json:"optionalDependencies,omitempty"`
	PeerDependencies     map[string]string       `json:"peerDependencies,omitempty"`
	PeerDependenciesMeta map[string]peerMetaJSON `json:"peerDependenciesMeta,omitempty"`
}

type peerMetaJSON struct {
	Optional bool `json:"optional,omitempty"`
}

// Encode serializes a lockfile. Map keys marshal in sorted order, so the
// output is byte-stable: re-encoding an unchanged snapshot reproduces the
// exact same bytes, which keeps update diffs minimal.
func Encode(lf *domain.Lockfile) ([]byte, error) {
	out := lockfileJSON{
		Name:            lf.Name,
		Version:         lf.Version,
		LockfileVersion: lockfileVersion,
		Packages:        make(map[string]entryJSON, len(lf.Entries)),
	}

	for _, path := range lf.Paths() {
		e := lf.Entries[path]
		je := entryJSON{
			Version:              e.Version,
			Resolved:             e.Resolved,
			Integrity:            e.Integrity,
			Link:                 e.Link,
			Dev:                  e.Dev,
			Optional:             e.Optional,
			Peer:                 e.Peer,
			Dependencies:         e.Dependencies,
			DevDependencies:      e.DevDependencies,
			OptionalDependencies: e.OptionalDependencies,
			PeerDependencies:     e.PeerDependencies,
		}
		// npm writes the name only on the root and workspace entries;
		// installed packages derive it from their path.
		if !e.Link && !strings.Contains(path, "node_modules") {
			je.Name = e.Name
		}
		if len(e.PeerMeta) > 0 {
			je.PeerDependenciesMeta = make(map[string]peerMetaJSON, len(e.PeerMeta))
			for name, optional := range e.PeerMeta {
				je.PeerDependenciesMeta[name] = peerMetaJSON{Optional: optional}
			}
		}
		out.Packages[path] = je
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, zerr.Wrap(err, "failed to marshal lockfile")
	}
	return append(data, '\n'), nil
}

// Decode parses lockfile bytes, rejecting unsupported format versions.
func Decode(data []byte) (*domain.Lockfile, error) {
	var in lockfileJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, zerr.Wrap(err, "failed to parse lockfile")
	}
	if in.LockfileVersion != lockfileVersion {
		return nil, zerr.With(domain.ErrLockfileVersion, "lockfile_version", in.LockfileVersion)
	}

	lf := &domain.Lockfile{
		Name:    in.Name,
		Version: in.Version,
		Entries: make(map[string]domain.LockEntry, len(in.Packages)),
	}

	for path, je := range in.Packages {
		e := domain.LockEntry{
			Name:                 je.Name,
			Version:              je.Version,
			Resolved:             je.Resolved,
			Integrity:            je.Integrity,
			Link:                 je.Link,
			Dev:                  je.Dev,
			Optional:             je.Optional,
			Peer:                 je.Peer,
			Dependencies:         je.Dependencies,
			DevDependencies:      je.DevDependencies,
			OptionalDependencies: je.OptionalDependencies,
			PeerDependencies:     je.PeerDependencies,
		}
		if e.Name == "" && path != "" && !je.Link {
			e.Name = lastSegment(path)
		}
		if len(je.PeerDependenciesMeta) > 0 {
			e.PeerMeta = make(map[string]bool, len(je.PeerDependenciesMeta))
			for name, meta := range je.PeerDependenciesMeta {
				e.PeerMeta[name] = meta.Optional
			}
		}
		lf.Entries[path] = e
	}

	return lf, nil
}

func lastSegment(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
