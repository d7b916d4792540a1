package manifest

// packageJSON is the wire shape of a package.json manifest, limited to the
// fields dependency resolution consumes.
type packageJSON struct {
	Name                 string                  `json:"name"`
	Version              string                  `json:"version"`
	Workspaces           []string                `json:"workspaces"`
	Dependencies         map[string]string       `json:"dependencies"`
	DevDependencies      map[string]string       `json:"devDependencies"`
	OptionalDependencies map[string]string       `json:"optionalDependencies"`
	PeerDependencies     map[string]string       `json:"peerDependencies"`
	PeerDependenciesMeta map[string]peerMetaJSON `json:"peerDependenciesMeta"`
}

type peerMetaJSON struct {
	Optional bool `json:"optional"`
}
