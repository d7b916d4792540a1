package registry

// snapshot is the wire shape of a registry snapshot file: every package name
// mapped to the versions the registry held at snapshot time.
type snapshot struct {
	Packages map[string][]packageEntry `yaml:"packages"`
}

type packageEntry struct {
	Version              string                  `yaml:"version"`
	Resolved             string                  `yaml:"resolved"`
	Integrity            string                  `yaml:"integrity"`
	Dependencies         map[string]string       `yaml:"dependencies"`
	OptionalDependencies map[string]string       `yaml:"optionalDependencies"`
	PeerDependencies     map[string]string       `yaml:"peerDependencies"`
	PeerDependenciesMeta map[string]peerMetaYAML `yaml:"peerDependenciesMeta"`
}

type peerMetaYAML struct {
	Optional bool `yaml:"optional"`
}
