package buildvar

// Artifact is a file-like leaf value: the exec path of a build input or
// output. Tree artifacts stand for a directory whose concrete members are
// only known through an InputMetadataProvider.
type Artifact struct {
	// ExecPath is the execution-root-relative path.
	ExecPath string
	// Tree marks a directory artifact whose leaves are resolved lazily.
	Tree bool
}

// PathMapper rewrites file-like leaf values at expansion time, e.g. to
// strip configuration segments for deterministic remote execution. A nil
// PathMapper is the identity mapping.
type PathMapper func(path string) string

// apply runs the mapper, treating nil as identity.
func (m PathMapper) apply(path string) string {
	if m == nil {
		return path
	}
	return m(path)
}

// mapArtifact maps an artifact's exec path.
func (m PathMapper) mapArtifact(a Artifact) string {
	return m.apply(a.ExecPath)
}

// InputMetadataProvider resolves a tree artifact into its concrete leaf
// members. Implementations return nil when the expansion is unknown; the
// engine treats that as "contributes no leaves", not as an error.
type InputMetadataProvider interface {
	TreeChildren(a Artifact) []Artifact
}
