package types

// Layer names one of the prioritized storage roots a tracked entry can
// resolve from. The priority order, highest first, is profile, machine,
// common, legacy.
type Layer string

const (
	LayerProfile Layer = "profile"
	LayerMachine Layer = "machine"
	LayerCommon  Layer = "common"
	// LayerLegacy is the original flat backup root, kept for backward
	// compatibility and only ever read, never written to.
	LayerLegacy Layer = "legacy"
)

// Structured reports whether the layer is part of the layered scheme.
// Structured layers require real files; symlinks are only tolerated in
// the legacy layer.
func (l Layer) Structured() bool {
	return l != LayerLegacy
}

// ResolvedSource is the winning copy of an entry for a given context.
type ResolvedSource struct {
	// Path is the absolute path of the existing file or directory
	Path string
	// Layer the path was found in
	Layer Layer
}
