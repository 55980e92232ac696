// Package types contains the shared types used across dotkeep:
// registry entries, layer identifiers, the filesystem interface,
// batch reports, and the narrow collaborator interfaces the core
// consumes for command execution and git synchronization.
package types
