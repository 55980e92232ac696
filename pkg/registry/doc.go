// Package registry implements the persisted keyed collections dotkeep
// tracks entries in. Config entries, package-manager entries and secret
// entries share one generic store contract: a versioned JSON document,
// atomic rewrites, an exclusive lock for mutating commands, and
// insertion-ordered listing.
package registry
