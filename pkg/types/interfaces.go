package types

import (
	"io/fs"
)

// FS is the filesystem interface required for dotkeep operations
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Symlink operations
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)

	// Other operations
	Remove(name string) error
	RemoveAll(path string) error
	Rename(oldpath, newpath string) error

	// Optional operations - implementations should check for support
	// For testing, Lstat can fall back to Stat
	Lstat(name string) (fs.FileInfo, error)
}

// CommandRunner executes an external command and returns its stdout.
// Package-manager enumeration goes through this interface so the core
// never shells out directly.
type CommandRunner interface {
	Run(name string, args ...string) ([]byte, error)
	// LookPath reports whether the named command is resolvable.
	LookPath(name string) (string, error)
}

// GitOperation identifies one of the git operations the sync command needs.
type GitOperation string

const (
	GitInit GitOperation = "init"
	GitPull GitOperation = "pull"
	GitPush GitOperation = "push"
)

// Git performs repository operations on the dotkeep directory.
// Versioning and history stay git's job; dotkeep only triggers them.
type Git interface {
	Do(op GitOperation, repoRoot string) error
}
