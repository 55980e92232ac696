// Package system holds the thin wrappers around external processes:
// package-manager command execution and the git operations behind sync.
// Everything here sits behind the interfaces in pkg/types so command
// logic stays testable without spawning processes.
package system

import (
	stderrors "errors"
	"os/exec"
	"strings"

	"github.com/arthur-debert/dotkeep/pkg/errors"
	"github.com/arthur-debert/dotkeep/pkg/logging"
	"github.com/arthur-debert/dotkeep/pkg/types"
)

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// NewRunner returns the process-spawning CommandRunner.
func NewRunner() types.CommandRunner {
	return &ExecRunner{}
}

func (r *ExecRunner) Run(name string, args ...string) ([]byte, error) {
	log := logging.GetLogger("system")
	log.Debug().Str("command", name).Strs("args", args).Msg("running command")

	out, err := exec.Command(name, args...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return nil, errors.Wrapf(err, errors.ErrIO, "%s failed: %s",
				name, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, errors.Wrapf(err, errors.ErrIO, "%s failed", name)
	}
	return out, nil
}

func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// ExecGit shells out to the git binary for repository operations.
type ExecGit struct {
	runner types.CommandRunner
}

// NewGit returns a Git backed by the given runner.
func NewGit(runner types.CommandRunner) types.Git {
	return &ExecGit{runner: runner}
}

func (g *ExecGit) Do(op types.GitOperation, repoRoot string) error {
	var args []string
	switch op {
	case types.GitInit:
		args = []string{"-C", repoRoot, "init"}
	case types.GitPull:
		args = []string{"-C", repoRoot, "pull", "--rebase"}
	case types.GitPush:
		args = []string{"-C", repoRoot, "push"}
	default:
		return errors.Newf(errors.ErrInvalidInput, "unknown git operation %q", op)
	}

	if _, err := g.runner.LookPath("git"); err != nil {
		return errors.Wrap(err, errors.ErrNotFound, "git is not installed")
	}
	if _, err := g.runner.Run("git", args...); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "git %s failed", op)
	}
	return nil
}
