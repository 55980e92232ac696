package system

import (
	"os/exec"
	"sync"
)

// FakeRunner is an in-memory CommandRunner for tests. Outputs are keyed
// by command name; unknown commands report exec.ErrNotFound.
type FakeRunner struct {
	mu sync.Mutex

	// Outputs maps command name to canned stdout
	Outputs map[string][]byte
	// Errors maps command name to a forced error
	Errors map[string]error
	// Calls records every invocation in order
	Calls [][]string
}

// NewFakeRunner returns an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Outputs: make(map[string][]byte),
		Errors:  make(map[string]error),
	}
}

func (r *FakeRunner) Run(name string, args ...string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = append(r.Calls, append([]string{name}, args...))
	if err, ok := r.Errors[name]; ok {
		return nil, err
	}
	if out, ok := r.Outputs[name]; ok {
		return out, nil
	}
	return nil, exec.ErrNotFound
}

func (r *FakeRunner) LookPath(name string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Errors[name]; ok {
		return "", exec.ErrNotFound
	}
	if _, ok := r.Outputs[name]; ok {
		return "/usr/bin/" + name, nil
	}
	return "", exec.ErrNotFound
}
