// Package testutil provides shared test helpers for conversion tests:
// throwaway filter scripts, defaults files, and command-runner stubs.
package testutil

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// WriteFilter creates a filter script named name under dir and returns its
// path. executable controls whether the script carries execute permission.
func WriteFilter(t *testing.T, dir, name string, executable bool) string {
	t.Helper()
	perm := os.FileMode(0o644)
	if executable {
		perm = 0o755
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\ncat\n"), perm); err != nil {
		t.Fatal(err)
	}
	return path
}

// WriteDefaultsFile writes a YAML defaults file under dir and returns its path.
func WriteDefaultsFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "defaults.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// Call records one stubbed command invocation.
type Call struct {
	Name string
	Args []string
	Env  []string
}

// StubRunner implements the engine Runner interface with canned results.
type StubRunner struct {
	Calls  []Call
	Stdout string
	Stderr string
	Err    error
	// OnRun, when set, may create side effects (e.g. the output file).
	OnRun func(name string, args []string)
}

func (r *StubRunner) Run(_ context.Context, name string, args []string, extraEnv []string) (string, string, error) {
	r.Calls = append(r.Calls, Call{Name: name, Args: args, Env: extraEnv})
	if r.OnRun != nil {
		r.OnRun(name, args)
	}
	return r.Stdout, r.Stderr, r.Err
}

// LookPath returns a lookup function that only knows the given names.
func LookPath(names ...string) func(string) (string, error) {
	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}
	return func(name string) (string, error) {
		if known[name] {
			return "/usr/bin/" + name, nil
		}
		return "", exec.ErrNotFound
	}
}
