package pandoc

import (
	"bytes"
	"context"
	"os"
	"os/exec"
)

// Runner abstracts command execution so conversions can be tested without
// spawning real subprocesses.
type Runner interface {
	// Run executes name with args. extraEnv entries ("KEY=value") are added
	// to the child environment only; the parent environment is never mutated.
	Run(ctx context.Context, name string, args []string, extraEnv []string) (stdout, stderr string, err error)
}

// ExecRunner implements Runner using os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args []string, extraEnv []string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), extraEnv...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}
