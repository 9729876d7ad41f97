// Package workspace provides filesystem plumbing for conversion inputs and
// outputs: output directory creation, temp input files, and atomic writes.
package workspace

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// EnsureParentDir creates the directory that will hold path, so the engine
// never fails on a missing output directory.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("workspace: create output dir: %w", err)
	}
	return nil
}

// WriteTemp writes content to a fresh temp file and returns its path with a
// cleanup function that removes the file.
func WriteTemp(dir, pattern string, content []byte) (path string, cleanup func(), err error) {
	tmp, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", nil, fmt.Errorf("workspace: create temp: %w", err)
	}

	path = tmp.Name()
	cleanup = func() { _ = os.Remove(path) }

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("workspace: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("workspace: close temp: %w", err)
	}
	return path, cleanup, nil
}

// WriteAtomic streams r to path via tmp file, fsync, and rename, so a
// half-written file is never observable at the final path.
func WriteAtomic(path string, r io.Reader, perm fs.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("workspace: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".file-mcp-tmp-*")
	if err != nil {
		return fmt.Errorf("workspace: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		return fmt.Errorf("workspace: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("workspace: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("workspace: close temp: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("workspace: chmod: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("workspace: rename: %w", err)
	}
	success = true
	return nil
}
