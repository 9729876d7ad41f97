package convert

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lequan310/file-mcp/internal/apperr"
)

// Resolver locates filter executables across candidate directories.
type Resolver struct {
	userDir string
	logger  *slog.Logger
}

// NewResolver creates a Resolver. userDir is the user-level filter
// directory; empty means ~/.pandoc/filters.
func NewResolver(userDir string, logger *slog.Logger) *Resolver {
	return &Resolver{userDir: userDir, logger: logger}
}

// candidates returns the paths to probe for ref, in search order: the
// working directory, the defaults-file directory, and the user filter
// directory (by basename). Absolute references are probed verbatim.
func (r *Resolver) candidates(ref, defaultsFile string) []string {
	if filepath.IsAbs(ref) {
		return []string{ref}
	}

	var paths []string
	if abs, err := filepath.Abs(ref); err == nil {
		paths = append(paths, abs)
	}
	if defaultsFile != "" {
		if absDefaults, err := filepath.Abs(defaultsFile); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(absDefaults), ref))
		}
	}
	paths = append(paths, filepath.Join(r.userFilterDir(), filepath.Base(ref)))
	return paths
}

func (r *Resolver) userFilterDir() string {
	if r.userDir != "" {
		return r.userDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".pandoc", "filters")
	}
	return filepath.Join(home, ".pandoc", "filters")
}

// Resolve returns the absolute path of the first candidate that exists and
// can be made executable.
func (r *Resolver) Resolve(ref, defaultsFile string) (string, bool) {
	for _, path := range r.candidates(ref, defaultsFile) {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if err := r.ensureExecutable(path, info); err != nil {
			r.logger.Warn("could not make filter executable",
				slog.String("path", path), slog.String("error", err.Error()))
			continue
		}
		r.logger.Debug("using filter", slog.String("path", path))
		return path, true
	}
	return "", false
}

// ensureExecutable grants execute permission when it is missing. The chmod
// is idempotent, so concurrent requests racing on the same filter are
// harmless.
func (r *Resolver) ensureExecutable(path string, info fs.FileInfo) error {
	if info.Mode()&0o111 != 0 {
		return nil
	}
	if err := os.Chmod(path, info.Mode()|0o111); err != nil {
		return err
	}
	r.logger.Info("made filter executable", slog.String("path", path))
	return nil
}

// ResolveAll resolves every reference in input order and fails on the first
// miss without probing the rest.
func (r *Resolver) ResolveAll(refs []string, defaultsFile string) ([]string, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	resolved := make([]string, 0, len(refs))
	for _, ref := range refs {
		path, ok := r.Resolve(ref, defaultsFile)
		if !ok {
			return nil, fmt.Errorf("%w in any of the searched locations: %s",
				apperr.ErrFilterNotFound, ref)
		}
		resolved = append(resolved, path)
	}
	return resolved, nil
}
