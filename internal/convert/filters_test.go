package convert

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lequan310/file-mcp/internal/apperr"
	"github.com/lequan310/file-mcp/internal/testutil"
)

func TestResolvePrefersWorkingDirectory(t *testing.T) {
	workDir := t.TempDir()
	userDir := t.TempDir()
	cwdCopy := testutil.WriteFilter(t, workDir, "emph.py", true)
	testutil.WriteFilter(t, userDir, "emph.py", true)
	t.Chdir(workDir)

	r := NewResolver(userDir, testLogger())
	got, ok := r.Resolve("emph.py", "")
	if !ok {
		t.Fatal("filter not resolved")
	}
	if got != cwdCopy {
		t.Errorf("resolved %q, want working-directory copy %q", got, cwdCopy)
	}
}

func TestResolveFallsBackToDefaultsDir(t *testing.T) {
	defaultsDir := t.TempDir()
	want := testutil.WriteFilter(t, defaultsDir, "emph.py", true)
	defaultsFile := testutil.WriteDefaultsFile(t, defaultsDir, "toc: true\n")
	t.Chdir(t.TempDir())

	r := NewResolver(t.TempDir(), testLogger())
	got, ok := r.Resolve("emph.py", defaultsFile)
	if !ok || got != want {
		t.Errorf("resolved (%q, %v), want defaults-dir copy %q", got, ok, want)
	}
}

func TestResolveFallsBackToUserDirByBasename(t *testing.T) {
	userDir := t.TempDir()
	want := testutil.WriteFilter(t, userDir, "emph.py", true)
	t.Chdir(t.TempDir())

	r := NewResolver(userDir, testLogger())
	// A relative reference with a subdirectory still matches the user
	// directory by basename.
	got, ok := r.Resolve(filepath.Join("filters", "emph.py"), "")
	if !ok || got != want {
		t.Errorf("resolved (%q, %v), want user-dir copy %q", got, ok, want)
	}
}

func TestResolveAbsoluteRefCheckedVerbatim(t *testing.T) {
	userDir := t.TempDir()
	testutil.WriteFilter(t, userDir, "emph.py", true)

	r := NewResolver(userDir, testLogger())
	// The basename exists in the user dir, but an absolute reference must
	// only probe the exact path.
	if _, ok := r.Resolve(filepath.Join(t.TempDir(), "emph.py"), ""); ok {
		t.Error("absolute reference should not fall back to the user directory")
	}
}

func TestResolveMakesFilterExecutable(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFilter(t, dir, "emph.py", false)
	t.Chdir(dir)

	r := NewResolver(t.TempDir(), testLogger())
	got, ok := r.Resolve("emph.py", "")
	if !ok || got != path {
		t.Fatalf("resolved (%q, %v)", got, ok)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&0o111 == 0 {
		t.Error("filter was not made executable")
	}
}

func TestResolveAllFailFast(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFilter(t, dir, "present.py", true)
	t.Chdir(dir)

	r := NewResolver(t.TempDir(), testLogger())

	_, err := r.ResolveAll([]string{"present.py", "missing.py"}, "")
	if !errors.Is(err, apperr.ErrFilterNotFound) {
		t.Fatalf("err = %v, want ErrFilterNotFound", err)
	}
	if !strings.Contains(err.Error(), "missing.py") {
		t.Errorf("error does not name the unresolved reference: %v", err)
	}

	// Miss-first ordering fails before the second reference is considered.
	_, err = r.ResolveAll([]string{"missing.py", "present.py"}, "")
	if !errors.Is(err, apperr.ErrFilterNotFound) || !strings.Contains(err.Error(), "missing.py") {
		t.Errorf("err = %v, want failure on the first reference", err)
	}
}

func TestResolveAllPreservesOrder(t *testing.T) {
	dir := t.TempDir()
	f1 := testutil.WriteFilter(t, dir, "first.py", true)
	f2 := testutil.WriteFilter(t, dir, "second.py", true)
	t.Chdir(dir)

	r := NewResolver(t.TempDir(), testLogger())
	got, err := r.ResolveAll([]string{"first.py", "second.py"}, "")
	if err != nil {
		t.Fatalf("ResolveAll: %v", err)
	}
	if len(got) != 2 || got[0] != f1 || got[1] != f2 {
		t.Errorf("resolved = %v, want [%s %s]", got, f1, f2)
	}
}

func TestResolveAllEmpty(t *testing.T) {
	r := NewResolver(t.TempDir(), testLogger())
	got, err := r.ResolveAll(nil, "")
	if err != nil || got != nil {
		t.Errorf("ResolveAll(nil) = (%v, %v), want (nil, nil)", got, err)
	}
}
