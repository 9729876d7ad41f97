package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/lequan310/file-mcp/internal/apperr"
	"github.com/lequan310/file-mcp/internal/format"
	"github.com/lequan310/file-mcp/internal/pandoc"
	"github.com/lequan310/file-mcp/internal/testutil"
)

func testService(t *testing.T, runner *testutil.StubRunner, engines ...string) *Service {
	t.Helper()
	return NewService(
		pandoc.New("pandoc", runner),
		NewResolver(t.TempDir(), testLogger()),
		testLogger(),
		WithLookPath(testutil.LookPath(engines...)),
	)
}

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConvertFileToPDFWithEngine(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "in.md", "# Title")
	out := filepath.Join(dir, "out.pdf")
	runner := &testutil.StubRunner{}

	msg, err := testService(t, runner, "xelatex").ConvertFile(context.Background(), in, out, Options{})
	if err != nil {
		t.Fatalf("ConvertFile: %v", err)
	}
	if msg != "File successfully converted and saved to: "+out {
		t.Errorf("message = %q", msg)
	}

	args := runner.Calls[0].Args
	if !slices.Contains(args, "--pdf-engine=xelatex") {
		t.Errorf("args = %v, missing pdf engine", args)
	}
}

func TestConvertFileToPDFWithoutEngine(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "in.md", "# Title")
	runner := &testutil.StubRunner{}

	_, err := testService(t, runner).ConvertFile(context.Background(), in, filepath.Join(dir, "out.pdf"), Options{})
	if !errors.Is(err, apperr.ErrPDFEngineNotFound) {
		t.Fatalf("err = %v, want ErrPDFEngineNotFound", err)
	}
	if len(runner.Calls) != 0 {
		t.Error("engine must not be invoked when validation fails")
	}
}

func TestConvertFilePlainToMarkdown(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "in.txt", "hello")
	out := filepath.Join(dir, "out.md")
	runner := &testutil.StubRunner{}

	msg, err := testService(t, runner).ConvertFile(context.Background(), in, out, Options{})
	if err != nil {
		t.Fatalf("ConvertFile: %v", err)
	}
	if msg != "File successfully converted and saved to: "+out {
		t.Errorf("message = %q", msg)
	}

	args := runner.Calls[0].Args
	for _, pair := range [][2]string{{"-f", "plain"}, {"-t", "markdown"}} {
		i := slices.Index(args, pair[0])
		if i < 0 || i+1 >= len(args) || args[i+1] != pair[1] {
			t.Errorf("args = %v, want %s %s", args, pair[0], pair[1])
		}
	}
}

func TestConvertFileMissingInput(t *testing.T) {
	runner := &testutil.StubRunner{}
	_, err := testService(t, runner).ConvertFile(context.Background(),
		filepath.Join(t.TempDir(), "absent.md"), "out.html", Options{})
	if !errors.Is(err, apperr.ErrInputFileNotFound) {
		t.Fatalf("err = %v, want ErrInputFileNotFound", err)
	}
	if len(runner.Calls) != 0 {
		t.Error("engine must not be invoked for a missing input")
	}
}

func TestCreateFromTextWithReferenceDoc(t *testing.T) {
	dir := t.TempDir()
	ref := writeInput(t, dir, "style.docx", "fake docx")
	out := filepath.Join(dir, "out.docx")
	runner := &testutil.StubRunner{}

	msg, err := testService(t, runner).CreateFromText(context.Background(),
		"# Hi", out, format.Markdown, Options{ReferenceDoc: ref})
	if err != nil {
		t.Fatalf("CreateFromText: %v", err)
	}
	if msg != "File successfully created and saved to: "+out {
		t.Errorf("message = %q", msg)
	}
	if strings.Contains(msg, "filters") || strings.Contains(msg, "defaults") {
		t.Errorf("message mentions unused knobs: %q", msg)
	}

	args := runner.Calls[0].Args
	i := slices.Index(args, "--reference-doc")
	if i < 0 || args[i+1] != ref {
		t.Errorf("args = %v, want --reference-doc %s", args, ref)
	}
}

func TestCreateFromTextEmptyContent(t *testing.T) {
	runner := &testutil.StubRunner{}
	// Fails before format inference: the bogus extension must not be the
	// reported error.
	_, err := testService(t, runner).CreateFromText(context.Background(),
		"", "out.unknownext", format.Markdown, Options{})
	if !errors.Is(err, apperr.ErrMissingParameter) {
		t.Fatalf("err = %v, want ErrMissingParameter", err)
	}
	if len(runner.Calls) != 0 {
		t.Error("engine must not be invoked for empty content")
	}
}

func TestCreateFromTextRejectsBadInputFormat(t *testing.T) {
	runner := &testutil.StubRunner{}
	_, err := testService(t, runner).CreateFromText(context.Background(),
		"body", filepath.Join(t.TempDir(), "out.html"), format.Format("rtf"), Options{})
	if !errors.Is(err, apperr.ErrUnsupportedInputFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedInputFormat", err)
	}
}

func TestSuccessMessageNamesFiltersAndDefaults(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "in.md", "# Title")
	out := filepath.Join(dir, "out.html")
	testutil.WriteFilter(t, dir, "emph.py", true)
	testutil.WriteFilter(t, dir, "caps.py", true)
	defaults := testutil.WriteDefaultsFile(t, dir, "toc: true\n")
	t.Chdir(dir)

	runner := &testutil.StubRunner{}
	msg, err := testService(t, runner).ConvertFile(context.Background(), in, out,
		Options{Filters: []string{"emph.py", "caps.py"}, DefaultsFile: defaults})
	if err != nil {
		t.Fatalf("ConvertFile: %v", err)
	}
	if !strings.Contains(msg, "with filters: emph.py, caps.py") {
		t.Errorf("message = %q, want filter basenames in order", msg)
	}
	if !strings.Contains(msg, "using defaults file: defaults.yaml") {
		t.Errorf("message = %q, want defaults basename", msg)
	}
}

func TestEngineFailureIsClassified(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "in.md", "# Title")
	runner := &testutil.StubRunner{
		Stderr: "Filter not found: emph.py",
		Err:    errors.New("exit status 83"),
	}

	_, err := testService(t, runner).ConvertFile(context.Background(), in, filepath.Join(dir, "out.html"), Options{})
	if err == nil {
		t.Fatal("expected classified failure")
	}
	if !strings.HasPrefix(err.Error(), "Filter error during conversion file from markdown to html:") {
		t.Errorf("err = %v, want filter classification prefix", err)
	}
}

func TestEngineMissingFailureHasRemediation(t *testing.T) {
	runner := &testutil.StubRunner{
		Stderr: "",
		Err:    errors.New(`exec: "pandoc": executable file not found in $PATH`),
	}
	dir := t.TempDir()
	in := writeInput(t, dir, "in.md", "# Title")

	_, err := testService(t, runner).ConvertFile(context.Background(), in, filepath.Join(dir, "out.html"), Options{})
	if err == nil {
		t.Fatal("expected failure")
	}
	if !strings.HasPrefix(err.Error(), "Pandoc executable not found") {
		t.Errorf("err = %v, want engine-missing prefix", err)
	}
	if !strings.Contains(err.Error(), "ensure pandoc is installed") {
		t.Errorf("err = %v, want remediation text", err)
	}
}

type recordingPublisher struct {
	events []string
}

func (p *recordingPublisher) PublishConversionEvent(kind, id, outputPath string) {
	p.events = append(p.events, kind)
}

func TestServicePublishesLifecycleEvents(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "in.md", "# Title")
	pub := &recordingPublisher{}
	runner := &testutil.StubRunner{}

	s := NewService(pandoc.New("pandoc", runner), NewResolver(t.TempDir(), testLogger()),
		testLogger(), WithPublisher(pub), WithLookPath(testutil.LookPath()))

	if _, err := s.ConvertFile(context.Background(), in, filepath.Join(dir, "out.html"), Options{}); err != nil {
		t.Fatalf("ConvertFile: %v", err)
	}
	want := []string{"started", "completed"}
	if !slices.Equal(pub.events, want) {
		t.Errorf("events = %v, want %v", pub.events, want)
	}
}
