package pandoc

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/lequan310/file-mcp/internal/apperr"
	"github.com/lequan310/file-mcp/internal/format"
	"github.com/lequan310/file-mcp/internal/testutil"
)

func TestConvertFileArgs(t *testing.T) {
	runner := &testutil.StubRunner{}
	e := New("/opt/pandoc/pandoc", runner)

	err := e.ConvertFile(context.Background(), "in.md", format.Markdown, format.HTML, "out.html",
		[]string{"--filter", "/abs/f.py"}, []string{"PANDOC_OUTPUT_DIR=/tmp"})
	if err != nil {
		t.Fatalf("ConvertFile: %v", err)
	}

	if len(runner.Calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(runner.Calls))
	}
	call := runner.Calls[0]
	if call.Name != "/opt/pandoc/pandoc" {
		t.Errorf("binary = %q", call.Name)
	}
	want := []string{"in.md", "-f", "markdown", "-t", "html", "-o", "out.html", "--filter", "/abs/f.py"}
	if !slices.Equal(call.Args, want) {
		t.Errorf("args = %v, want %v", call.Args, want)
	}
	if !slices.Contains(call.Env, "PANDOC_OUTPUT_DIR=/tmp") {
		t.Errorf("env = %v, missing output dir hint", call.Env)
	}
}

func TestConvertFilePDFOmitsWriter(t *testing.T) {
	runner := &testutil.StubRunner{}
	e := New("pandoc", runner)

	if err := e.ConvertFile(context.Background(), "in.md", format.Markdown, format.PDF, "out.pdf",
		[]string{"--pdf-engine=xelatex"}, nil); err != nil {
		t.Fatalf("ConvertFile: %v", err)
	}

	args := runner.Calls[0].Args
	if slices.Contains(args, "-t") {
		t.Errorf("PDF conversion must not pass -t, got %v", args)
	}
	if !slices.Contains(args, "--pdf-engine=xelatex") {
		t.Errorf("missing pdf engine flag: %v", args)
	}
}

func TestConvertTextWritesTempInput(t *testing.T) {
	runner := &testutil.StubRunner{}
	e := New("pandoc", runner)

	if err := e.ConvertText(context.Background(), "# Hi", format.Markdown, format.DOCX, "out.docx", nil, nil); err != nil {
		t.Fatalf("ConvertText: %v", err)
	}

	args := runner.Calls[0].Args
	if len(args) == 0 || args[0] == "" || args[0] == "# Hi" {
		t.Fatalf("first arg should be a temp file path, got %v", args)
	}
}

func TestRunClassifiesFailure(t *testing.T) {
	runner := &testutil.StubRunner{Stderr: "Filter not found: f.py", Err: errors.New("exit status 83")}
	e := New("pandoc", runner)

	err := e.ConvertFile(context.Background(), "in.md", format.Markdown, format.HTML, "out.html", nil, nil)
	var ee *apperr.EngineError
	if !errors.As(err, &ee) {
		t.Fatalf("error = %v, want *apperr.EngineError", err)
	}
	if ee.Kind != apperr.KindFilter {
		t.Errorf("kind = %v, want KindFilter", ee.Kind)
	}
}

func TestRunDefaultsClassificationReadsArgs(t *testing.T) {
	runner := &testutil.StubRunner{Stderr: "could not read defaults", Err: errors.New("exit status 1")}
	e := New("pandoc", runner)

	err := e.ConvertFile(context.Background(), "in.md", format.Markdown, format.HTML, "out.html",
		[]string{"--defaults", "/tmp/d.yaml"}, nil)
	var ee *apperr.EngineError
	if !errors.As(err, &ee) || ee.Kind != apperr.KindDefaults {
		t.Fatalf("error = %v, want defaults classification when --defaults was passed", err)
	}
}

func TestVersion(t *testing.T) {
	runner := &testutil.StubRunner{Stdout: "pandoc 3.1.13\nFeatures: +server +lua\n"}
	e := New("pandoc", runner)

	v, err := e.Version(context.Background())
	if err != nil {
		t.Fatalf("Version: %v", err)
	}
	if v != "pandoc 3.1.13" {
		t.Errorf("version = %q", v)
	}
}
