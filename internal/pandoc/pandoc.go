// Package pandoc adapts the external pandoc executable: invocation, PDF
// engine detection, failure classification, and startup bootstrap.
package pandoc

import (
	"context"
	"slices"
	"strings"

	"github.com/lequan310/file-mcp/internal/format"
	"github.com/lequan310/file-mcp/internal/workspace"
)

// Engine invokes the pandoc executable through a Runner.
type Engine struct {
	bin    string
	runner Runner
}

// New creates an Engine for the given binary. An empty bin falls back to
// "pandoc" on the search path; a nil runner falls back to ExecRunner.
func New(bin string, runner Runner) *Engine {
	if bin == "" {
		bin = "pandoc"
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Engine{bin: bin, runner: runner}
}

// Bin returns the executable the engine invokes.
func (e *Engine) Bin() string { return e.bin }

// ConvertFile converts inputFile into outputFile. extraArgs are appended
// after the base arguments in the exact order given; extraEnv is applied to
// the child process only.
func (e *Engine) ConvertFile(ctx context.Context, inputFile string, from, to format.Format, outputFile string, extraArgs, extraEnv []string) error {
	args := []string{inputFile, "-f", string(from)}
	// Pandoc has no "pdf" writer: PDF output is selected by the output
	// extension together with --pdf-engine.
	if to != format.PDF {
		args = append(args, "-t", string(to))
	}
	args = append(args, "-o", outputFile)
	args = append(args, extraArgs...)
	return e.run(ctx, args, extraEnv)
}

// ConvertText writes content to a temp file and converts it into outputFile.
func (e *Engine) ConvertText(ctx context.Context, content string, from, to format.Format, outputFile string, extraArgs, extraEnv []string) error {
	tmp, cleanup, err := workspace.WriteTemp("", "file-mcp-*"+tempExt(from), []byte(content))
	if err != nil {
		return err
	}
	defer cleanup()
	return e.ConvertFile(ctx, tmp, from, to, outputFile, extraArgs, extraEnv)
}

// Version reports the first line of `pandoc --version`.
func (e *Engine) Version(ctx context.Context) (string, error) {
	stdout, stderr, err := e.runner.Run(ctx, e.bin, []string{"--version"}, nil)
	if err != nil {
		return "", classify(err, stderr, false)
	}
	line, _, _ := strings.Cut(stdout, "\n")
	return strings.TrimSpace(line), nil
}

func (e *Engine) run(ctx context.Context, args, env []string) error {
	_, stderr, err := e.runner.Run(ctx, e.bin, args, env)
	if err != nil {
		return classify(err, stderr, slices.Contains(args, "--defaults"))
	}
	return nil
}

// tempExt picks a temp-file extension for the source format. Pandoc reads
// the format from -f, so this only keeps temp files recognisable.
func tempExt(from format.Format) string {
	if from == format.HTML {
		return ".html"
	}
	return ".md"
}
