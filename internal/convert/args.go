package convert

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lequan310/file-mcp/internal/apperr"
	"github.com/lequan310/file-mcp/internal/format"
	"github.com/lequan310/file-mcp/internal/pandoc"
)

// defaultPDFMargin is passed to every PDF conversion.
const defaultPDFMargin = "geometry:margin=1in"

// buildArgs assembles the pandoc extra arguments in a fixed order: defaults
// file, filters (input order preserved — pandoc applies them in flag
// order), PDF engine selection, reference doc. The returned env holds
// per-invocation variables for the child process; the output directory hint
// is scoped to the invocation, never stored in shared process state.
func (s *Service) buildArgs(target format.Format, outputFile string, resolvedFilters []string, opts Options) (args, env []string, err error) {
	if opts.DefaultsFile != "" {
		abs, aerr := filepath.Abs(opts.DefaultsFile)
		if aerr != nil {
			return nil, nil, fmt.Errorf("resolve defaults file path: %w", aerr)
		}
		args = append(args, "--defaults", abs)
	}

	if outputFile != "" {
		if abs, aerr := filepath.Abs(outputFile); aerr == nil {
			env = append(env, "PANDOC_OUTPUT_DIR="+filepath.Dir(abs))
		}
	}

	for _, f := range resolvedFilters {
		args = append(args, "--filter", f)
	}

	if target == format.PDF {
		engine, ok := pandoc.DetectPDFEngine(s.lookPath)
		if !ok {
			return nil, nil, fmt.Errorf(
				"%w: PDF generation requires a LaTeX engine (%s); install TeX Live or MiKTeX and ensure it is on your PATH",
				apperr.ErrPDFEngineNotFound, strings.Join(pandoc.PDFEngines, ", "))
		}
		args = append(args, "--pdf-engine="+engine, "-V", defaultPDFMargin)
	}

	if opts.ReferenceDoc != "" && target == format.DOCX {
		args = append(args, "--reference-doc", opts.ReferenceDoc)
	}

	return args, env, nil
}
