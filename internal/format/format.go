// Package format maps file extensions to pandoc format identifiers and
// defines the supported conversion targets.
package format

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lequan310/file-mcp/internal/apperr"
)

// Format identifies a pandoc reader or writer format.
type Format string

// Supported formats.
const (
	Plain    Format = "plain"
	HTML     Format = "html"
	Markdown Format = "markdown"
	Ipynb    Format = "ipynb"
	ODT      Format = "odt"
	PDF      Format = "pdf"
	DOCX     Format = "docx"
	RST      Format = "rst"
	LaTeX    Format = "latex"
	EPUB     Format = "epub"
)

// extToFormat maps lower-cased file extensions to formats.
var extToFormat = map[string]Format{
	".txt":      Plain,
	".html":     HTML,
	".htm":      HTML,
	".md":       Markdown,
	".markdown": Markdown,
	".ipynb":    Ipynb,
	".odt":      ODT,
	".pdf":      PDF,
	".docx":     DOCX,
	".doc":      DOCX,
	".rst":      RST,
	".tex":      LaTeX,
	".latex":    LaTeX,
	".epub":     EPUB,
}

// outputFormats is the fixed set of supported conversion targets. Every
// format the extension map can produce is a member, so inference never
// yields a target that validation rejects.
var outputFormats = map[Format]struct{}{
	Plain: {}, HTML: {}, Markdown: {}, Ipynb: {}, ODT: {},
	PDF: {}, DOCX: {}, RST: {}, LaTeX: {}, EPUB: {},
}

// InputFormats lists the source formats accepted for text content.
var InputFormats = []Format{Markdown, HTML}

// InferFromPath returns the format for the file's extension. The comparison
// is case-insensitive. An unknown or missing extension is an error that
// names every supported extension.
func InferFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	f, ok := extToFormat[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q (supported extensions: %s)",
			apperr.ErrUnsupportedExtension, ext, strings.Join(SupportedExtensions(), ", "))
	}
	return f, nil
}

// SupportedExtensions returns every recognised extension, sorted.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extToFormat))
	for ext := range extToFormat {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// IsSupportedOutput reports whether f is a valid conversion target.
func IsSupportedOutput(f Format) bool {
	_, ok := outputFormats[f]
	return ok
}

// OutputFormatValues returns the supported targets for ozzo's validation.In.
func OutputFormatValues() []interface{} {
	vals := make([]interface{}, 0, len(outputFormats))
	for f := range outputFormats {
		vals = append(vals, string(f))
	}
	sort.Slice(vals, func(i, j int) bool { return vals[i].(string) < vals[j].(string) })
	return vals
}

// OutputFormatNames returns the supported targets as a sorted string slice
// for error messages.
func OutputFormatNames() []string {
	names := make([]string, 0, len(outputFormats))
	for f := range outputFormats {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}

// IsInput reports whether f is accepted as a source format for text content.
func IsInput(f Format) bool {
	for _, in := range InputFormats {
		if f == in {
			return true
		}
	}
	return false
}
