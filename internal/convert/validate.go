package convert

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/lequan310/file-mcp/internal/apperr"
	"github.com/lequan310/file-mcp/internal/format"
)

// validateParams checks the cross-parameter rules before anything touches
// the engine. It fails fast on the first violated rule, in a fixed order:
// reference doc, defaults file, output allowlist, filter references.
func validateParams(target format.Format, opts Options, logger *slog.Logger) error {
	if opts.ReferenceDoc != "" {
		if target != format.DOCX {
			return fmt.Errorf("%w: reference_doc is only supported for docx output, not %q",
				apperr.ErrInvalidOptionCombination, target)
		}
		if _, err := os.Stat(opts.ReferenceDoc); err != nil {
			return fmt.Errorf("%w: reference document not found: %s",
				apperr.ErrInvalidOptionCombination, opts.ReferenceDoc)
		}
	}

	if opts.DefaultsFile != "" {
		if err := validateDefaultsFile(opts.DefaultsFile, target, logger); err != nil {
			return err
		}
	}

	if err := validation.Validate(string(target),
		validation.Required,
		validation.In(format.OutputFormatValues()...),
	); err != nil {
		return fmt.Errorf("%w: %q (supported formats: %s)",
			apperr.ErrUnsupportedOutputFormat, target, strings.Join(format.OutputFormatNames(), ", "))
	}

	for _, f := range opts.Filters {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("%w: filter references must be non-empty strings",
				apperr.ErrInvalidOptionCombination)
		}
	}

	return nil
}

// validateDefaultsFile checks that the defaults file exists, parses as YAML,
// and has a mapping at the root. A `to:` key that disagrees with the
// requested target only logs a warning: the request wins.
func validateDefaultsFile(path string, target format.Format, logger *slog.Logger) error {
	base := filepath.Base(path)

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", apperr.ErrDefaultsNotFound, path)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s", apperr.ErrDefaultsPermission, path)
	case err != nil:
		return fmt.Errorf("%w: %s: %v", apperr.ErrDefaultsPermission, path, err)
	}

	var root any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("%w: %s: %v", apperr.ErrDefaultsParse, base, err)
	}

	doc, ok := root.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: %s must be a YAML mapping", apperr.ErrDefaultsParse, base)
	}

	if to, ok := doc["to"].(string); ok && to != string(target) {
		logger.Warn("defaults file declares a different output format; using the requested format",
			slog.String("defaults_file", base),
			slog.String("defaults_to", to),
			slog.String("requested", string(target)))
	}

	return nil
}
