package pandoc

import (
	"errors"
	"os/exec"
	"strings"

	"github.com/lequan310/file-mcp/internal/apperr"
)

// classify maps a raw pandoc failure to an EngineError. Pandoc offers no
// structured error codes, so matching on stderr text is best-effort: a
// wording change in the engine degrades a classification to Generic, never
// to a wrong kind. Structured signals (exec.ErrNotFound) are checked first.
func classify(err error, stderr string, defaultsSupplied bool) *apperr.EngineError {
	detail := strings.TrimSpace(stderr)
	if detail == "" && err != nil {
		detail = err.Error()
	}

	if errors.Is(err, exec.ErrNotFound) {
		return &apperr.EngineError{Kind: apperr.KindEngineMissing, Detail: detail}
	}

	lower := strings.ToLower(detail)
	switch {
	case strings.Contains(detail, "Filter not found"),
		strings.Contains(detail, "not executable"),
		strings.Contains(lower, "filter returned error"):
		return &apperr.EngineError{Kind: apperr.KindFilter, Detail: detail}

	case defaultsSupplied && strings.Contains(lower, "defaults"):
		return &apperr.EngineError{Kind: apperr.KindDefaults, Detail: detail}

	case strings.Contains(lower, "pandoc") && strings.Contains(lower, "not found"):
		return &apperr.EngineError{Kind: apperr.KindEngineMissing, Detail: detail}
	}

	return &apperr.EngineError{Kind: apperr.KindGeneric, Detail: detail}
}
