// Package apperr defines the conversion error taxonomy shared across the
// validation pipeline and the pandoc engine adapter.
package apperr

import "errors"

// Validation failures. All of these are raised before any engine invocation.
var (
	ErrUnsupportedExtension     = errors.New("unsupported file extension")
	ErrUnsupportedOutputFormat  = errors.New("unsupported output format")
	ErrUnsupportedInputFormat   = errors.New("unsupported input format")
	ErrInvalidOptionCombination = errors.New("invalid option combination")
	ErrMissingParameter         = errors.New("missing required parameter")
	ErrInputFileNotFound        = errors.New("input file not found")
	ErrDefaultsNotFound         = errors.New("defaults file not found")
	ErrDefaultsParse            = errors.New("defaults file parse error")
	ErrDefaultsPermission       = errors.New("defaults file permission denied")
	ErrFilterNotFound           = errors.New("filter not found")
	ErrPDFEngineNotFound        = errors.New("no PDF typesetting engine found")
)

// EngineKind classifies a conversion engine failure.
type EngineKind int

const (
	KindGeneric EngineKind = iota
	KindFilter
	KindDefaults
	KindEngineMissing
)

// String returns the human-readable message prefix for the kind.
func (k EngineKind) String() string {
	switch k {
	case KindFilter:
		return "Filter error during conversion"
	case KindDefaults:
		return "Defaults file error during conversion"
	case KindEngineMissing:
		return "Pandoc executable not found"
	default:
		return "Error converting"
	}
}

// EngineError wraps a raw pandoc failure with a best-effort classification.
// Detail carries the trimmed stderr, or the exec error when stderr is empty.
type EngineError struct {
	Kind   EngineKind
	Detail string
}

func (e *EngineError) Error() string {
	return e.Kind.String() + ": " + e.Detail
}
