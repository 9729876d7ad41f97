package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/lequan310/file-mcp/internal/apperr"
	"github.com/lequan310/file-mcp/internal/format"
	"github.com/lequan310/file-mcp/internal/pandoc"
	"github.com/lequan310/file-mcp/internal/workspace"
)

// Publisher receives conversion lifecycle events. The SSE broker implements
// it; a nil publisher disables events.
type Publisher interface {
	PublishConversionEvent(kind, id, outputPath string)
}

// Service composes validation, filter resolution, argument assembly, and
// engine invocation into the two conversion operations.
type Service struct {
	engine   *pandoc.Engine
	resolver *Resolver
	logger   *slog.Logger
	lookPath pandoc.LookPathFunc
	events   Publisher
}

// ServiceOption configures optional Service collaborators.
type ServiceOption func(*Service)

// WithPublisher attaches a conversion event publisher.
func WithPublisher(p Publisher) ServiceOption {
	return func(s *Service) { s.events = p }
}

// WithLookPath overrides executable lookup for PDF engine detection.
func WithLookPath(fn pandoc.LookPathFunc) ServiceOption {
	return func(s *Service) { s.lookPath = fn }
}

// NewService creates a Service around the given engine and resolver.
func NewService(engine *pandoc.Engine, resolver *Resolver, logger *slog.Logger, opts ...ServiceOption) *Service {
	s := &Service{engine: engine, resolver: resolver, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateFromText converts text content into a new file at outputFile. The
// target format is inferred from the output extension. On success the
// returned message names the applied filters and defaults file by basename.
func (s *Service) CreateFromText(ctx context.Context, content, outputFile string, inputFormat format.Format, opts Options) (string, error) {
	if content == "" {
		return "", fmt.Errorf("%w: content cannot be empty", apperr.ErrMissingParameter)
	}
	if outputFile == "" {
		return "", fmt.Errorf("%w: output_file is required", apperr.ErrMissingParameter)
	}
	if inputFormat == "" {
		return "", fmt.Errorf("%w: input_format is required", apperr.ErrMissingParameter)
	}

	target, err := format.InferFromPath(outputFile)
	if err != nil {
		return "", err
	}

	if !format.IsInput(inputFormat) {
		return "", fmt.Errorf("%w: %q (supported input formats: markdown, html)",
			apperr.ErrUnsupportedInputFormat, inputFormat)
	}

	resolved, args, env, err := s.prepare(target, outputFile, opts)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	s.publish("started", id, outputFile)
	if err := s.engine.ConvertText(ctx, content, inputFormat, target, outputFile, args, env); err != nil {
		s.publish("failed", id, outputFile)
		return "", s.conversionError(err, "content", inputFormat, target, opts)
	}
	s.publish("completed", id, outputFile)

	s.logger.Info("file created",
		slog.String("output", outputFile),
		slog.String("from", string(inputFormat)),
		slog.String("to", string(target)))
	return successMessage("created", outputFile, resolved, opts.DefaultsFile), nil
}

// ConvertFile converts an existing file into outputFile. Both formats are
// inferred from the respective extensions.
func (s *Service) ConvertFile(ctx context.Context, inputFile, outputFile string, opts Options) (string, error) {
	if inputFile == "" {
		return "", fmt.Errorf("%w: input_file is required", apperr.ErrMissingParameter)
	}
	if outputFile == "" {
		return "", fmt.Errorf("%w: output_file is required", apperr.ErrMissingParameter)
	}
	if _, err := os.Stat(inputFile); err != nil {
		return "", fmt.Errorf("%w: %s", apperr.ErrInputFileNotFound, inputFile)
	}

	from, err := format.InferFromPath(inputFile)
	if err != nil {
		return "", err
	}
	target, err := format.InferFromPath(outputFile)
	if err != nil {
		return "", err
	}

	resolved, args, env, err := s.prepare(target, outputFile, opts)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	s.publish("started", id, outputFile)
	if err := s.engine.ConvertFile(ctx, inputFile, from, target, outputFile, args, env); err != nil {
		s.publish("failed", id, outputFile)
		return "", s.conversionError(err, "file", from, target, opts)
	}
	s.publish("completed", id, outputFile)

	s.logger.Info("file converted",
		slog.String("input", inputFile),
		slog.String("output", outputFile),
		slog.String("from", string(from)),
		slog.String("to", string(target)))
	return successMessage("converted", outputFile, resolved, opts.DefaultsFile), nil
}

// prepare runs the shared pre-invocation pipeline: parameter validation,
// filter resolution, argument assembly, output directory creation. Any
// failure here happens before the engine runs and leaves no partial output.
func (s *Service) prepare(target format.Format, outputFile string, opts Options) (resolved, args, env []string, err error) {
	if err := validateParams(target, opts, s.logger); err != nil {
		return nil, nil, nil, err
	}

	resolved, err = s.resolver.ResolveAll(opts.Filters, opts.DefaultsFile)
	if err != nil {
		return nil, nil, nil, err
	}

	args, env, err = s.buildArgs(target, outputFile, resolved, opts)
	if err != nil {
		return nil, nil, nil, err
	}

	if err := workspace.EnsureParentDir(outputFile); err != nil {
		return nil, nil, nil, err
	}
	return resolved, args, env, nil
}

// conversionError turns a classified engine failure into the single
// user-facing message: prefix, source kind, formats, detail.
func (s *Service) conversionError(err error, sourceKind string, from, to format.Format, opts Options) error {
	var ee *apperr.EngineError
	if !errors.As(err, &ee) {
		ee = &apperr.EngineError{Kind: apperr.KindGeneric, Detail: err.Error()}
	}

	detail := ee.Detail
	switch ee.Kind {
	case apperr.KindDefaults:
		detail += fmt.Sprintf(" (defaults file: %s)", filepath.Base(opts.DefaultsFile))
	case apperr.KindEngineMissing:
		detail = "ensure pandoc is installed and available on your PATH"
	}

	return fmt.Errorf("%s %s from %s to %s: %s", ee.Kind, sourceKind, from, to, detail)
}

func (s *Service) publish(kind, id, outputPath string) {
	if s.events != nil {
		s.events.PublishConversionEvent(kind, id, outputPath)
	}
}

func successMessage(verb, outputFile string, resolvedFilters []string, defaultsFile string) string {
	var b strings.Builder
	b.WriteString("File successfully ")
	b.WriteString(verb)

	if len(resolvedFilters) > 0 {
		names := make([]string, len(resolvedFilters))
		for i, f := range resolvedFilters {
			names[i] = filepath.Base(f)
		}
		fmt.Fprintf(&b, " with filters: %s", strings.Join(names, ", "))
	}
	if defaultsFile != "" {
		fmt.Fprintf(&b, " using defaults file: %s", filepath.Base(defaultsFile))
	}

	fmt.Fprintf(&b, " and saved to: %s", outputFile)
	return b.String()
}
