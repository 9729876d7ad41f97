// Package convert implements the validation and invocation pipeline behind
// the create_file and convert_file tools: parameter validation, filter
// resolution, pandoc argument assembly, and classified failure reporting.
package convert

// Options carries the optional conversion knobs shared by both tools. All
// values are request-scoped; nothing here outlives a single conversion.
type Options struct {
	// ReferenceDoc is a styling template, valid for docx output only.
	ReferenceDoc string
	// Filters are pandoc filter references, applied in order.
	Filters []string
	// DefaultsFile is a pandoc defaults YAML file.
	DefaultsFile string
}
