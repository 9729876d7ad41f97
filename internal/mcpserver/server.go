// Package mcpserver exposes the document-conversion tools over the Model
// Context Protocol, via stdio or streamable HTTP transport.
package mcpserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/lequan310/file-mcp/internal/convert"
	"github.com/lequan310/file-mcp/internal/format"
)

// Server wraps the MCP server with the conversion tools.
type Server struct {
	mcp *server.MCPServer
	svc *convert.Service
}

// New creates an MCP server with both conversion tools registered.
func New(svc *convert.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"file-mcp",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	extList := strings.Join(format.SupportedExtensions(), ", ")

	s.mcp.AddTool(mcp.NewTool("create_file",
		mcp.WithDescription("Create a new file from text content (markdown or HTML) and save it to disk. "+
			"The output format is automatically determined from the file extension. "+
			"Supported extensions: "+extList+"."),
		mcp.WithString("content", mcp.Required(),
			mcp.Description("The text content to convert (markdown or HTML)")),
		mcp.WithString("output_file", mcp.Required(),
			mcp.Description("Complete path where to save the file including directory, filename, and extension. "+
				"The output format is inferred from the file extension. "+
				"Example: '/home/user/report.docx'.")),
		mcp.WithString("input_format", mcp.Required(),
			mcp.Description("Source format of the content. Supported: 'markdown', 'html'"),
			mcp.Enum("markdown", "html")),
		mcp.WithString("reference_doc",
			mcp.Description("Optional path to a reference DOCX file for styling (only for docx output)")),
		mcp.WithArray("filters",
			mcp.Description("Optional list of pandoc filter paths to apply during conversion, in order"),
			mcp.Items(map[string]any{"type": "string"})),
		mcp.WithString("defaults_file",
			mcp.Description("Optional path to a pandoc defaults YAML file for additional options")),
	), s.createFile)

	s.mcp.AddTool(mcp.NewTool("convert_file",
		mcp.WithDescription("Convert an existing file from one format to another. "+
			"Both input and output formats are automatically determined from the file extensions. "+
			"Supported extensions: "+extList+"."),
		mcp.WithString("input_file", mcp.Required(),
			mcp.Description("Complete path to the input file to convert. Must be an existing file.")),
		mcp.WithString("output_file", mcp.Required(),
			mcp.Description("Complete path where to save the converted file including extension. "+
				"The output format is inferred from the file extension. "+
				"Example: '/home/user/result.html'.")),
		mcp.WithString("reference_doc",
			mcp.Description("Optional path to a reference DOCX file for styling (only for docx output)")),
		mcp.WithArray("filters",
			mcp.Description("Optional list of pandoc filter paths to apply during conversion, in order"),
			mcp.Items(map[string]any{"type": "string"})),
		mcp.WithString("defaults_file",
			mcp.Description("Optional path to a pandoc defaults YAML file for additional options")),
	), s.convertFile)

	s.mcp.AddTool(mcp.NewTool("list_supported_formats",
		mcp.WithDescription("Return the supported formats, file extensions, and conversion option rules."),
	), s.listSupportedFormats)

	// Resource: supported formats and option rules.
	s.mcp.AddResource(
		mcp.NewResource("file-mcp://formats", "Supported Formats",
			mcp.WithResourceDescription("Supported formats, file extensions, and conversion option rules."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatsResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// HTTPHandler returns the streamable HTTP handler for mounting on a router.
func (s *Server) HTTPHandler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) createFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	outputFile, err := req.RequireString("output_file")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	inputFormat, err := req.RequireString("input_format")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts, optErr := optionsFromRequest(req)
	if optErr != nil {
		return mcp.NewToolResultError(optErr.Error()), nil
	}

	msg, err := s.svc.CreateFromText(ctx, content, outputFile, format.Format(inputFormat), opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(msg), nil
}

func (s *Server) convertFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	inputFile, err := req.RequireString("input_file")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	outputFile, err := req.RequireString("output_file")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	opts, optErr := optionsFromRequest(req)
	if optErr != nil {
		return mcp.NewToolResultError(optErr.Error()), nil
	}

	msg, err := s.svc.ConvertFile(ctx, inputFile, outputFile, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(msg), nil
}

func (s *Server) listSupportedFormats(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FormatGuide), nil
}

// optionsFromRequest extracts the optional knobs shared by both tools.
func optionsFromRequest(req mcp.CallToolRequest) (convert.Options, error) {
	var opts convert.Options

	if v, err := req.RequireString("reference_doc"); err == nil {
		opts.ReferenceDoc = v
	}
	if v, err := req.RequireString("defaults_file"); err == nil {
		opts.DefaultsFile = v
	}

	filters, err := stringSliceArg(req, "filters")
	if err != nil {
		return convert.Options{}, err
	}
	opts.Filters = filters

	return opts, nil
}

// stringSliceArg coerces an optional array argument into []string.
func stringSliceArg(req mcp.CallToolRequest, key string) ([]string, error) {
	raw, ok := req.GetArguments()[key]
	if !ok || raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s parameter must be a list of strings", key)
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("each %s entry must be a string path", key)
		}
		out = append(out, s)
	}
	return out, nil
}

func (s *Server) readFormatsResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "file-mcp://formats",
			MIMEType: "text/markdown",
			Text:     FormatGuide,
		},
	}, nil
}
