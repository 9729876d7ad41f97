package mcpserver

// FormatGuide documents the supported formats and option rules. It is served
// as the file-mcp://formats resource so clients can discover what the tools
// accept without trial and error.
const FormatGuide = `# Supported Formats

## Input formats (create_file content)

| Format   | Name       |
|----------|------------|
| Markdown | ` + "`markdown`" + ` |
| HTML     | ` + "`html`" + `     |

## Output formats (inferred from the output file extension)

| Extension          | Format     |
|--------------------|------------|
| .md, .markdown     | markdown   |
| .html, .htm        | html       |
| .txt               | plain text |
| .pdf               | pdf        |
| .docx, .doc        | docx       |
| .odt               | odt        |
| .rst               | rst        |
| .tex, .latex       | latex      |
| .epub              | epub       |
| .ipynb             | ipynb      |

The output format is always derived from the extension of ` + "`output_file`" + `.
There is no explicit output format parameter.

## Option rules

- ` + "`reference_doc`" + `: only valid when the output format is docx. The file
  must exist and should itself be a DOCX document.
- ` + "`defaults_file`" + `: a pandoc defaults file in YAML. The file must exist,
  be readable, and parse to a YAML mapping. A ` + "`to:`" + ` key inside the
  defaults file is overridden by the format inferred from the output
  extension.
- ` + "`filters`" + `: paths to pandoc filters, applied in the order given. Each
  filter is looked up as an absolute path, relative to the working
  directory, next to the defaults file (when one is supplied), and finally
  by basename under ` + "`~/.pandoc/filters`" + `.

## PDF output

PDF conversion requires a LaTeX engine on the server's PATH. The first
available engine among xelatex, pdflatex, and lualatex is used.
`
