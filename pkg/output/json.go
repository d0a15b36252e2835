package output

import (
	"context"
	"encoding/json"
	"io"
)

// Document is the JSON shape shared by the CLI and the HTTP front-end:
// the rendered text under "report" plus the structured analysis.
type Document struct {
	Report   string  `json:"report"`
	Analysis *Report `json:"analysis,omitempty"`
}

// JSONFormatter formats reports as an indented JSON Document.
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a new JSON formatter with the given options.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Format renders the report as JSON. Quiet mode emits only the summary object.
func (f *JSONFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if f.opts.Quiet {
		return enc.Encode(report.Summary)
	}
	return enc.Encode(Document{Report: Render(report), Analysis: report})
}
