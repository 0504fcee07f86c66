package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

// OutputFormat selects how command results are rendered.
type OutputFormat string

const (
	// FormatText renders human-readable text
	FormatText OutputFormat = "text"
	// FormatJSON renders structured JSON
	FormatJSON OutputFormat = "json"
)

// Formatter renders command results in one output format.
type Formatter interface {
	// PrintSuccess reports a passed verdict
	PrintSuccess(message string) error
	// PrintError reports a failed verdict
	PrintError(message string) error
	// PrintTable renders rows under the given headers
	PrintTable(headers []string, rows [][]string) error
	// PrintJSON renders arbitrary data as indented JSON
	PrintJSON(data any) error
}

// NewFormatter returns the formatter for the requested format, writing
// to w. A nil writer falls back to stdout.
func NewFormatter(format OutputFormat, w io.Writer) Formatter {
	if w == nil {
		w = os.Stdout
	}
	if format == FormatJSON {
		return NewJSONFormatter(w)
	}
	return NewTextFormatter(w)
}

// VerdictMark returns the pass or fail mark used on verdict lines.
// Color degrades to plain text on non-terminal output.
func VerdictMark(ok bool) string {
	if ok {
		return color.New(color.FgGreen).Sprint("✓")
	}
	return color.New(color.FgRed, color.Bold).Sprint("✗")
}

// TextFormatter renders results as human-readable text.
type TextFormatter struct {
	writer io.Writer
}

// NewTextFormatter creates a TextFormatter writing to w.
func NewTextFormatter(w io.Writer) *TextFormatter {
	if w == nil {
		w = os.Stdout
	}
	return &TextFormatter{writer: w}
}

// PrintSuccess prints the message behind a pass mark.
func (f *TextFormatter) PrintSuccess(message string) error {
	_, err := fmt.Fprintf(f.writer, "%s %s\n", VerdictMark(true), message)
	return err
}

// PrintError prints the message behind a fail mark.
func (f *TextFormatter) PrintError(message string) error {
	_, err := fmt.Fprintf(f.writer, "%s %s\n", VerdictMark(false), message)
	return err
}

// PrintTable renders an aligned table: uppercase headers, a dashed
// separator line, one line per row.
func (f *TextFormatter) PrintTable(headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(f.writer, 0, 0, 2, ' ', 0)

	header := make([]string, len(headers))
	dashes := make([]string, len(headers))
	for i, h := range headers {
		header[i] = strings.ToUpper(h)
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	return tw.Flush()
}

// PrintJSON renders data as indented JSON even in text mode.
func (f *TextFormatter) PrintJSON(data any) error {
	return encodeJSON(f.writer, data)
}

// JSONFormatter renders every result as structured JSON.
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a JSONFormatter writing to w.
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	if w == nil {
		w = os.Stdout
	}
	return &JSONFormatter{writer: w}
}

// statusResult is the JSON shape of a verdict line.
type statusResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// PrintSuccess reports a passed verdict as a status object.
func (f *JSONFormatter) PrintSuccess(message string) error {
	return f.PrintJSON(statusResult{Status: "success", Message: message})
}

// PrintError reports a failed verdict as a status object.
func (f *JSONFormatter) PrintError(message string) error {
	return f.PrintJSON(statusResult{Status: "error", Message: message})
}

// PrintTable renders the table as an object list keyed by header. Rows
// shorter than the header set pad with empty strings.
func (f *JSONFormatter) PrintTable(headers []string, rows [][]string) error {
	data := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		entry := make(map[string]string, len(headers))
		for i, h := range headers {
			value := ""
			if i < len(row) {
				value = row[i]
			}
			entry[h] = value
		}
		data = append(data, entry)
	}

	return f.PrintJSON(map[string]any{
		"headers": headers,
		"data":    data,
	})
}

// PrintJSON renders data as indented JSON.
func (f *JSONFormatter) PrintJSON(data any) error {
	return encodeJSON(f.writer, data)
}

func encodeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
