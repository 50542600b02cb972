package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"mtctl/internal/results"
	"mtctl/internal/testcase"
)

// OutputFormat represents the output format for CLI commands
type OutputFormat string

const (
	OutputFormatTable OutputFormat = "table"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatYAML  OutputFormat = "yaml"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case OutputFormatTable, OutputFormatJSON, OutputFormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s (expected table, json or yaml)", s)
	}
}

const titleWidth = 40

// Printer writes command output in the selected format.
type Printer struct {
	out    io.Writer
	format OutputFormat
}

// NewPrinter creates a printer writing to out.
func NewPrinter(out io.Writer, format OutputFormat) *Printer {
	return &Printer{out: out, format: format}
}

// Out is the destination writer.
func (p *Printer) Out() io.Writer { return p.out }

// Structured prints v as JSON or YAML when one of those formats is
// selected and reports whether it did. Table output is left to the caller.
func (p *Printer) Structured(v interface{}) (bool, error) {
	switch p.format {
	case OutputFormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return true, fmt.Errorf("failed to encode JSON: %w", err)
		}
		fmt.Fprintln(p.out, string(data))
		return true, nil
	case OutputFormatYAML:
		return true, p.yaml(v)
	default:
		return false, nil
	}
}

// yaml goes through JSON first so the json field names are kept.
func (p *Printer) yaml(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	yamlData, err := yaml.Marshal(generic)
	if err != nil {
		return fmt.Errorf("failed to convert to YAML: %w", err)
	}
	fmt.Fprint(p.out, string(yamlData))
	return nil
}

func (p *Printer) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.SetStyle(table.StyleRounded)
	return t
}

func header(columns ...string) table.Row {
	row := make(table.Row, len(columns))
	for i, col := range columns {
		row[i] = text.FgHiCyan.Sprint(col)
	}
	return row
}

// TestCases renders a test-case listing.
func (p *Printer) TestCases(files []testcase.File) {
	if len(files) == 0 {
		fmt.Fprintln(p.out, text.FgYellow.Sprint("No test cases found"))
		return
	}

	t := p.newTable()
	t.AppendHeader(header("ID", "TITLE", "FEATURE", "PRIORITY", "TAGS", "FILE"))
	for _, f := range files {
		t.AppendRow(table.Row{
			f.Meta.ID,
			Truncate(f.Meta.Title, titleWidth),
			orDash(f.Meta.Feature),
			formatPriority(f.Meta.Priority),
			orDash(strings.Join(f.Meta.Tags, ", ")),
			f.FileName,
		})
	}
	t.Render()
	fmt.Fprintf(p.out, "\n%s %d\n", text.FgHiBlue.Sprint("Total:"), len(files))
}

// Results renders one page of a results listing.
func (p *Printer) Results(records []results.Record, total, filtered int) {
	if len(records) == 0 {
		fmt.Fprintln(p.out, text.FgYellow.Sprint("No results found"))
	} else {
		t := p.newTable()
		t.AppendHeader(header("TEST ID", "DATE", "STATUS", "DURATION", "EXECUTOR", "ENVIRONMENT", "SIZE"))
		for _, r := range records {
			t.AppendRow(table.Row{
				r.TestID,
				orDash(r.ExecutionDate),
				formatStatus(r.Status),
				formatDuration(r.Duration),
				orDash(r.Executor),
				orDash(r.Environment),
				humanize.Bytes(uint64(r.Size)),
			})
		}
		t.Render()
	}
	fmt.Fprintf(p.out, "\n%s %d of %d matching (%d scanned)\n",
		text.FgHiBlue.Sprint("Showing:"), len(records), filtered, total)
}

// CleanedItems renders the directories a cleanup removed or would remove.
func (p *Printer) CleanedItems(items []results.CleanedItem) {
	if len(items) == 0 {
		fmt.Fprintln(p.out, text.FgYellow.Sprint("Nothing matched the cleanup criteria"))
		return
	}

	t := p.newTable()
	t.AppendHeader(header("TEST ID", "STATUS", "SIZE", "REASON"))
	for _, item := range items {
		t.AppendRow(table.Row{
			orDash(item.TestID),
			formatStatus(item.Status),
			humanize.Bytes(uint64(item.Size)),
			item.Reason,
		})
	}
	t.Render()
}

// KeyValues renders an object as property/value rows, sorted by key.
func (p *Printer) KeyValues(data map[string]interface{}) {
	t := p.newTable()
	t.AppendHeader(header("PROPERTY", "VALUE"))

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		t.AppendRow(table.Row{text.FgYellow.Sprint(key), formatCellValue(data[key])})
	}
	t.Render()
}

// Lines prints a bulleted list under a heading.
func (p *Printer) Lines(heading string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintln(p.out, text.FgHiBlue.Sprint(heading))
	for _, line := range lines {
		fmt.Fprintf(p.out, "  - %s\n", line)
	}
}

// Truncate shortens s to at most width terminal cells, counting wide
// characters as two.
func Truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

func orDash(s string) interface{} {
	if s == "" {
		return text.FgHiBlack.Sprint("-")
	}
	return s
}

func formatPriority(p testcase.Priority) string {
	switch p {
	case testcase.PriorityHigh:
		return text.FgRed.Sprint(string(p))
	case testcase.PriorityMedium:
		return text.FgYellow.Sprint(string(p))
	default:
		return text.FgHiBlack.Sprint(string(p))
	}
}

func formatStatus(s results.Status) string {
	switch s {
	case results.StatusPassed:
		return text.FgGreen.Sprint("✅ " + string(s))
	case results.StatusFailed:
		return text.FgRed.Sprint("❌ " + string(s))
	case results.StatusSkipped:
		return text.FgYellow.Sprint("⏭  " + string(s))
	case results.StatusPending:
		return text.FgHiBlack.Sprint("⏳ " + string(s))
	default:
		return string(s)
	}
}

func formatDuration(ms int64) interface{} {
	if ms == 0 {
		return text.FgHiBlack.Sprint("-")
	}
	return fmt.Sprintf("%dms", ms)
}

func formatCellValue(value interface{}) interface{} {
	switch v := value.(type) {
	case nil:
		return text.FgHiBlack.Sprint("-")
	case string:
		return Truncate(v, 60)
	case []interface{}:
		if len(v) == 0 {
			return text.FgHiBlack.Sprint("none")
		}
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = fmt.Sprintf("%v", item)
		}
		return strings.Join(parts, "\n")
	case map[string]interface{}:
		return text.FgHiBlack.Sprintf("[%d fields]", len(v))
	default:
		return fmt.Sprintf("%v", v)
	}
}
