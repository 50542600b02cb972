package results

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"mtctl/internal/api"
	"mtctl/pkg/logging"
)

// Format selects how a report is rendered.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
)

const defaultReportTitle = "Test Execution Report"

// ReportInput configures report generation.
type ReportInput struct {
	ResultsDir         string `json:"resultsDir"`
	OutputPath         string `json:"outputPath"`
	Format             Format `json:"format,omitempty"`
	IncludeScreenshots bool   `json:"includeScreenshots,omitempty"`
	// IncludeSummary defaults to true when nil.
	IncludeSummary *bool  `json:"includeSummary,omitempty"`
	Title          string `json:"title,omitempty"`
	Description    string `json:"description,omitempty"`
}

// Summary aggregates a set of results.
type Summary struct {
	TotalTests    int     `json:"totalTests"`
	Passed        int     `json:"passed"`
	Failed        int     `json:"failed"`
	Skipped       int     `json:"skipped"`
	Pending       int     `json:"pending"`
	PassRate      float64 `json:"passRate"`
	ExecutionTime int64   `json:"executionTime,omitempty"`
}

// SectionType classifies a report section.
type SectionType string

const (
	SectionSummary SectionType = "summary"
	SectionDetail  SectionType = "test-detail"
	SectionError   SectionType = "error"
)

// Section is one rendered block of the markdown report.
type Section struct {
	Title   string      `json:"title"`
	Content string      `json:"content"`
	Type    SectionType `json:"type"`
}

// Report is the compiled report.
type Report struct {
	ReportID    string    `json:"reportId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	GeneratedAt string    `json:"generatedAt"`
	Summary     Summary   `json:"summary"`
	Sections    []Section `json:"sections"`
	Format      Format    `json:"format"`
	Results     []Record  `json:"results"`
	Warnings    []string  `json:"warnings"`

	includeSummary bool
	views          []recordView
}

// ReportOutput is what Generate returns after writing the report.
type ReportOutput struct {
	ReportPath string  `json:"reportPath"`
	Report     *Report `json:"report"`
	Message    string  `json:"message"`
}

func (in ReportInput) validate() (ReportInput, error) {
	if in.ResultsDir == "" {
		return in, api.InvalidInput("resultsDir is required and must be a string")
	}
	if in.OutputPath == "" {
		return in, api.InvalidInput("outputPath is required and must be a string")
	}
	switch in.Format {
	case "":
		in.Format = FormatMarkdown
	case FormatMarkdown, FormatHTML, FormatJSON:
	default:
		return in, api.InvalidInput("format must be one of: markdown, html, json")
	}
	if in.Title == "" {
		in.Title = defaultReportTitle
	}
	return in, nil
}

// Generate scans the results directory, compiles the report and writes it to
// the output path.
func Generate(in ReportInput, now time.Time) (*ReportOutput, error) {
	in, err := in.validate()
	if err != nil {
		return nil, err
	}

	scan, err := ScanDir(in.ResultsDir)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(in.OutputPath), 0755); err != nil {
		return nil, fmt.Errorf("Failed to create output directory: %w", err)
	}

	records, warnings := scan.Reported()
	report := Compile(records, warnings, in, now)

	content, err := Render(report, in.Format)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(in.OutputPath, content, 0644); err != nil {
		return nil, fmt.Errorf("failed to write report %s: %w", in.OutputPath, err)
	}

	logging.Info("Report", "Wrote %s report for %d results to %s", in.Format, len(records), in.OutputPath)
	return &ReportOutput{
		ReportPath: in.OutputPath,
		Report:     report,
		Message:    fmt.Sprintf("Report generated successfully at %s", in.OutputPath),
	}, nil
}

// Compile builds the report object and its markdown sections.
func Compile(records []Record, warnings []string, in ReportInput, now time.Time) *Report {
	summary := Summarize(records)
	includeSummary := in.IncludeSummary == nil || *in.IncludeSummary

	var sections []Section
	if includeSummary {
		sections = append(sections, summarySection(summary, in.Description))
	}
	sections = append(sections, resultsTableSection(records))
	sections = append(sections, detailSections(records, in)...)
	if len(warnings) > 0 {
		sections = append(sections, warningsSection(warnings))
	}

	if records == nil {
		records = []Record{}
	}
	if warnings == nil {
		warnings = []string{}
	}
	return &Report{
		ReportID:       uuid.NewString(),
		Title:          in.Title,
		Description:    in.Description,
		GeneratedAt:    now.UTC().Format("2006-01-02T15:04:05.000Z"),
		Summary:        summary,
		Sections:       sections,
		Format:         in.Format,
		Results:        records,
		Warnings:       warnings,
		includeSummary: includeSummary,
		views:          recordViews(records, in),
	}
}

// Summarize counts results per status. PassRate is a percentage rounded to
// two decimals.
func Summarize(records []Record) Summary {
	var s Summary
	for _, r := range records {
		s.TotalTests++
		switch r.Status {
		case StatusPassed:
			s.Passed++
		case StatusFailed:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		case StatusPending:
			s.Pending++
		}
		s.ExecutionTime += r.Duration
	}
	if s.TotalTests > 0 {
		s.PassRate = math.Round(float64(s.Passed)/float64(s.TotalTests)*10000) / 100
	}
	return s
}

func summarySection(s Summary, description string) Section {
	var b strings.Builder
	b.WriteString("## Test Execution Summary\n\n")
	if description != "" {
		b.WriteString(description + "\n\n")
	}
	fmt.Fprintf(&b, "**Total Tests:** %d\n", s.TotalTests)
	fmt.Fprintf(&b, "**Passed:** %d\n", s.Passed)
	fmt.Fprintf(&b, "**Failed:** %d\n", s.Failed)
	fmt.Fprintf(&b, "**Skipped:** %d\n", s.Skipped)
	fmt.Fprintf(&b, "**Pending:** %d\n", s.Pending)
	fmt.Fprintf(&b, "**Pass Rate:** %s%%", formatRate(s.PassRate))
	if s.ExecutionTime > 0 {
		fmt.Fprintf(&b, "\n**Total Execution Time:** %dms", s.ExecutionTime)
	}
	return Section{Title: "Summary", Content: b.String(), Type: SectionSummary}
}

func resultsTableSection(records []Record) Section {
	if len(records) == 0 {
		return Section{Title: "Test Results Table", Content: "## Test Results\n\nNo test results found.", Type: SectionDetail}
	}

	var b strings.Builder
	b.WriteString("## Test Results\n\n")
	b.WriteString("| Test ID | Status | Duration | Executor |\n")
	b.WriteString("|---------|--------|----------|----------|\n")
	for _, r := range records {
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", r.TestID, r.Status, durationText(r.Duration), orNA(r.Executor))
	}
	return Section{Title: "Test Results Table", Content: b.String(), Type: SectionDetail}
}

func detailSections(records []Record, in ReportInput) []Section {
	sections := make([]Section, 0, len(records))
	for _, r := range records {
		var b strings.Builder
		fmt.Fprintf(&b, "## %s\n\n", r.TestID)
		for _, d := range recordDetails(r) {
			fmt.Fprintf(&b, "**%s:** %s\n", d.Label, d.Value)
		}
		if link := screenshotLink(r, in); link != "" {
			fmt.Fprintf(&b, "\n**Screenshot:**\n![Screenshot](%s)", link)
		}
		sections = append(sections, Section{Title: r.TestID, Content: b.String(), Type: SectionDetail})
	}
	return sections
}

type detail struct{ Label, Value string }

// recordView is one per-test detail block of the html report.
type recordView struct {
	TestID     string
	Details    []detail
	Screenshot string
}

func recordViews(records []Record, in ReportInput) []recordView {
	views := make([]recordView, len(records))
	for i, r := range records {
		views[i] = recordView{TestID: r.TestID, Details: recordDetails(r), Screenshot: screenshotLink(r, in)}
	}
	return views
}

func recordDetails(r Record) []detail {
	all := []detail{
		{"Status", string(r.Status)},
		{"Title", r.Title},
		{"Execution Date", r.ExecutionDate},
		{"Duration", ""},
		{"Executor", r.Executor},
		{"Environment", r.Environment},
		{"Browser", r.Browser},
	}
	if r.Duration > 0 {
		all[3].Value = fmt.Sprintf("%dms", r.Duration)
	}
	out := all[:0]
	for _, d := range all {
		if d.Value != "" {
			out = append(out, d)
		}
	}
	return out
}

// screenshotLink is the screenshot path relative to the report location.
func screenshotLink(r Record, in ReportInput) string {
	if !in.IncludeScreenshots || r.ScreenshotPath == "" {
		return ""
	}
	rel, err := filepath.Rel(filepath.Dir(in.OutputPath), r.ScreenshotPath)
	if err != nil {
		return filepath.ToSlash(r.ScreenshotPath)
	}
	return filepath.ToSlash(rel)
}

func warningsSection(warnings []string) Section {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = "- " + w
	}
	return Section{
		Title:   "Warnings",
		Content: "## Warnings\n\n" + strings.Join(lines, "\n"),
		Type:    SectionError,
	}
}

func durationText(ms int64) string {
	if ms <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%dms", ms)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func formatRate(rate float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", rate), "0"), ".")
}
