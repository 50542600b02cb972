package results

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtctl/internal/api"
)

var reportTime = time.Date(2024, 1, 12, 9, 30, 0, 0, time.UTC)

func TestSummarize(t *testing.T) {
	s := Summarize([]Record{
		{Status: StatusPassed, Duration: 100},
		{Status: StatusPassed, Duration: 50},
		{Status: StatusFailed},
	})

	assert.Equal(t, Summary{
		TotalTests:    3,
		Passed:        2,
		Failed:        1,
		PassRate:      66.67,
		ExecutionTime: 150,
	}, s)
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestCompile_MarkdownSections(t *testing.T) {
	records := []Record{
		{TestID: "TC-A-001", Status: StatusPassed, Duration: 1500, Executor: "alice", ExecutionDate: "2024-01-01"},
		{TestID: "TC-B-001", Status: StatusFailed},
	}
	in := ReportInput{Title: "Sprint 12", Description: "Regression run", Format: FormatMarkdown}

	report := Compile(records, []string{"No report.md found in junk"}, in, reportTime)

	_, err := uuid.Parse(report.ReportID)
	assert.NoError(t, err)
	require.Len(t, report.Sections, 5)

	assert.Equal(t, "## Test Execution Summary\n\nRegression run\n\n"+
		"**Total Tests:** 2\n**Passed:** 1\n**Failed:** 1\n**Skipped:** 0\n**Pending:** 0\n"+
		"**Pass Rate:** 50%\n**Total Execution Time:** 1500ms", report.Sections[0].Content)

	assert.Equal(t, "## Test Results\n\n"+
		"| Test ID | Status | Duration | Executor |\n"+
		"|---------|--------|----------|----------|\n"+
		"| TC-A-001 | passed | 1500ms | alice |\n"+
		"| TC-B-001 | failed | N/A | N/A |\n", report.Sections[1].Content)

	assert.Equal(t, "## TC-A-001\n\n**Status:** passed\n**Execution Date:** 2024-01-01\n**Duration:** 1500ms\n**Executor:** alice\n", report.Sections[2].Content)
	assert.Equal(t, SectionError, report.Sections[4].Type)
	assert.Equal(t, "## Warnings\n\n- No report.md found in junk", report.Sections[4].Content)

	md := string(mustRender(t, report, FormatMarkdown))
	assert.Contains(t, md, "# Sprint 12\n\n*Generated on 2024-01-12T09:30:00.000Z*\n\n## Test Execution Summary")
}

func TestCompile_WithoutSummaryOrResults(t *testing.T) {
	off := false
	report := Compile(nil, nil, ReportInput{Title: defaultReportTitle, IncludeSummary: &off}, reportTime)

	require.Len(t, report.Sections, 1)
	assert.Equal(t, "## Test Results\n\nNo test results found.", report.Sections[0].Content)
	assert.Equal(t, []string{}, report.Warnings)
}

func TestCompile_ScreenshotLink(t *testing.T) {
	records := []Record{{TestID: "TC-A-001", Status: StatusPassed, ScreenshotPath: "/data/results/2024-01-01_TC-A-001/screenshot.png"}}

	report := Compile(records, nil, ReportInput{OutputPath: "/data/reports/out.md", IncludeScreenshots: true}, reportTime)

	assert.Contains(t, report.Sections[2].Content, "\n**Screenshot:**\n![Screenshot](../results/2024-01-01_TC-A-001/screenshot.png)")
}

func mustRender(t *testing.T, r *Report, f Format) []byte {
	t.Helper()
	out, err := Render(r, f)
	require.NoError(t, err)
	return out
}

func TestRender_HTMLAndJSON(t *testing.T) {
	records := []Record{{TestID: "TC-<X>-001", Status: StatusPassed}}
	report := Compile(records, nil, ReportInput{Title: "Nightly"}, reportTime)

	html := string(mustRender(t, report, FormatHTML))
	assert.Contains(t, html, "<title>Nightly</title>")
	assert.Contains(t, html, "TC-&lt;X&gt;-001")
	assert.Contains(t, html, "<strong>Pass Rate:</strong> 100%")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(mustRender(t, report, FormatJSON), &decoded))
	assert.Equal(t, "Nightly", decoded["title"])
	assert.Equal(t, report.ReportID, decoded["reportId"])
}

func TestRender_HTMLDetailSections(t *testing.T) {
	records := []Record{{
		TestID:         "TC-A-001",
		Status:         StatusFailed,
		Title:          "Login works",
		Browser:        "firefox",
		ScreenshotPath: "/data/results/2024-01-01_TC-A-001/screenshot.png",
	}}

	withShots := string(mustRender(t, Compile(records, nil, ReportInput{OutputPath: "/data/reports/out.html", IncludeScreenshots: true}, reportTime), FormatHTML))
	assert.Contains(t, withShots, "<h2>TC-A-001</h2>")
	assert.Contains(t, withShots, "<li><strong>Title:</strong> Login works</li>")
	assert.Contains(t, withShots, "<li><strong>Browser:</strong> firefox</li>")
	assert.Contains(t, withShots, `<a href="../results/2024-01-01_TC-A-001/screenshot.png">`)

	withoutShots := string(mustRender(t, Compile(records, nil, ReportInput{OutputPath: "/data/reports/out.html"}, reportTime), FormatHTML))
	assert.Contains(t, withoutShots, "<li><strong>Title:</strong> Login works</li>")
	assert.NotContains(t, withoutShots, "screenshot.png")
}

func TestGenerate(t *testing.T) {
	root := seedResults(t)
	out := filepath.Join(t.TempDir(), "nested", "report.md")

	res, err := Generate(ReportInput{ResultsDir: root, OutputPath: out}, reportTime)

	require.NoError(t, err)
	assert.Equal(t, "Report generated successfully at "+out, res.Message)
	assert.Equal(t, out, res.ReportPath)
	assert.Equal(t, defaultReportTitle, res.Report.Title)
	assert.Equal(t, 3, res.Report.Summary.TotalTests)

	written, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(written), "# Test Execution Report")
	assert.Contains(t, string(written), "- No report.md found in 2024-01-04_TC-D-001")
}

func TestGenerate_InputErrors(t *testing.T) {
	tests := []struct {
		name    string
		in      ReportInput
		wantErr string
	}{
		{"no results dir", ReportInput{OutputPath: "x.md"}, "resultsDir is required and must be a string"},
		{"no output", ReportInput{ResultsDir: "r"}, "outputPath is required and must be a string"},
		{"bad format", ReportInput{ResultsDir: "r", OutputPath: "x", Format: "pdf"}, "format must be one of: markdown, html, json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(tt.in, reportTime)

			require.Error(t, err)
			assert.True(t, api.IsInputError(err))
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}
