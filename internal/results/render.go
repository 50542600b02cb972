package results

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
)

// Render serialises a compiled report in the requested format.
func Render(r *Report, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(r, "", "  ")
	case FormatHTML:
		return renderHTML(r)
	default:
		return []byte(renderMarkdown(r)), nil
	}
}

func renderMarkdown(r *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Title)
	fmt.Fprintf(&b, "*Generated on %s*\n\n", r.GeneratedAt)
	for _, s := range r.Sections {
		b.WriteString(s.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}

var htmlReport = template.Must(template.New("report").Funcs(template.FuncMap{
	"duration": durationText,
	"na":       orNA,
	"rate":     formatRate,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{ .Title }}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 4px 8px; text-align: left; }
.passed { color: #1a7f37; }
.failed { color: #cf222e; }
.skipped { color: #9a6700; }
.pending { color: #57606a; }
</style>
</head>
<body>
<h1>{{ .Title }}</h1>
<p><em>Generated on {{ .GeneratedAt }}</em></p>
{{- if .IncludeSummary }}
<h2>Test Execution Summary</h2>
{{- with .Description }}
<p>{{ . }}</p>
{{- end }}
<ul>
<li><strong>Total Tests:</strong> {{ .Summary.TotalTests }}</li>
<li><strong>Passed:</strong> {{ .Summary.Passed }}</li>
<li><strong>Failed:</strong> {{ .Summary.Failed }}</li>
<li><strong>Skipped:</strong> {{ .Summary.Skipped }}</li>
<li><strong>Pending:</strong> {{ .Summary.Pending }}</li>
<li><strong>Pass Rate:</strong> {{ rate .Summary.PassRate }}%</li>
{{- if .Summary.ExecutionTime }}
<li><strong>Total Execution Time:</strong> {{ .Summary.ExecutionTime }}ms</li>
{{- end }}
</ul>
{{- end }}
<h2>Test Results</h2>
{{- if .Results }}
<table>
<tr><th>Test ID</th><th>Status</th><th>Duration</th><th>Executor</th></tr>
{{- range .Results }}
<tr><td>{{ .TestID }}</td><td class="{{ .Status }}">{{ .Status }}</td><td>{{ duration .Duration }}</td><td>{{ na .Executor }}</td></tr>
{{- end }}
</table>
{{- else }}
<p>No test results found.</p>
{{- end }}
{{- range .Views }}
<h2>{{ .TestID }}</h2>
<ul>
{{- range .Details }}
<li><strong>{{ .Label }}:</strong> {{ .Value }}</li>
{{- end }}
</ul>
{{- with .Screenshot }}
<p><strong>Screenshot:</strong><br><a href="{{ . }}"><img src="{{ . }}" alt="Screenshot"></a></p>
{{- end }}
{{- end }}
{{- if .Warnings }}
<h2>Warnings</h2>
<ul>
{{- range .Warnings }}
<li>{{ . }}</li>
{{- end }}
</ul>
{{- end }}
</body>
</html>
`))

func renderHTML(r *Report) ([]byte, error) {
	data := struct {
		*Report
		IncludeSummary bool
		Views          []recordView
	}{r, r.includeSummary, r.views}

	var buf bytes.Buffer
	if err := htmlReport.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render html report: %w", err)
	}
	return buf.Bytes(), nil
}
