package results

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"mtctl/internal/api"
	"mtctl/pkg/logging"
)

const (
	reportFileName     = "report.md"
	screenshotFileName = "screenshot.png"
	logFileName        = "log.txt"
)

// Status is the outcome of one test execution.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
	StatusPending Status = "pending"
)

// Statuses lists every known status.
var Statuses = []Status{StatusPassed, StatusFailed, StatusSkipped, StatusPending}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Record summarises one result directory. It is recomputed on every scan.
type Record struct {
	TestID         string    `json:"testId"`
	Title          string    `json:"title,omitempty"`
	ExecutionDate  string    `json:"executionDate"`
	Status         Status    `json:"status"`
	Duration       int64     `json:"duration,omitempty"`
	Executor       string    `json:"executor,omitempty"`
	Environment    string    `json:"environment,omitempty"`
	Browser        string    `json:"browser,omitempty"`
	Size           int64     `json:"size"`
	LastModified   time.Time `json:"lastModified"`
	DirectoryName  string    `json:"directoryName"`
	DirectoryPath  string    `json:"directoryPath"`
	ReportPath     string    `json:"reportPath,omitempty"`
	ScreenshotPath string    `json:"screenshotPath,omitempty"`
	LogPath        string    `json:"logPath,omitempty"`

	// HasReport is false when the directory carries no report.md.
	HasReport bool `json:"-"`
}

// Scan is the raw outcome of reading a results directory.
type Scan struct {
	Records  []Record
	Warnings []string
}

// Reported returns the records backed by a report.md and appends a warning
// for every directory without one.
func (s *Scan) Reported() ([]Record, []string) {
	records := make([]Record, 0, len(s.Records))
	warnings := append([]string{}, s.Warnings...)
	for _, r := range s.Records {
		if !r.HasReport {
			warnings = append(warnings, fmt.Sprintf("No report.md found in %s", r.DirectoryName))
			continue
		}
		records = append(records, r)
	}
	return records, warnings
}

// ScanDir reads every direct subdirectory of dir. A directory that cannot be
// inspected is reported as a warning and skipped.
func ScanDir(dir string) (*Scan, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, api.NotFound("Results directory does not exist: %s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read results directory %s: %w", dir, err)
	}

	scan := &Scan{Records: []Record{}, Warnings: []string{}}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		record, err := readRecord(filepath.Join(dir, entry.Name()))
		if err != nil {
			logging.Debug("Results", "Skipping %s: %v", entry.Name(), err)
			scan.Warnings = append(scan.Warnings, fmt.Sprintf("Failed to process %s: %v", entry.Name(), err))
			continue
		}
		scan.Records = append(scan.Records, record)
	}
	return scan, nil
}

func readRecord(dirPath string) (Record, error) {
	name := filepath.Base(dirPath)
	r := Record{
		DirectoryName: name,
		DirectoryPath: dirPath,
	}

	reportPath := filepath.Join(dirPath, reportFileName)
	if content, err := os.ReadFile(reportPath); err == nil {
		r.HasReport = true
		r.ReportPath = reportPath
		applyMetadata(&r, ParseReportMetadata(string(content)))
	} else if !os.IsNotExist(err) {
		return Record{}, err
	}

	date, testID := splitDirName(name)
	if r.TestID == "" {
		r.TestID = testID
	}
	if r.ExecutionDate == "" {
		r.ExecutionDate = date
	}
	if !r.Status.Valid() {
		r.Status = StatusPending
	}

	if fileExists(filepath.Join(dirPath, screenshotFileName)) {
		r.ScreenshotPath = filepath.Join(dirPath, screenshotFileName)
	}
	if fileExists(filepath.Join(dirPath, logFileName)) {
		r.LogPath = filepath.Join(dirPath, logFileName)
	}

	size, modified, err := directoryUsage(dirPath)
	if err != nil {
		return Record{}, err
	}
	r.Size = size
	r.LastModified = modified
	return r, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// directoryUsage sums file sizes below dir and returns the newest
// modification time of dir itself or anything inside it.
func directoryUsage(dir string) (int64, time.Time, error) {
	var size int64
	var latest time.Time
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			size += info.Size()
		}
		if info.ModTime().After(latest) {
			latest = info.ModTime()
		}
		return nil
	})
	return size, latest, err
}

var datePrefix = regexp.MustCompile(`^[0-9][0-9-]*$`)

// splitDirName applies the <date>_<testId> naming convention. Names that do
// not follow it yield no date and the whole name as id.
func splitDirName(name string) (date, testID string) {
	prefix, rest, ok := strings.Cut(name, "_")
	if !ok || rest == "" || !datePrefix.MatchString(prefix) {
		return "", name
	}
	return prefix, rest
}

// Metadata is what a report.md declares about its execution.
type Metadata struct {
	TestID        string
	Title         string
	ExecutionDate string
	Status        string
	Duration      int64
	Executor      string
	Environment   string
	Browser       string
}

type metadataPattern struct {
	field string
	re    *regexp.Regexp
	apply func(*Metadata, string)
}

// Both report layouts are accepted: the Japanese bullet list
// ("- テストID: ...") and the English bold labels ("**Test ID**: ...").
var metadataPatterns = []metadataPattern{
	{"testId", regexp.MustCompile(`(?m)^\s*- テストID:\s*(.+)$`), func(m *Metadata, v string) { m.TestID = v }},
	{"executionDate", regexp.MustCompile(`(?m)^\s*- 実行日:\s*(.+)$`), func(m *Metadata, v string) { m.ExecutionDate = v }},
	{"status", regexp.MustCompile(`(?m)^\s*- ステータス:\s*(\S+)`), func(m *Metadata, v string) { m.Status = v }},
	{"duration", regexp.MustCompile(`(?m)^\s*- 実行時間:\s*(\d+)ms`), setDuration},
	{"executor", regexp.MustCompile(`(?m)^\s*- 実行者:\s*(.+)$`), func(m *Metadata, v string) { m.Executor = v }},
	{"environment", regexp.MustCompile(`(?m)^\s*- 環境:\s*(.+)$`), func(m *Metadata, v string) { m.Environment = v }},
	{"browser", regexp.MustCompile(`(?m)^\s*- ブラウザ:\s*(.+)$`), func(m *Metadata, v string) { m.Browser = v }},
	{"testId", regexp.MustCompile(`\*\*Test ID\*\*:\s*([^\n]+)`), func(m *Metadata, v string) { m.TestID = v }},
	{"title", regexp.MustCompile(`\*\*Title\*\*:\s*([^\n]+)`), func(m *Metadata, v string) { m.Title = v }},
	{"status", regexp.MustCompile(`\*\*Status\*\*:\s*([^\n]+)`), func(m *Metadata, v string) { m.Status = v }},
	{"executionDate", regexp.MustCompile(`\*\*Execution Date\*\*:\s*([^\n]+)`), func(m *Metadata, v string) { m.ExecutionDate = v }},
	{"duration", regexp.MustCompile(`\*\*Duration\*\*:\s*(\d+)ms`), setDuration},
	{"executor", regexp.MustCompile(`\*\*Executor\*\*:\s*([^\n]+)`), func(m *Metadata, v string) { m.Executor = v }},
	{"environment", regexp.MustCompile(`\*\*Environment\*\*:\s*([^\n]+)`), func(m *Metadata, v string) { m.Environment = v }},
	{"browser", regexp.MustCompile(`\*\*Browser\*\*:\s*([^\n]+)`), func(m *Metadata, v string) { m.Browser = v }},
}

func setDuration(m *Metadata, v string) {
	if d, err := strconv.ParseInt(v, 10, 64); err == nil {
		m.Duration = d
	}
}

// ParseReportMetadata extracts the execution metadata from report.md text.
// When a field appears in both layouts the Japanese one wins.
func ParseReportMetadata(content string) Metadata {
	var m Metadata
	seen := map[string]bool{}
	for _, p := range metadataPatterns {
		if seen[p.field] {
			continue
		}
		match := p.re.FindStringSubmatch(content)
		if match == nil {
			continue
		}
		seen[p.field] = true
		p.apply(&m, strings.TrimSpace(match[1]))
	}
	m.Status = strings.ToLower(m.Status)
	return m
}

func applyMetadata(r *Record, m Metadata) {
	r.TestID = m.TestID
	r.Title = m.Title
	r.ExecutionDate = m.ExecutionDate
	r.Status = Status(m.Status)
	r.Duration = m.Duration
	r.Executor = m.Executor
	r.Environment = m.Environment
	r.Browser = m.Browser
}
