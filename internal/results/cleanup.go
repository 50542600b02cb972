package results

import (
	"fmt"
	"os"
	"strings"
	"time"

	"mtctl/internal/api"
	"mtctl/internal/listing"
	"mtctl/pkg/logging"
)

const bytesPerMB = 1024 * 1024

// Criteria selects results for removal. Nil fields are unset. When
// KeepMostRecent is set every other field is ignored.
type Criteria struct {
	OlderThanDays   *int     `json:"olderThanDays,omitempty"`
	BeforeDate      *string  `json:"beforeDate,omitempty"`
	IncludeStatuses []Status `json:"includeStatuses,omitempty"`
	LargerThanMB    *float64 `json:"largerThanMB,omitempty"`
	KeepMostRecent  *int     `json:"keepMostRecent,omitempty"`
}

// Validate checks that at least one criterion is set and that every set one
// is well formed.
func (c *Criteria) Validate() error {
	if c == nil {
		return api.InvalidInput("criteria is required")
	}
	if c.OlderThanDays == nil && c.BeforeDate == nil && len(c.IncludeStatuses) == 0 &&
		c.LargerThanMB == nil && c.KeepMostRecent == nil {
		return api.InvalidInput("At least one cleanup criteria must be specified")
	}
	if c.OlderThanDays != nil && *c.OlderThanDays < 0 {
		return api.InvalidInput("olderThanDays must be a non-negative number")
	}
	if c.BeforeDate != nil {
		if !isoDate.MatchString(*c.BeforeDate) {
			return api.InvalidInput("beforeDate must be in YYYY-MM-DD format")
		}
		if _, err := time.Parse("2006-01-02", *c.BeforeDate); err != nil {
			return api.InvalidInput("beforeDate must be in YYYY-MM-DD format")
		}
	}
	for _, s := range c.IncludeStatuses {
		if !s.Valid() {
			return api.InvalidInput("includeStatuses must only contain: passed, failed, skipped, pending")
		}
	}
	if c.LargerThanMB != nil && *c.LargerThanMB < 0 {
		return api.InvalidInput("largerThanMB must be a non-negative number")
	}
	if c.KeepMostRecent != nil && *c.KeepMostRecent < 1 {
		return api.InvalidInput("keepMostRecent must be a positive number")
	}
	return nil
}

// Match is one record selected for removal.
type Match struct {
	Record Record
	Reason string
}

type criterion struct {
	test   func(Record) bool
	reason func(Record) string
}

func (c *Criteria) criteria(now time.Time) []criterion {
	var out []criterion
	if c.OlderThanDays != nil {
		days := *c.OlderThanDays
		cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)
		out = append(out, criterion{
			test:   func(r Record) bool { return r.LastModified.Before(cutoff) },
			reason: func(Record) string { return fmt.Sprintf("older than %d days", days) },
		})
	}
	if c.BeforeDate != nil {
		date := *c.BeforeDate
		cutoff, _ := time.Parse("2006-01-02", date)
		out = append(out, criterion{
			test:   func(r Record) bool { return r.LastModified.Before(cutoff) },
			reason: func(Record) string { return "before date " + date },
		})
	}
	if len(c.IncludeStatuses) > 0 {
		statuses := c.IncludeStatuses
		out = append(out, criterion{
			test: func(r Record) bool {
				for _, s := range statuses {
					if r.Status == s {
						return true
					}
				}
				return false
			},
			reason: func(r Record) string { return fmt.Sprintf("status is %s", r.Status) },
		})
	}
	if c.LargerThanMB != nil {
		limit := *c.LargerThanMB
		out = append(out, criterion{
			test:   func(r Record) bool { return float64(r.Size)/bytesPerMB > limit },
			reason: func(Record) string { return fmt.Sprintf("larger than %s MB", formatMB(limit)) },
		})
	}
	return out
}

func formatMB(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%f", v), "0"), ".")
}

// Select splits records into those matching the criteria and those kept.
// The criteria must already be valid.
func Select(records []Record, c *Criteria, now time.Time) (matched []Match, kept []Record) {
	if c.KeepMostRecent != nil {
		return selectMostRecent(records, *c.KeepMostRecent)
	}

	criteria := c.criteria(now)
	for _, r := range records {
		var reasons []string
		hits := 0
		for _, cr := range criteria {
			if cr.test(r) {
				hits++
				reasons = append(reasons, cr.reason(r))
			}
		}

		// A single criterion decides on its own; with several, all must hold.
		if hits > 0 && hits == len(criteria) {
			matched = append(matched, Match{Record: r, Reason: strings.Join(reasons, ", ")})
		} else {
			kept = append(kept, r)
		}
	}
	return matched, kept
}

func selectMostRecent(records []Record, keep int) ([]Match, []Record) {
	sorted := append([]Record(nil), records...)
	listing.Sort(sorted, listing.Reverse(func(a, b Record) int {
		return a.LastModified.Compare(b.LastModified)
	}))

	var matched []Match
	var kept []Record
	reason := fmt.Sprintf("keeping most recent %d results", keep)
	for i, r := range sorted {
		if i < keep {
			kept = append(kept, r)
			continue
		}
		matched = append(matched, Match{Record: r, Reason: reason})
	}
	return matched, kept
}

// Remover deletes a result directory.
type Remover interface {
	RemoveAll(path string) error
}

// OSRemover removes directories from the local filesystem.
type OSRemover struct{}

func (OSRemover) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// CleanedItem describes one directory that was, or in a dry run would be,
// removed.
type CleanedItem struct {
	Path          string `json:"path"`
	Type          string `json:"type"`
	Size          int64  `json:"size"`
	TestID        string `json:"testId,omitempty"`
	ExecutionDate string `json:"executionDate,omitempty"`
	Status        Status `json:"status,omitempty"`
	Reason        string `json:"reason"`
}

// CleanupSummary is the outcome of a cleanup run.
type CleanupSummary struct {
	TotalItemsScanned int           `json:"totalItemsScanned"`
	TotalItemsCleaned int           `json:"totalItemsCleaned"`
	TotalSizeFreed    int64         `json:"totalSizeFreed"`
	CleanedItems      []CleanedItem `json:"cleanedItems"`
	SkippedItems      []string      `json:"skippedItems"`
	Errors            []string      `json:"errors"`
}

// CleanupResult wraps the summary with the run mode and a display message.
type CleanupResult struct {
	Summary CleanupSummary `json:"summary"`
	DryRun  bool           `json:"dryRun"`
	Force   bool           `json:"force,omitempty"`
	Message string         `json:"message"`
}

// CleanOptions configures a cleanup run. OnItem, when set, is called once per
// matched directory after it has been handled.
type CleanOptions struct {
	Criteria *Criteria
	DryRun   bool
	Force    bool
	OnItem   func(item CleanedItem, err error)
}

// Cleaner applies cleanup criteria to a results directory.
type Cleaner struct {
	remover Remover
	now     func() time.Time
}

// NewCleaner returns a Cleaner. A nil remover removes from the local
// filesystem and a nil clock uses time.Now.
func NewCleaner(remover Remover, now func() time.Time) *Cleaner {
	if remover == nil {
		remover = OSRemover{}
	}
	if now == nil {
		now = time.Now
	}
	return &Cleaner{remover: remover, now: now}
}

// Clean removes every result under dir matching the criteria. A failed
// removal is recorded and the run continues.
func (c *Cleaner) Clean(dir string, opts CleanOptions) (*CleanupResult, error) {
	if dir == "" {
		return nil, api.InvalidInput("resultsDir is required and must be a string")
	}
	if err := opts.Criteria.Validate(); err != nil {
		return nil, err
	}

	scan, err := ScanDir(dir)
	if err != nil {
		return nil, err
	}
	matched, kept := Select(scan.Records, opts.Criteria, c.now())

	summary := CleanupSummary{
		TotalItemsScanned: len(scan.Records),
		CleanedItems:      []CleanedItem{},
		SkippedItems:      make([]string, 0, len(kept)),
		Errors:            append([]string{}, scan.Warnings...),
	}
	for _, r := range kept {
		summary.SkippedItems = append(summary.SkippedItems, r.TestID)
	}

	for _, m := range matched {
		item := CleanedItem{
			Path:          m.Record.DirectoryPath,
			Type:          "directory",
			Size:          m.Record.Size,
			TestID:        m.Record.TestID,
			ExecutionDate: m.Record.ExecutionDate,
			Status:        m.Record.Status,
			Reason:        m.Reason,
		}

		var removeErr error
		if !opts.DryRun {
			removeErr = c.remover.RemoveAll(item.Path)
		}
		if removeErr != nil {
			logging.Error("Cleanup", removeErr, "Failed to delete %s", item.Path)
			summary.Errors = append(summary.Errors, fmt.Sprintf("Failed to delete %s: %v", item.Path, removeErr))
		} else {
			if !opts.DryRun {
				logging.Debug("Cleanup", "Removed %s (%s)", item.Path, item.Reason)
			}
			summary.CleanedItems = append(summary.CleanedItems, item)
			summary.TotalItemsCleaned++
			summary.TotalSizeFreed += item.Size
		}
		if opts.OnItem != nil {
			opts.OnItem(item, removeErr)
		}
	}

	result := &CleanupResult{Summary: summary, DryRun: opts.DryRun, Force: opts.Force}
	if opts.DryRun {
		result.Message = fmt.Sprintf("Dry run completed: %d items would be cleaned, %d bytes would be freed",
			summary.TotalItemsCleaned, summary.TotalSizeFreed)
	} else {
		result.Message = fmt.Sprintf("Cleanup completed: %d items cleaned, %d bytes freed",
			summary.TotalItemsCleaned, summary.TotalSizeFreed)
		logging.Info("Cleanup", "Removed %d result directories from %s", summary.TotalItemsCleaned, dir)
	}
	return result, nil
}
