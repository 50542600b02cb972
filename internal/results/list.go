package results

import (
	"regexp"
	"strings"

	"mtctl/internal/api"
	"mtctl/internal/listing"
)

// SortField names a key results can be ordered by.
type SortField string

const (
	SortByExecutionDate SortField = "executionDate"
	SortByTestID        SortField = "testId"
	SortByStatus        SortField = "status"
	SortByDuration      SortField = "duration"
	SortBySize          SortField = "size"
)

// SortFields lists the accepted sort keys.
var SortFields = []SortField{SortByExecutionDate, SortByTestID, SortByStatus, SortByDuration, SortBySize}

var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ListFilter narrows a results listing. DateFrom and DateTo are inclusive
// YYYY-MM-DD bounds on the execution date.
type ListFilter struct {
	Status      Status `json:"status,omitempty"`
	TestID      string `json:"testId,omitempty"`
	Executor    string `json:"executor,omitempty"`
	Environment string `json:"environment,omitempty"`
	DateFrom    string `json:"dateFrom,omitempty"`
	DateTo      string `json:"dateTo,omitempty"`
}

// ListOptions controls filtering, ordering and paging.
type ListOptions struct {
	Filter    ListFilter    `json:"filter"`
	SortBy    SortField     `json:"sortBy,omitempty"`
	SortOrder listing.Order `json:"sortOrder,omitempty"`
	Limit     int           `json:"limit,omitempty"`
	Offset    int           `json:"offset,omitempty"`
}

// ListResult is one page of results. TotalCount counts every scanned
// result, FilteredCount those left after filtering and before paging.
type ListResult struct {
	Results       []Record `json:"results"`
	TotalCount    int      `json:"totalCount"`
	FilteredCount int      `json:"filteredCount"`
	Warnings      []string `json:"warnings"`
}

// Validate checks the options and fills in the default sort.
func (o *ListOptions) Validate() error {
	if o.Filter.DateFrom != "" && !isoDate.MatchString(o.Filter.DateFrom) {
		return api.InvalidInput("dateFrom must be in YYYY-MM-DD format")
	}
	if o.Filter.DateTo != "" && !isoDate.MatchString(o.Filter.DateTo) {
		return api.InvalidInput("dateTo must be in YYYY-MM-DD format")
	}
	if o.Filter.Status != "" && !o.Filter.Status.Valid() {
		return api.InvalidInput("status must be one of: passed, failed, skipped, pending")
	}

	if o.SortBy == "" {
		o.SortBy = SortByExecutionDate
	}
	if !validSortField(o.SortBy) {
		names := make([]string, len(SortFields))
		for i, f := range SortFields {
			names[i] = string(f)
		}
		return api.InvalidInput("sortBy must be one of: %s", strings.Join(names, ", "))
	}

	switch o.SortOrder {
	case "":
		o.SortOrder = listing.Desc
	case listing.Asc, listing.Desc:
	default:
		return api.InvalidInput("sortOrder must be asc or desc")
	}

	if o.Limit < 0 {
		return api.InvalidInput("limit must be a positive number")
	}
	if o.Offset < 0 {
		return api.InvalidInput("offset must be a non-negative number")
	}
	return nil
}

func validSortField(f SortField) bool {
	for _, known := range SortFields {
		if f == known {
			return true
		}
	}
	return false
}

// List scans dir and returns the requested page of results.
func List(dir string, opts ListOptions) (*ListResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	scan, err := ScanDir(dir)
	if err != nil {
		return nil, err
	}
	records, warnings := scan.Reported()

	filtered := listing.Filter(records, opts.Filter.predicates()...)
	listing.Sort(filtered, listing.WithOrder(comparator(opts.SortBy), opts.SortOrder))

	return &ListResult{
		Results:       listing.Paginate(filtered, opts.Offset, opts.Limit),
		TotalCount:    len(records),
		FilteredCount: len(filtered),
		Warnings:      warnings,
	}, nil
}

func (f ListFilter) predicates() []listing.Predicate[Record] {
	preds := []listing.Predicate[Record]{
		listing.Equals(string(f.Status), func(r Record) string { return string(r.Status) }),
		listing.Equals(f.TestID, func(r Record) string { return r.TestID }),
		listing.Equals(f.Executor, func(r Record) string { return r.Executor }),
		listing.Equals(f.Environment, func(r Record) string { return r.Environment }),
	}
	if f.DateFrom != "" {
		preds = append(preds, func(r Record) bool { return r.ExecutionDate >= f.DateFrom })
	}
	if f.DateTo != "" {
		preds = append(preds, func(r Record) bool { return dateOnly(r.ExecutionDate) <= f.DateTo })
	}
	return preds
}

// dateOnly trims a timestamp such as 2024-01-02T10:00:00Z to its date so
// the inclusive upper bound matches the whole day.
func dateOnly(s string) string {
	if len(s) > 10 && isoDate.MatchString(s[:10]) {
		return s[:10]
	}
	return s
}

// comparator returns the ascending order for a key; callers apply the
// requested direction.
func comparator(sortBy SortField) listing.Comparator[Record] {
	switch sortBy {
	case SortByTestID:
		return listing.ByString(func(r Record) string { return r.TestID })
	case SortByStatus:
		return listing.ByString(func(r Record) string { return string(r.Status) })
	case SortByDuration:
		return listing.ByInt64(func(r Record) int64 { return r.Duration })
	case SortBySize:
		return listing.ByInt64(func(r Record) int64 { return r.Size })
	default:
		return listing.ByString(func(r Record) string { return r.ExecutionDate })
	}
}
