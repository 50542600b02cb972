package testcase

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"mtctl/internal/api"
	"mtctl/internal/listing"
)

// SortField names a key test cases can be ordered by.
type SortField string

const (
	SortByID          SortField = "id"
	SortByLastUpdated SortField = "lastUpdated"
	SortByPriority    SortField = "priority"
	SortByFeature     SortField = "feature"
)

// SortFields lists the accepted sort keys.
var SortFields = []SortField{SortByID, SortByLastUpdated, SortByPriority, SortByFeature}

// Filter narrows a listing. Empty fields impose no constraint; Tags match
// when any requested tag is present.
type Filter struct {
	Feature  string   `json:"feature,omitempty"`
	Priority Priority `json:"priority,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Author   string   `json:"author,omitempty"`
}

// File is a test case together with where it was read from.
type File struct {
	TestCase
	FileName string `json:"fileName"`
	FilePath string `json:"filePath"`
}

// Listing is the outcome of scanning a directory of test cases.
type Listing struct {
	TestCases  []File   `json:"testCases"`
	TotalCount int      `json:"totalCount"`
	Warnings   []string `json:"warnings"`
}

// ParseSortField validates a sort key; the empty string selects SortByID.
func ParseSortField(s string) (SortField, error) {
	if s == "" {
		return SortByID, nil
	}
	for _, f := range SortFields {
		if string(f) == s {
			return f, nil
		}
	}
	names := make([]string, len(SortFields))
	for i, f := range SortFields {
		names[i] = string(f)
	}
	return "", api.InvalidInput("sortBy must be one of: %s", strings.Join(names, ", "))
}

// List reads every .yml/.yaml file directly inside dir, keeps the valid test
// cases matching filter and orders them by sortBy. Unreadable or invalid
// files are reported as warnings.
func List(dir string, filter Filter, sortBy SortField) (*Listing, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, api.NotFound("Directory not found: %s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext := filepath.Ext(e.Name()); ext == ".yml" || ext == ".yaml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	files := make([]File, 0, len(names))
	warnings := []string{}
	for _, name := range names {
		path := filepath.Join(dir, name)
		tc, err := readFile(path)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %s", name, err))
			continue
		}
		files = append(files, File{TestCase: *tc, FileName: name, FilePath: path})
	}

	matched := listing.Filter(files, filter.predicates()...)
	listing.Sort(matched, comparator(sortBy))

	return &Listing{
		TestCases:  matched,
		TotalCount: len(matched),
		Warnings:   warnings,
	}, nil
}

func readFile(path string) (*TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}

func (f Filter) predicates() []listing.Predicate[File] {
	return []listing.Predicate[File]{
		listing.Equals(f.Feature, func(c File) string { return c.Meta.Feature }),
		listing.Equals(string(f.Priority), func(c File) string { return string(c.Meta.Priority) }),
		listing.AnyOf(f.Tags, func(c File) []string { return c.Meta.Tags }),
		listing.Equals(f.Author, func(c File) string { return c.Meta.Author }),
	}
}

func comparator(sortBy SortField) listing.Comparator[File] {
	switch sortBy {
	case SortByLastUpdated:
		return listing.Reverse(listing.ByString(func(c File) string { return c.Meta.LastUpdated }))
	case SortByPriority:
		return listing.ByInt64(func(c File) int64 { return int64(c.Meta.Priority.Rank()) })
	case SortByFeature:
		return listing.ByString(func(c File) string { return c.Meta.Feature })
	default:
		return listing.ByString(func(c File) string { return c.Meta.ID })
	}
}
