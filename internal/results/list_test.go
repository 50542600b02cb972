package results

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mtctl/internal/api"
	"mtctl/internal/listing"
)

func seedResults(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	modified := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	writeResult(t, root, "2024-01-01_TC-A-001", "**Status**: passed\n**Duration**: 300ms\n**Executor**: alice\n", modified)
	writeResult(t, root, "2024-01-02_TC-B-001", "**Status**: failed\n**Duration**: 100ms\n**Executor**: bob\n**Environment**: staging\n", modified)
	writeResult(t, root, "2024-01-03_TC-C-001", "**Status**: passed\n**Duration**: 200ms\n**Executor**: alice\n**Environment**: staging\n", modified)
	writeResult(t, root, "2024-01-04_TC-D-001", "", modified)
	return root
}

func testIDs(records []Record) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.TestID
	}
	return ids
}

func TestList(t *testing.T) {
	root := seedResults(t)

	tests := []struct {
		name         string
		opts         ListOptions
		wantIDs      []string
		wantFiltered int
	}{
		{
			name:         "defaults to newest execution first",
			wantIDs:      []string{"TC-C-001", "TC-B-001", "TC-A-001"},
			wantFiltered: 3,
		},
		{
			name:         "status filter",
			opts:         ListOptions{Filter: ListFilter{Status: StatusPassed}},
			wantIDs:      []string{"TC-C-001", "TC-A-001"},
			wantFiltered: 2,
		},
		{
			name:         "executor and environment",
			opts:         ListOptions{Filter: ListFilter{Executor: "alice", Environment: "staging"}},
			wantIDs:      []string{"TC-C-001"},
			wantFiltered: 1,
		},
		{
			name:         "inclusive date range",
			opts:         ListOptions{Filter: ListFilter{DateFrom: "2024-01-02", DateTo: "2024-01-03"}, SortOrder: listing.Asc},
			wantIDs:      []string{"TC-B-001", "TC-C-001"},
			wantFiltered: 2,
		},
		{
			name:         "duration ascending",
			opts:         ListOptions{SortBy: SortByDuration, SortOrder: listing.Asc},
			wantIDs:      []string{"TC-B-001", "TC-C-001", "TC-A-001"},
			wantFiltered: 3,
		},
		{
			name:         "pagination",
			opts:         ListOptions{SortBy: SortByTestID, SortOrder: listing.Asc, Offset: 1, Limit: 1},
			wantIDs:      []string{"TC-B-001"},
			wantFiltered: 3,
		},
		{
			name:         "offset past the end",
			opts:         ListOptions{Offset: 10},
			wantIDs:      []string{},
			wantFiltered: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := List(root, tt.opts)

			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, testIDs(res.Results))
			assert.Equal(t, 3, res.TotalCount)
			assert.Equal(t, tt.wantFiltered, res.FilteredCount)
			assert.Equal(t, []string{"No report.md found in 2024-01-04_TC-D-001"}, res.Warnings)
		})
	}
}

func TestListOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    ListOptions
		wantErr string
	}{
		{"bad dateFrom", ListOptions{Filter: ListFilter{DateFrom: "01/02/2024"}}, "dateFrom must be in YYYY-MM-DD format"},
		{"bad dateTo", ListOptions{Filter: ListFilter{DateTo: "2024-1-2"}}, "dateTo must be in YYYY-MM-DD format"},
		{"bad status", ListOptions{Filter: ListFilter{Status: "broken"}}, "status must be one of: passed, failed, skipped, pending"},
		{"bad sortBy", ListOptions{SortBy: "title"}, "sortBy must be one of: executionDate, testId, status, duration, size"},
		{"bad sortOrder", ListOptions{SortOrder: "up"}, "sortOrder must be asc or desc"},
		{"negative limit", ListOptions{Limit: -1}, "limit must be a positive number"},
		{"negative offset", ListOptions{Offset: -1}, "offset must be a non-negative number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()

			require.Error(t, err)
			assert.True(t, api.IsInputError(err))
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}

	t.Run("defaults", func(t *testing.T) {
		opts := ListOptions{}
		require.NoError(t, opts.Validate())
		assert.Equal(t, SortByExecutionDate, opts.SortBy)
		assert.Equal(t, listing.Desc, opts.SortOrder)
	})
}
