package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"mtctl/internal/app"
	"mtctl/internal/cli"
	"mtctl/internal/listing"
	"mtctl/internal/results"
)

// confirm asks the user a yes/no question; replaced in tests.
var confirm = cli.Confirm

func newResultsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Work with recorded test results",
		Long: `Test results live in the project's test-results directory, one
directory per execution named <date>_<test id> and holding a report.md.`,
	}

	cmd.AddCommand(
		newResultsListCmd(root),
		newResultsReportCmd(root),
		newResultsCleanCmd(root),
	)
	return cmd
}

func newResultsListCmd(root *rootOptions) *cobra.Command {
	var (
		output string
		opts   results.ListOptions
		status string
		sortBy string
		order  string
	)

	cmd := &cobra.Command{
		Use:   "list [DIR]",
		Short: "List recorded test results",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printer, err := newPrinter(cmd, output)
			if err != nil {
				return err
			}
			application, err := root.application(app.Overrides{})
			if err != nil {
				return err
			}

			opts.Filter.Status = results.Status(status)
			opts.SortBy = results.SortField(sortBy)
			opts.SortOrder = listing.Order(order)
			dir := dirArg(args, application.Config().Paths.ResultsPath())
			res, err := application.Services().Manual.ListResults(dir, opts)
			if err != nil {
				return err
			}

			if ok, err := printer.Structured(res); ok {
				return err
			}
			printer.Results(res.Results, res.TotalCount, res.FilteredCount)
			for _, warning := range res.Warnings {
				cli.Warn(cmd.ErrOrStderr(), "%s", warning)
			}
			return nil
		},
	}

	addOutputFlag(cmd, &output)
	f := cmd.Flags()
	f.StringVar(&status, "status", "", "only results with this status: passed, failed, skipped or pending")
	f.StringVar(&opts.Filter.TestID, "test-id", "", "only results whose test id contains this text")
	f.StringVar(&opts.Filter.Executor, "executor", "", "only results of this executor")
	f.StringVar(&opts.Filter.Environment, "environment", "", "only results from this environment")
	f.StringVar(&opts.Filter.DateFrom, "from", "", "only results executed on or after this date (YYYY-MM-DD)")
	f.StringVar(&opts.Filter.DateTo, "to", "", "only results executed on or before this date (YYYY-MM-DD)")
	f.StringVar(&sortBy, "sort-by", "", "sort by executionDate, testId, status, duration or size")
	f.StringVar(&order, "order", "", "sort order: asc or desc")
	f.IntVar(&opts.Limit, "limit", 0, "maximum number of results to show")
	f.IntVar(&opts.Offset, "offset", 0, "number of results to skip")

	return cmd
}

func newResultsReportCmd(root *rootOptions) *cobra.Command {
	var (
		output    string
		in        results.ReportInput
		format    string
		noSummary bool
	)

	cmd := &cobra.Command{
		Use:   "report [DIR]",
		Short: "Generate a summary report from recorded results",
		Long: `Compiles every result with a report.md into a single markdown, html or
json report and writes it to --file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printer, err := newPrinter(cmd, output)
			if err != nil {
				return err
			}
			application, err := root.application(app.Overrides{})
			if err != nil {
				return err
			}

			in.ResultsDir = dirArg(args, application.Config().Paths.ResultsPath())
			in.Format = results.Format(format)
			if noSummary {
				includeSummary := false
				in.IncludeSummary = &includeSummary
			}
			out, err := application.Services().Manual.Report(in)
			if err != nil {
				return err
			}

			if ok, err := printer.Structured(out); ok {
				return err
			}
			w := cmd.OutOrStdout()
			cli.Success(w, "%s", out.Message)
			s := out.Report.Summary
			printer.KeyValues(map[string]interface{}{
				"total":    s.TotalTests,
				"passed":   s.Passed,
				"failed":   s.Failed,
				"skipped":  s.Skipped,
				"pending":  s.Pending,
				"passRate": fmt.Sprintf("%.1f%%", s.PassRate),
			})
			for _, warning := range out.Report.Warnings {
				cli.Warn(cmd.ErrOrStderr(), "%s", warning)
			}
			return nil
		},
	}

	addOutputFlag(cmd, &output)
	f := cmd.Flags()
	f.StringVarP(&in.OutputPath, "file", "f", "", "path of the report to write")
	f.StringVar(&format, "format", string(results.FormatMarkdown), "report format: markdown, html or json")
	f.BoolVar(&in.IncludeScreenshots, "screenshots", false, "link screenshots of each result")
	f.BoolVar(&noSummary, "no-summary", false, "leave out the summary section")
	f.StringVar(&in.Title, "title", "", "report title")
	f.StringVar(&in.Description, "description", "", "report description")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

type cleanFlags struct {
	output        string
	olderThanDays int
	beforeDate    string
	statuses      []string
	largerThanMB  float64
	keep          int
	dryRun        bool
	force         bool
}

func newResultsCleanCmd(root *rootOptions) *cobra.Command {
	flags := &cleanFlags{}

	cmd := &cobra.Command{
		Use:   "clean [DIR]",
		Short: "Remove old or unwanted test results",
		Long: `Removes result directories matching every given criterion.

Without --force the matching results are listed first and removal waits for
confirmation. --dry-run only lists them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResultsClean(cmd, root, flags, args)
		},
	}

	addOutputFlag(cmd, &flags.output)
	f := cmd.Flags()
	f.IntVar(&flags.olderThanDays, "older-than-days", 0, "results last modified more than this many days ago")
	f.StringVar(&flags.beforeDate, "before", "", "results last modified before this date (YYYY-MM-DD)")
	f.StringSliceVar(&flags.statuses, "status", nil, "results with one of these statuses")
	f.Float64Var(&flags.largerThanMB, "larger-than-mb", 0, "results larger than this many megabytes")
	f.IntVar(&flags.keep, "keep", 0, "keep only this many most recently modified results across all test cases")
	f.BoolVar(&flags.dryRun, "dry-run", false, "only show what would be removed")
	f.BoolVar(&flags.force, "force", false, "remove without asking for confirmation")

	return cmd
}

// criteria builds cleanup criteria from the flags that were set.
func (c *cleanFlags) criteria(cmd *cobra.Command) *results.Criteria {
	criteria := &results.Criteria{}
	f := cmd.Flags()
	if f.Changed("older-than-days") {
		criteria.OlderThanDays = &c.olderThanDays
	}
	if f.Changed("before") {
		criteria.BeforeDate = &c.beforeDate
	}
	for _, s := range c.statuses {
		criteria.IncludeStatuses = append(criteria.IncludeStatuses, results.Status(s))
	}
	if f.Changed("larger-than-mb") {
		criteria.LargerThanMB = &c.largerThanMB
	}
	if f.Changed("keep") {
		criteria.KeepMostRecent = &c.keep
	}
	return criteria
}

func runResultsClean(cmd *cobra.Command, root *rootOptions, flags *cleanFlags, args []string) error {
	printer, err := newPrinter(cmd, flags.output)
	if err != nil {
		return err
	}
	application, err := root.application(app.Overrides{})
	if err != nil {
		return err
	}
	svc := application.Services().Manual
	dir := dirArg(args, application.Config().Paths.ResultsPath())
	criteria := flags.criteria(cmd)
	w := cmd.OutOrStdout()

	preview, err := svc.Clean(dir, results.CleanOptions{Criteria: criteria, DryRun: true})
	if err != nil {
		return err
	}
	if flags.dryRun || preview.Summary.TotalItemsCleaned == 0 {
		if ok, err := printer.Structured(preview); ok {
			return err
		}
		printer.CleanedItems(preview.Summary.CleanedItems)
		cli.PrintCleanSummary(w, preview)
		return nil
	}

	if !flags.force {
		printer.CleanedItems(preview.Summary.CleanedItems)
		question := fmt.Sprintf("Remove %d results?", preview.Summary.TotalItemsCleaned)
		ok, err := confirm(cmd.InOrStdin(), w, question)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(w, "Aborted")
			return nil
		}
	}

	bar := cli.NewCleanProgress(cmd.ErrOrStderr(), preview.Summary.TotalItemsCleaned)
	res, err := svc.Clean(dir, results.CleanOptions{
		Criteria: criteria,
		Force:    flags.force,
		OnItem: func(item results.CleanedItem, err error) {
			_ = bar.Add(1)
		},
	})
	_ = bar.Finish()
	if err != nil {
		return err
	}

	if ok, err := printer.Structured(res); ok {
		return err
	}
	cli.PrintCleanSummary(w, res)
	for _, problem := range res.Summary.Errors {
		cli.Failure(cmd.ErrOrStderr(), "%s", problem)
	}
	return nil
}
