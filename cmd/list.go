package cmd

import (
	"github.com/spf13/cobra"

	"mtctl/internal/app"
	"mtctl/internal/cli"
	"mtctl/internal/testcase"
)

func newListCmd(root *rootOptions) *cobra.Command {
	var (
		output   string
		filter   testcase.Filter
		priority string
		sortBy   string
	)

	cmd := &cobra.Command{
		Use:   "list [DIR]",
		Short: "List test cases",
		Long: `Lists the test cases stored in DIR, by default the test-cases directory
of the configured project. Files that do not validate are skipped with a
warning. Filters combine: a test case must match all of them, and --tag
matches when the test case carries any of the given tags.`,
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

			filter.Priority = testcase.Priority(priority)
			dir := dirArg(args, application.Config().Paths.TestCasesPath())
			listing, err := application.Services().Manual.ListCases(dir, filter, sortBy)
			if err != nil {
				return err
			}

			if ok, err := printer.Structured(listing); ok {
				return err
			}
			printer.TestCases(listing.TestCases)
			for _, warning := range listing.Warnings {
				cli.Warn(cmd.ErrOrStderr(), "%s", warning)
			}
			return nil
		},
	}

	addOutputFlag(cmd, &output)
	cmd.Flags().StringVar(&filter.Feature, "feature", "", "only test cases of this feature")
	cmd.Flags().StringVar(&priority, "priority", "", "only test cases of this priority: high, medium or low")
	cmd.Flags().StringSliceVar(&filter.Tags, "tag", nil, "only test cases carrying any of these tags")
	cmd.Flags().StringVar(&filter.Author, "author", "", "only test cases written by this author")
	cmd.Flags().StringVar(&sortBy, "sort-by", "", "sort by id, lastUpdated, priority or feature")

	return cmd
}
