package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mtctl/internal/app"
	"mtctl/internal/cli"
	"mtctl/internal/manualtest"
	"mtctl/internal/variables"
)

// fileValidation pairs a validated file with its outcome for structured
// output.
type fileValidation struct {
	File string `json:"file"`
	*manualtest.ValidationResult
}

func newValidateCmd(root *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Validate test case YAML files",
		Long: `Checks each file against the test case schema and reports every
violation. The command fails when at least one file is invalid.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printer, err := newPrinter(cmd, output)
			if err != nil {
				return err
			}
			application, err := root.application(app.Overrides{})
			if err != nil {
				return err
			}
			svc := application.Services().Manual

			outcomes := make([]fileValidation, 0, len(args))
			invalid := 0
			for _, path := range args {
				content, err := readFile(path)
				if err != nil {
					return err
				}
				res := svc.Validate(content)
				if !res.IsValid {
					invalid++
				}
				outcomes = append(outcomes, fileValidation{File: path, ValidationResult: res})
			}

			if ok, err := printer.Structured(outcomes); ok {
				if err != nil {
					return err
				}
			} else {
				printValidations(cmd, outcomes)
			}

			if invalid > 0 {
				return fmt.Errorf("%d of %d test cases are invalid", invalid, len(args))
			}
			return nil
		},
	}

	addOutputFlag(cmd, &output)
	return cmd
}

func printValidations(cmd *cobra.Command, outcomes []fileValidation) {
	w := cmd.OutOrStdout()
	for _, o := range outcomes {
		if o.IsValid {
			cli.Success(w, "%s (%s)", o.File, o.ParsedData.Meta.ID)
		} else {
			cli.Failure(w, "%s", o.File)
			for _, e := range o.Errors {
				fmt.Fprintf(w, "    %s\n", e)
			}
		}
		for _, warning := range o.Warnings {
			cli.Warn(w, "%s", warning)
		}
	}
}

func newParseCmd(root *rootOptions) *cobra.Command {
	var (
		output      string
		projectMeta string
	)

	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Resolve the {{variables}} of a test case",
		Long: `Validates a test case and substitutes {{path.to.value}} placeholders
in its scenario steps with values from project-meta.yml.

Without --project-meta the project-meta.yml of the configured project root
is used when it exists. Unresolved placeholders are kept and reported as
warnings.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printer, err := newPrinter(cmd, output)
			if err != nil {
				return err
			}
			application, err := root.application(app.Overrides{})
			if err != nil {
				return err
			}

			content, err := readFile(args[0])
			if err != nil {
				return err
			}

			metaPath := projectMeta
			if metaPath == "" {
				metaPath = defaultProjectMeta(application.Config().Paths.RootDir)
			}
			meta := variables.Null
			if metaPath != "" {
				if meta, err = manualtest.LoadProjectMeta(metaPath); err != nil {
					return err
				}
			}

			res, err := application.Services().Manual.Parse(content, meta)
			if err != nil {
				return err
			}

			if ok, err := printer.Structured(res); ok {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", res.TestCase.Meta.ID, res.TestCase.Meta.Title)
			printer.Lines("Given", res.ProcessedSteps.Given)
			printer.Lines("When", res.ProcessedSteps.When)
			printer.Lines("Then", res.ProcessedSteps.Then)
			for _, warning := range res.Warnings {
				cli.Warn(cmd.ErrOrStderr(), "%s", warning)
			}
			return nil
		},
	}

	addOutputFlag(cmd, &output)
	cmd.Flags().StringVar(&projectMeta, "project-meta", "", "project-meta.yml to resolve variables from")
	return cmd
}

// defaultProjectMeta returns the project-meta.yml below rootDir, or "" when
// there is none.
func defaultProjectMeta(rootDir string) string {
	path := filepath.Join(rootDir, "project-meta.yml")
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return ""
	}
	return path
}
