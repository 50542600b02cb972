package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mtctl/internal/app"
	"mtctl/internal/cli"
	"mtctl/internal/scaffold"
)

func newInitCmd(root *rootOptions) *cobra.Command {
	var (
		output   string
		in       scaffold.Input
		features []string
	)

	cmd := &cobra.Command{
		Use:   "init PROJECT_NAME",
		Short: "Scaffold a manual test project",
		Long: `Creates the project root with test-cases, test-results and templates
directories, a project-meta.yml, a README and a test case template.

Features are given as name:description. Existing files are only
replaced with --force.`,
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

			in.ProjectName = args[0]
			in.Features = parseFeatures(features)
			res, err := application.Services().Manual.Init(in)
			if err != nil {
				return err
			}

			if ok, err := printer.Structured(res); ok {
				return err
			}
			w := cmd.OutOrStdout()
			cli.Success(w, "%s", res.Message)
			printer.Lines("Directories", res.CreatedDirectories)
			printer.Lines("Files", res.CreatedFiles)
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Next: mtctl create --template login --title \"...\" --feature <name> --save")
			return nil
		},
	}

	addOutputFlag(cmd, &output)
	f := cmd.Flags()
	f.StringVar(&in.BaseURL, "base-url", "", "base URL of the application under test")
	f.StringToStringVar(&in.Environments, "env", nil, "environment URLs as name=url")
	f.StringArrayVar(&features, "feature", nil, "feature as name:description (repeatable)")
	f.BoolVar(&in.TestDataTemplate, "test-data", false, "include a test_data section in project-meta.yml")
	f.BoolVar(&in.MCPConfig, "mcp-config", false, "write a .mcp.json that starts 'mtctl serve'")
	f.BoolVar(&in.Force, "force", false, "overwrite existing project files")
	_ = cmd.MarkFlagRequired("base-url")

	return cmd
}

func parseFeatures(values []string) []scaffold.Feature {
	if len(values) == 0 {
		return nil
	}
	features := make([]scaffold.Feature, 0, len(values))
	for _, v := range values {
		name, description, _ := strings.Cut(v, ":")
		features = append(features, scaffold.Feature{
			Name:        strings.TrimSpace(name),
			Description: strings.TrimSpace(description),
		})
	}
	return features
}
