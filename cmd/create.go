package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mtctl/internal/app"
	"mtctl/internal/cli"
	"mtctl/internal/generator"
)

type createOptions struct {
	output   string
	template string
	meta     generator.MetaInput
	scenario generator.Template
	save     bool
	outFile  string
	copy     bool
}

func newCreateCmd(root *rootOptions) *cobra.Command {
	opts := &createOptions{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Generate a new test case from a template",
		Long: `Generates a test case document with a fresh id from one of the built-in
templates. --given, --when and --then replace the template's steps for that
section.

The YAML is printed to stdout unless --save writes it to <id>.yml in the
project's test-cases directory or --out writes it to a file of your choice.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, root, opts)
		},
	}

	addOutputFlag(cmd, &opts.output)
	f := cmd.Flags()
	f.StringVar(&opts.template, "template", "", "template: "+strings.Join(generator.DefaultRegistry().Names(), ", "))
	f.StringVar(&opts.meta.Title, "title", "", "test case title")
	f.StringVar(&opts.meta.Feature, "feature", "", "feature the test case belongs to")
	f.StringVar(&opts.meta.Priority, "priority", "medium", "priority: high, medium or low")
	f.StringSliceVar(&opts.meta.Tags, "tag", nil, "tags to attach")
	f.StringVar(&opts.meta.Author, "author", "", "author of the test case")
	f.StringArrayVar(&opts.scenario.Given, "given", nil, "given step replacing the template's (repeatable)")
	f.StringArrayVar(&opts.scenario.When, "when", nil, "when step replacing the template's (repeatable)")
	f.StringArrayVar(&opts.scenario.Then, "then", nil, "then step replacing the template's (repeatable)")
	f.BoolVar(&opts.save, "save", false, "write the test case into the project's test-cases directory")
	f.StringVar(&opts.outFile, "out", "", "write the test case to this file")
	f.BoolVar(&opts.copy, "copy", false, "copy the generated YAML to the clipboard")
	cmd.MarkFlagsMutuallyExclusive("save", "out")

	return cmd
}

func runCreate(cmd *cobra.Command, root *rootOptions, opts *createOptions) error {
	printer, err := newPrinter(cmd, opts.output)
	if err != nil {
		return err
	}
	application, err := root.application(app.Overrides{})
	if err != nil {
		return err
	}

	in := generator.CreateInput{Template: opts.template, Meta: &opts.meta}
	if len(opts.scenario.Given)+len(opts.scenario.When)+len(opts.scenario.Then) > 0 {
		in.Scenario = &opts.scenario
	}

	generated, err := application.Services().Manual.Create(in)
	if err != nil {
		return err
	}

	target := opts.outFile
	if opts.save {
		target = filepath.Join(application.Config().Paths.TestCasesPath(), generated.GeneratedID+".yml")
	}
	if target != "" {
		if err := writeNewFile(target, generated.YAMLContent); err != nil {
			return err
		}
	}

	if opts.copy {
		if err := cli.CopyToClipboard(generated.YAMLContent); err != nil {
			cli.Warn(cmd.ErrOrStderr(), "Could not copy to clipboard: %v", err)
		}
	}

	if ok, err := printer.Structured(generated); ok {
		return err
	}
	w := cmd.OutOrStdout()
	if target == "" {
		fmt.Fprint(w, generated.YAMLContent)
		return nil
	}
	cli.Success(w, "Created %s at %s", generated.GeneratedID, target)
	return nil
}

// writeNewFile creates path and its parent directories, refusing to replace
// an existing file.
func writeNewFile(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("file already exists: %s", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
