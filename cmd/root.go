package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mtctl/internal/app"
	"mtctl/internal/cli"
)

// rootOptions carries the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	debug      bool
	rootDir    string
}

// application bootstraps mtctl with the persistent flags applied on top of
// overrides.
func (o *rootOptions) application(overrides app.Overrides) (*app.Application, error) {
	if overrides.RootDir == "" {
		overrides.RootDir = o.rootDir
	}
	cfg := app.NewConfig(o.configPath, o.debug)
	cfg.Overrides = overrides
	return app.NewApplication(cfg)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd *cobra.Command

func init() {
	rootCmd = newRootCmd()
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "mtctl",
		Short: "Manage manual test cases and their results",
		Long: `mtctl keeps manual test cases as YAML documents next to your code.

It validates and scaffolds test cases, resolves {{variables}} from
project-meta.yml, and lists, reports on and cleans up recorded results.
Every operation is also served to AI assistants as an MCP tool via
'mtctl serve'.`,
		// SilenceUsage is set to true to prevent printing usage message on errors
		// handled by us (e.g. invalid test cases, missing directories)
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file layered over ~/.config/mtctl and .mtctl config")
	pf.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	pf.StringVar(&opts.rootDir, "root-dir", "", "manual test project directory (overrides configuration)")

	cmd.AddCommand(
		newServeCmd(opts),
		newValidateCmd(opts),
		newParseCmd(opts),
		newListCmd(opts),
		newCreateCmd(opts),
		newInitCmd(opts),
		newResultsCmd(opts),
		newCallCmd(opts),
		newVersionCmd(),
		newSelfUpdateCmd(),
	)
	return cmd
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mtctl version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

func addOutputFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "output", "o", string(cli.OutputFormatTable), "output format: table, json or yaml")
}

func newPrinter(cmd *cobra.Command, format string) (*cli.Printer, error) {
	f, err := cli.ParseOutputFormat(format)
	if err != nil {
		return nil, err
	}
	return cli.NewPrinter(cmd.OutOrStdout(), f), nil
}

// dirArg returns the optional directory argument or fallback.
func dirArg(args []string, fallback string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return fallback
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
