package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"mtctl/internal/app"
	"mtctl/internal/cli"
)

func newCallCmd(root *rootOptions) *cobra.Command {
	var (
		output    string
		rawArgs   string
		serverURL string
		list      bool
	)

	cmd := &cobra.Command{
		Use:   "call [TOOL]",
		Short: "Call a manual test MCP tool directly",
		Long: `Calls one of the MCP tools and prints its JSON response, exactly as an
AI assistant would see it.

By default the tools run in-process. With --server the call goes to a
running 'mtctl serve --transport sse' instead, e.g.
--server http://localhost:8090/sse.

Examples:
  mtctl call --list
  mtctl call manual_test_help
  mtctl call manual_test_validate --args '{"yamlContent": "meta: {}"}'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !list && len(args) == 0 {
				return fmt.Errorf("a tool name is required unless --list is given")
			}

			var toolArgs map[string]interface{}
			if rawArgs != "" {
				if err := json.Unmarshal([]byte(rawArgs), &toolArgs); err != nil {
					return fmt.Errorf("--args must be a JSON object: %w", err)
				}
			}

			printer, err := newPrinter(cmd, output)
			if err != nil {
				return err
			}

			client, err := newToolClient(root, serverURL)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := client.Connect(ctx); err != nil {
				return err
			}
			defer client.Close()

			if list {
				tools, err := client.ListTools(ctx)
				if err != nil {
					return err
				}
				descriptions := make(map[string]interface{}, len(tools))
				for _, t := range tools {
					descriptions[t.Name] = cli.Truncate(t.Description, 80)
				}
				if ok, err := printer.Structured(descriptions); ok {
					return err
				}
				printer.KeyValues(descriptions)
				return nil
			}

			text, err := client.CallToolText(ctx, args[0], toolArgs)
			if text != "" {
				fmt.Fprintln(cmd.OutOrStdout(), text)
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", string(cli.OutputFormatTable), "output format of --list: table, json or yaml")
	cmd.Flags().StringVar(&rawArgs, "args", "", "tool arguments as a JSON object")
	cmd.Flags().StringVar(&serverURL, "server", "", "SSE endpoint of a running server")
	cmd.Flags().BoolVar(&list, "list", false, "list the available tools")

	return cmd
}

func newToolClient(root *rootOptions, serverURL string) (*cli.Client, error) {
	if serverURL != "" {
		return cli.NewSSEClient(serverURL), nil
	}
	application, err := root.application(app.Overrides{})
	if err != nil {
		return nil, err
	}
	return cli.NewInProcessClient(application.Services().Server.MCPServer()), nil
}
