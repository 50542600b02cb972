package cmd

import (
	"github.com/spf13/cobra"

	"mtctl/internal/app"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var overrides app.Overrides

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the manual test tools over MCP",
		Long: `Starts the manual-tests MCP server.

With the default stdio transport the server speaks JSON-RPC on stdin and
stdout, which is what editors such as Cursor or Claude Desktop expect.
With --transport sse it listens on --host:--port and also answers
GET /healthz. Logs always go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := root.application(overrides)
			if err != nil {
				return err
			}
			return application.Serve(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&overrides.Transport, "transport", "", "transport to serve on: stdio or sse")
	cmd.Flags().StringVar(&overrides.Host, "host", "", "listen host for the sse transport")
	cmd.Flags().IntVar(&overrides.Port, "port", 0, "listen port for the sse transport")
	cmd.Flags().StringVar(&overrides.IDStrategy, "id-strategy", "", "test case id strategy: sequential, timestamp or random")

	return cmd
}
