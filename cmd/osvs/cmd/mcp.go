package cmd

import (
	"context"

	"github.com/spf13/cobra"

	mcphttp "github.com/osvs/memberportal/internal/adapter/inbound/http"
	"github.com/osvs/memberportal/internal/adapter/inbound/stdio"
	"github.com/osvs/memberportal/internal/domain/member"
	"github.com/osvs/memberportal/internal/port/inbound"
)

var (
	mcpHTTPAddr       string
	mcpAllowedOrigins []string
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve portal tools to an MCP client",
	Long: `Serve read-only portal tools (whoami, list_lodges, list_events,
get_event, list_posts) to an MCP client on stdin/stdout, or over
Streamable HTTP with --http. The stored session is used for tools that
need a signed-in member.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app) error {
			tools := stdio.NewStdioTransport(a.client, a.cache, a.notices, Version, a.logger)
			defer tools.Close()

			var server inbound.ToolServer = tools
			if mcpHTTPAddr != "" {
				probe := func(ctx context.Context) error {
					_, err := a.client.ListLodges(ctx, member.ListQuery{Limit: 1})
					return err
				}
				tools.WarmSession(ctx)
				server = mcphttp.NewHTTPTransport(tools.Server(),
					mcphttp.WithAddr(mcpHTTPAddr),
					mcphttp.WithAllowedOrigins(mcpAllowedOrigins),
					mcphttp.WithRegistry(a.registry),
					mcphttp.WithHealthChecker(mcphttp.NewHealthChecker(a.cache, a.notices, probe, Version)),
					mcphttp.WithLogger(a.logger),
				)
			}
			return server.Start(ctx)
		})
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "serve Streamable HTTP on this address instead of stdio (e.g. 127.0.0.1:8080)")
	mcpCmd.Flags().StringSliceVar(&mcpAllowedOrigins, "allow-origin", nil, "browser origin allowed to reach /mcp (repeatable)")
	rootCmd.AddCommand(mcpCmd)
}
