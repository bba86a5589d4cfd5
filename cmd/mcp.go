package cmd

import (
	"github.com/huangsam/epigrowth/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the epigrowth MCP server",
	Long: `Launch an MCP server over stdio that lets AI agents run growth analyses.

Tools:
- get_growth_rates:    ranked county growth rates
- get_density_summary: growth rate against population density
- get_case_trend:      new and cumulative cases per day

Input files given here become defaults that each tool call may override.`,
	PreRunE: serviceSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager, version)
	},
}
