package cmd

import (
	"github.com/spf13/cobra"

	"github.com/budu/mu-action/api/mcp"
	"github.com/budu/mu-action/pkg/logger"
)

// mcpCmd is the mcp subcommand.
var mcpCmd = &cobra.Command{
	Use:   "mcp <actions.yaml>",
	Short: "Serve the actions of an action file as MCP tools on stdio",
	Long: `Expose every action declared in the file as an MCP tool over
stdio, so MCP clients can discover and invoke them. Logs go to stderr;
stdout carries the MCP protocol.`,
	Args: cobra.ExactArgs(1),
	RunE: serveMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func serveMCP(cmd *cobra.Command, args []string) error {
	iv, err := loadInvoker(args[0])
	if err != nil {
		return err
	}

	logger.Info("exposing %d actions as MCP tools", iv.Catalog().Count())
	return mcp.New(iv).Serve()
}
