// Package cmd implements the mu-action CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/budu/mu-action/pkg/logger"
)

const (
	// Version is the current version.
	Version = "0.1.0"
	// Banner is shown by the version command.
	Banner = `
   _ __ ___  _   _   mu-action %s
  | '_ ` + "`" + ` _ \| | | |
  | | | | | | |_| |  typed actions with hook chains
  |_| |_| |_|\__,_|
`
)

var (
	debug bool
	quiet bool
)

// rootCmd is the root command.
var rootCmd = &cobra.Command{
	Use:   "mu-action",
	Short: "Action runner with typed inputs and hook chains",
	Long: `mu-action loads action files, validates typed inputs and executes
actions through their before/around/after hook chains. Actions can be
invoked from the command line, over a REST API or as MCP tools.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug {
			logger.EnableDebug()
		}
		if quiet {
			logger.SetLevelFromString("error")
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log errors")

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.SetVersionTemplate(fmt.Sprintf(Banner, Version) + "\n")
}

// GetRootCmd returns the root command, used by tests.
func GetRootCmd() *cobra.Command {
	return rootCmd
}
