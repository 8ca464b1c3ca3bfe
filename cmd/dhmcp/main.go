package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dhmcp",
	Short: "dhmcp - Deephaven worker tools over MCP",
	Long: `dhmcp exposes a small set of demo and Deephaven worker-introspection
tools through the Model Context Protocol.

Workers are described by a JSON config file named by the DH_MCP_CONFIG_FILE
environment variable (or by DH_MCP_HOST and friends for single-worker mode).`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
