package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/michaelbrown/dhmcp/internal/config"
	"github.com/michaelbrown/dhmcp/internal/dh"
	"github.com/michaelbrown/dhmcp/internal/server"
	"github.com/michaelbrown/dhmcp/internal/storage/sqlite"
	"github.com/michaelbrown/dhmcp/internal/tools"
	"github.com/michaelbrown/dhmcp/internal/workers"
)

var (
	transportFlag string
	hostFlag      string
	portFlag      int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the dhmcp MCP server.

With --transport stdio (the default) the server speaks MCP over
stdin/stdout. With --transport http it serves streamable HTTP at /mcp.

Examples:
  DH_MCP_CONFIG_FILE=workers.json dhmcp serve
  DH_MCP_CONFIG_FILE=workers.json dhmcp serve --transport http --port 9090`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&transportFlag, "transport", "", "Transport: stdio or http (overrides config)")
	serveCmd.Flags().StringVar(&hostFlag, "host", "", "Host to listen on for http transport (overrides config)")
	serveCmd.Flags().IntVar(&portFlag, "port", 0, "Port to listen on for http transport (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// The worker config must load before any tool is reachable.
	workerCfg, err := workers.Load()
	if err != nil {
		return fmt.Errorf("loading worker config: %w", err)
	}
	log.Printf("Loaded %d worker(s): %v", len(workerCfg.Workers), workerCfg.Names())

	// Open call log storage
	store, err := sqlite.Open(cfg.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer store.Close()

	sessions := dh.NewManager(workerCfg)
	defer sessions.Close()

	srv := server.New(tools.Deps{
		Workers:  workerCfg,
		Sessions: sessions,
		Store:    store,
	})

	transport := cfg.Server.Transport
	if transportFlag != "" {
		transport = transportFlag
	}

	switch transport {
	case "stdio":
		return srv.ServeStdio()
	case "http":
		host := cfg.Server.Host
		if hostFlag != "" {
			host = hostFlag
		}
		port := cfg.Server.Port
		if portFlag > 0 {
			port = portFlag
		}

		// Graceful shutdown on SIGINT/SIGTERM
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		go func() {
			<-sigCh
			srv.Shutdown(context.Background())
		}()

		return srv.StartHTTP(host, port)
	default:
		return fmt.Errorf("unknown transport %q (want stdio or http)", transport)
	}
}
