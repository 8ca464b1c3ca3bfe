package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/michaelbrown/dhmcp/internal/workers"
)

var workersCmd = &cobra.Command{
	Use:     "workers",
	Aliases: []string{"worker", "w"},
	Short:   "Inspect the worker configuration",
}

var workersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured workers",
	RunE:  runWorkersList,
}

var workersDefaultCmd = &cobra.Command{
	Use:   "default",
	Short: "Show the default worker",
	RunE:  runWorkersDefault,
}

func init() {
	rootCmd.AddCommand(workersCmd)
	workersCmd.AddCommand(workersListCmd, workersDefaultCmd)
}

func runWorkersList(cmd *cobra.Command, args []string) error {
	cfg, err := workers.Load()
	if err != nil {
		return err
	}

	fmt.Printf("%-20s %-30s %-12s %s\n", "NAME", "ADDRESS", "AUTH", "SESSION")
	for _, name := range cfg.Names() {
		w := cfg.Workers[name]

		auth := w.AuthType
		if auth == "" {
			auth = "Anonymous"
		}
		sessionType := w.SessionType
		if sessionType == "" {
			sessionType = "python"
		}

		marker := ""
		if name == cfg.DefaultWorker {
			marker = " (default)"
		}
		fmt.Printf("%-20s %-30s %-12s %s%s\n", name, w.Addr(), auth, sessionType, marker)
	}
	return nil
}

func runWorkersDefault(cmd *cobra.Command, args []string) error {
	cfg, err := workers.Load()
	if err != nil {
		return err
	}

	if cfg.DefaultWorker == "" {
		fmt.Println("No default worker configured.")
		return nil
	}
	fmt.Println(cfg.DefaultWorker)
	return nil
}
