package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/michaelbrown/dhmcp/internal/config"
	"github.com/michaelbrown/dhmcp/internal/storage"
	"github.com/michaelbrown/dhmcp/internal/storage/sqlite"
)

var (
	toolFilter   string
	statusFilter string
	limitFlag    int
	exportFormat string
	exportOutput string
)

var callsCmd = &cobra.Command{
	Use:     "calls",
	Aliases: []string{"call", "c"},
	Short:   "Inspect the tool-call log",
}

var callsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded tool calls",
	RunE:  runCallsList,
}

var callsExportCmd = &cobra.Command{
	Use:   "export <call-id>",
	Short: "Export a call record as markdown or JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runCallsExport,
}

func init() {
	rootCmd.AddCommand(callsCmd)
	callsCmd.AddCommand(callsListCmd, callsExportCmd)

	callsListCmd.Flags().StringVar(&toolFilter, "tool", "", "Filter by tool name")
	callsListCmd.Flags().StringVar(&statusFilter, "status", "", "Filter by status (ok, error)")
	callsListCmd.Flags().IntVar(&limitFlag, "limit", 20, "Max calls to show")

	callsExportCmd.Flags().StringVar(&exportFormat, "format", "md", "Export format: md or json")
	callsExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")
}

func openStore() (storage.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return sqlite.Open(cfg.Storage.DBPath)
}

func runCallsList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	opts := storage.CallListOptions{
		Tool:   toolFilter,
		Status: storage.CallStatus(statusFilter),
		Limit:  limitFlag,
	}

	records, err := store.ListCalls(context.Background(), opts)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No calls recorded.")
		return nil
	}

	// Header
	fmt.Printf("%-10s %-26s %-14s %-7s %8s  %s\n", "ID", "TOOL", "WORKER", "STATUS", "TIME", "WHEN")
	fmt.Println(strings.Repeat("─", 80))

	for _, r := range records {
		worker := r.Worker
		if worker == "" {
			worker = "-"
		}
		fmt.Printf("%-10s %-26s %-14s %-7s %6dms  %s\n",
			r.ID[:8], r.Tool, worker, r.Status, r.DurationMS, timeAgo(r.CreatedAt))
	}

	return nil
}

func runCallsExport(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.GetCall(context.Background(), args[0])
	if err != nil {
		return err
	}

	var output string
	switch exportFormat {
	case "json":
		data, err := storage.ExportJSON(rec)
		if err != nil {
			return err
		}
		output = string(data)
	default:
		output = storage.ExportMarkdown(rec)
	}

	if exportOutput != "" {
		return os.WriteFile(exportOutput, []byte(output), 0o644)
	}

	fmt.Print(output)
	return nil
}

func timeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
