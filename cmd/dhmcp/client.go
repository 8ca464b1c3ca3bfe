package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"
)

var (
	urlFlag     string
	commandFlag string
)

var clientCmd = &cobra.Command{
	Use:   "client",
	Short: "Interactively call tools on a running MCP server",
	Long: `Connect to an MCP server and call its tools from a small REPL.

Either dial a streamable-HTTP endpoint or spawn a stdio server:

  dhmcp client --url http://localhost:8080/mcp
  dhmcp client --command "dhmcp serve --transport stdio"`,
	RunE: runClient,
}

func init() {
	clientCmd.Flags().StringVar(&urlFlag, "url", "", "Streamable HTTP endpoint of a running server")
	clientCmd.Flags().StringVar(&commandFlag, "command", "", "Command to spawn as a stdio server")
	rootCmd.AddCommand(clientCmd)
}

func connect(ctx context.Context) (*mcpclient.Client, error) {
	switch {
	case urlFlag != "" && commandFlag != "":
		return nil, fmt.Errorf("pass either --url or --command, not both")
	case urlFlag != "":
		c, err := mcpclient.NewStreamableHttpClient(urlFlag)
		if err != nil {
			return nil, fmt.Errorf("creating HTTP client: %w", err)
		}
		if err := c.Start(ctx); err != nil {
			c.Close()
			return nil, fmt.Errorf("starting HTTP client: %w", err)
		}
		return c, nil
	case commandFlag != "":
		fields := strings.Fields(commandFlag)
		c, err := mcpclient.NewStdioMCPClient(fields[0], nil, fields[1:]...)
		if err != nil {
			return nil, fmt.Errorf("spawning %s: %w", fields[0], err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("pass --url or --command")
	}
}

func runClient(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	c, err := connect(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	// Initialize the MCP protocol
	initResult, err := c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ClientInfo: mcp.Implementation{
				Name:    "dhmcp-client",
				Version: "0.1.0",
			},
		},
	})
	if err != nil {
		return fmt.Errorf("initializing: %w", err)
	}

	fmt.Printf("Connected to %s %s\n", initResult.ServerInfo.Name, initResult.ServerInfo.Version)
	fmt.Printf("Type 'tools' to list tools, 'call <tool> [json-args]' to invoke, 'quit' to exit\n\n")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "dhmcp> ",
		HistoryFile:     "/tmp/dhmcp_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	for {
		input, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				fmt.Println("Goodbye!")
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		fields := strings.Fields(input)
		switch strings.ToLower(fields[0]) {
		case "quit", "exit", "q":
			fmt.Println("Goodbye!")
			return nil
		case "help":
			fmt.Println("Commands:")
			fmt.Println("  tools                    - List available tools")
			fmt.Println("  call <tool> [json-args]  - Call a tool, e.g. call echo_tool {\"message\":\"hi\"}")
			fmt.Println("  quit                     - Exit")
			fmt.Println()
		case "tools":
			if err := listTools(ctx, c); err != nil {
				fmt.Printf("error: %v\n\n", err)
			}
		case "call":
			if len(fields) < 2 {
				fmt.Printf("usage: call <tool> [json-args]\n\n")
				continue
			}
			rest := strings.TrimSpace(input[len(fields[0]):])
			argsJSON := strings.TrimSpace(strings.TrimPrefix(rest, fields[1]))
			if err := callTool(ctx, c, fields[1], argsJSON); err != nil {
				fmt.Printf("error: %v\n\n", err)
			}
		default:
			fmt.Printf("Unknown command: %s (try help)\n\n", fields[0])
		}
	}
}

func listTools(ctx context.Context, c *mcpclient.Client) error {
	result, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return err
	}

	for _, t := range result.Tools {
		desc := t.Description
		if len(desc) > 60 {
			desc = desc[:60] + ".."
		}
		fmt.Printf("  %-26s %s\n", t.Name, desc)
	}
	fmt.Println()
	return nil
}

func callTool(ctx context.Context, c *mcpclient.Client, name, argsJSON string) error {
	toolArgs := map[string]any{}
	if argsJSON != "" {
		if err := json.Unmarshal([]byte(argsJSON), &toolArgs); err != nil {
			return fmt.Errorf("parsing args: %w", err)
		}
	}

	result, err := c.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: toolArgs,
		},
	})
	if err != nil {
		return err
	}

	for _, content := range result.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			if result.IsError {
				fmt.Printf("  ! %s\n", tc.Text)
			} else {
				fmt.Printf("  > %s\n", tc.Text)
			}
		}
	}
	fmt.Println()
	return nil
}
