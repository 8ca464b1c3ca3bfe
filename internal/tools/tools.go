// Package tools defines the MCP tool surface: echo and demo tools plus
// the Deephaven worker introspection tools. Matching, dispatch, and
// response serialization all belong to mcp-go; handlers here are thin
// pass-throughs into the worker config and session manager.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/michaelbrown/dhmcp/internal/dh"
	"github.com/michaelbrown/dhmcp/internal/workers"
)

// GnomeCount is the canned answer of the demo counter tool.
const GnomeCount = 53

// Deps holds what the tool handlers call into. Store may be nil to
// disable call logging.
type Deps struct {
	Workers  *workers.Config
	Sessions *dh.Manager
	Store    Recorder
}

// Register adds every tool to the MCP server.
func Register(s *server.MCPServer, deps Deps) {
	add := func(tool mcp.Tool, handler server.ToolHandlerFunc) {
		s.AddTool(tool, instrument(deps.Store, tool.Name, handler))
	}

	add(mcp.Tool{
		Name:        "echo_tool",
		Description: "Echo the input message, prefixed with 'Echo: '.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"message": map[string]any{
					"type":        "string",
					"description": "The message to echo back",
				},
			},
			Required: []string{"message"},
		},
	}, handleEcho)

	add(mcp.Tool{
		Name:        "gnome_count_colorado",
		Description: "Return the current number of gnomes in Colorado.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, handleGnomeCount)

	add(mcp.Tool{
		Name:        "deephaven_worker_names",
		Description: "Return the names of all Deephaven workers defined in the config file.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, deps.handleWorkerNames)

	add(mcp.Tool{
		Name:        "deephaven_default_worker",
		Description: "Return the name of the default Deephaven worker used when no worker name is given.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, deps.handleDefaultWorker)

	add(mcp.Tool{
		Name:        "deephaven_list_tables",
		Description: "List the tables available in a Deephaven worker. Uses the default worker when no name is given.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"worker_name": map[string]any{
					"type":        "string",
					"description": "Name of the Deephaven worker (optional, defaults to default_worker)",
				},
			},
		},
	}, deps.handleListTables)

	add(mcp.Tool{
		Name:        "deephaven_table_schemas",
		Description: "Return the name and schema of every table in a Deephaven worker. Uses the default worker when no name is given.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"worker_name": map[string]any{
					"type":        "string",
					"description": "Name of the Deephaven worker (optional, defaults to default_worker)",
				},
			},
		},
	}, deps.handleTableSchemas)
}

func getArgs(request mcp.CallToolRequest) map[string]any {
	args, _ := request.Params.Arguments.(map[string]any)
	return args
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
	}
}

func errResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
		IsError: true,
	}
}

// jsonResult marshals v and returns it as a text result.
func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.Marshal(v)
	if err != nil {
		return errResult(fmt.Sprintf("error encoding result: %v", err))
	}
	return textResult(string(data))
}

func handleEcho(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := getArgs(request)
	raw, ok := args["message"]
	if !ok {
		return errResult("error: 'message' is required"), nil
	}
	message, ok := raw.(string)
	if !ok {
		return errResult("error: 'message' must be a string"), nil
	}
	// The empty string is a valid message and echoes as "Echo: ".
	return textResult("Echo: " + message), nil
}

func handleGnomeCount(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return textResult(fmt.Sprintf("%d", GnomeCount)), nil
}

func (d Deps) handleWorkerNames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(d.Workers.Names()), nil
}

func (d Deps) handleDefaultWorker(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if d.Workers.DefaultWorker == "" {
		return errResult("error: no default_worker configured"), nil
	}
	return textResult(d.Workers.DefaultWorker), nil
}

func (d Deps) handleListTables(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	worker, _ := getArgs(request)["worker_name"].(string)

	tables, err := d.Sessions.ListTables(ctx, worker)
	if err != nil {
		return errResult(fmt.Sprintf("error: %v", err)), nil
	}
	if tables == nil {
		tables = []string{}
	}
	return jsonResult(tables), nil
}

func (d Deps) handleTableSchemas(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	worker, _ := getArgs(request)["worker_name"].(string)

	schemas, err := d.Sessions.TableSchemas(ctx, worker)
	if err != nil {
		return errResult(fmt.Sprintf("error: %v", err)), nil
	}
	if schemas == nil {
		schemas = []dh.TableSchema{}
	}
	return jsonResult(schemas), nil
}
