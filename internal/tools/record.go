package tools

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/michaelbrown/dhmcp/internal/storage"
)

// Recorder receives one record per tool invocation. storage.Store
// satisfies it.
type Recorder interface {
	RecordCall(ctx context.Context, rec *storage.CallRecord) error
}

// instrument wraps a tool handler so every invocation lands in the call
// log. A nil recorder disables logging, and recording failures never
// fail the tool call itself.
func instrument(rec Recorder, tool string, handler server.ToolHandlerFunc) server.ToolHandlerFunc {
	if rec == nil {
		return handler
	}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		result, err := handler(ctx, request)

		record := &storage.CallRecord{
			ID:         uuid.NewString(),
			Tool:       tool,
			DurationMS: time.Since(start).Milliseconds(),
			Status:     storage.StatusOK,
		}
		if worker, ok := getArgs(request)["worker_name"].(string); ok {
			record.Worker = worker
		}

		switch {
		case err != nil:
			record.Status = storage.StatusError
			record.Error = err.Error()
		case result != nil && result.IsError:
			record.Status = storage.StatusError
			record.Error = resultText(result)
		}

		if rerr := rec.RecordCall(ctx, record); rerr != nil {
			log.Printf("Warning: recording %s call: %v", tool, rerr)
		}
		return result, err
	}
}

// resultText joins the text content of a tool result.
func resultText(result *mcp.CallToolResult) string {
	var text string
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			if text != "" {
				text += "\n"
			}
			text += tc.Text
		}
	}
	return text
}
