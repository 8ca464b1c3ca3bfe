package tools

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/michaelbrown/dhmcp/internal/dh"
	"github.com/michaelbrown/dhmcp/internal/storage"
	"github.com/michaelbrown/dhmcp/internal/workers"
)

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	if args != nil {
		req.Params.Arguments = args
	}
	return req
}

func text(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("nil result")
	}
	return resultText(result)
}

func testDeps(cfg *workers.Config) Deps {
	return Deps{
		Workers:  cfg,
		Sessions: dh.NewManager(cfg),
	}
}

func TestEcho(t *testing.T) {
	result, err := handleEcho(context.Background(), callRequest("echo_tool", map[string]any{"message": "x"}))
	if err != nil {
		t.Fatalf("handleEcho: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", text(t, result))
	}
	if got := text(t, result); got != "Echo: x" {
		t.Errorf("echo = %q, want %q", got, "Echo: x")
	}
}

func TestEchoEmptyString(t *testing.T) {
	result, err := handleEcho(context.Background(), callRequest("echo_tool", map[string]any{"message": ""}))
	if err != nil {
		t.Fatalf("handleEcho: %v", err)
	}
	if result.IsError {
		t.Fatalf("empty message should echo, got error: %s", text(t, result))
	}
	if got := text(t, result); got != "Echo: " {
		t.Errorf("echo = %q, want %q", got, "Echo: ")
	}
}

func TestEchoMissingMessage(t *testing.T) {
	result, err := handleEcho(context.Background(), callRequest("echo_tool", nil))
	if err != nil {
		t.Fatalf("handleEcho: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for missing message")
	}
}

func TestEchoNonStringMessage(t *testing.T) {
	result, err := handleEcho(context.Background(), callRequest("echo_tool", map[string]any{"message": float64(7)}))
	if err != nil {
		t.Fatalf("handleEcho: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for non-string message")
	}
}

func TestGnomeCount(t *testing.T) {
	result, err := handleGnomeCount(context.Background(), callRequest("gnome_count_colorado", nil))
	if err != nil {
		t.Fatalf("handleGnomeCount: %v", err)
	}
	if got := text(t, result); got != "53" {
		t.Errorf("gnome count = %q, want 53", got)
	}
}

func TestWorkerNames(t *testing.T) {
	d := testDeps(&workers.Config{
		Workers: map[string]workers.Worker{"b": {}, "a": {}},
	})

	result, err := d.handleWorkerNames(context.Background(), callRequest("deephaven_worker_names", nil))
	if err != nil {
		t.Fatalf("handleWorkerNames: %v", err)
	}
	if got := text(t, result); got != `["a","b"]` {
		t.Errorf("worker names = %q, want [\"a\",\"b\"]", got)
	}
}

func TestDefaultWorker(t *testing.T) {
	d := testDeps(&workers.Config{
		Workers:       map[string]workers.Worker{"a": {}},
		DefaultWorker: "a",
	})

	result, err := d.handleDefaultWorker(context.Background(), callRequest("deephaven_default_worker", nil))
	if err != nil {
		t.Fatalf("handleDefaultWorker: %v", err)
	}
	if got := text(t, result); got != "a" {
		t.Errorf("default worker = %q, want a", got)
	}
}

func TestDefaultWorkerUnset(t *testing.T) {
	d := testDeps(&workers.Config{Workers: map[string]workers.Worker{"a": {}}})

	result, err := d.handleDefaultWorker(context.Background(), callRequest("deephaven_default_worker", nil))
	if err != nil {
		t.Fatalf("handleDefaultWorker: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result when no default is configured")
	}
}

func TestListTablesUnknownWorker(t *testing.T) {
	d := testDeps(&workers.Config{
		Workers:       map[string]workers.Worker{"a": {Host: "h", Port: 1}},
		DefaultWorker: "a",
	})
	defer d.Sessions.Close()

	result, err := d.handleListTables(context.Background(), callRequest("deephaven_list_tables", map[string]any{"worker_name": "nope"}))
	if err != nil {
		t.Fatalf("handleListTables: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for unknown worker")
	}
	if got := text(t, result); !strings.Contains(got, "unknown worker") {
		t.Errorf("error text = %q, want it to mention unknown worker", got)
	}
}

func TestTableSchemasNoDefault(t *testing.T) {
	d := testDeps(&workers.Config{Workers: map[string]workers.Worker{"a": {Host: "h", Port: 1}}})
	defer d.Sessions.Close()

	result, err := d.handleTableSchemas(context.Background(), callRequest("deephaven_table_schemas", nil))
	if err != nil {
		t.Fatalf("handleTableSchemas: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result when no worker named and no default")
	}
}

// --- instrumentation ---

type fakeRecorder struct {
	records []*storage.CallRecord
	err     error
}

func (f *fakeRecorder) RecordCall(ctx context.Context, rec *storage.CallRecord) error {
	f.records = append(f.records, rec)
	return f.err
}

func TestInstrumentRecordsSuccess(t *testing.T) {
	rec := &fakeRecorder{}
	h := instrument(rec, "echo_tool", handleEcho)

	result, err := h(context.Background(), callRequest("echo_tool", map[string]any{"message": "hi"}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected error result: %s", text(t, result))
	}

	if len(rec.records) != 1 {
		t.Fatalf("got %d records, want 1", len(rec.records))
	}
	r := rec.records[0]
	if r.Tool != "echo_tool" {
		t.Errorf("tool = %q", r.Tool)
	}
	if r.Status != storage.StatusOK {
		t.Errorf("status = %q, want ok", r.Status)
	}
	if r.ID == "" {
		t.Error("record should have an ID")
	}
}

func TestInstrumentRecordsErrorResult(t *testing.T) {
	d := testDeps(&workers.Config{
		Workers:       map[string]workers.Worker{"a": {Host: "h", Port: 1}},
		DefaultWorker: "a",
	})
	defer d.Sessions.Close()

	rec := &fakeRecorder{}
	h := instrument(rec, "deephaven_list_tables", d.handleListTables)

	_, err := h(context.Background(), callRequest("deephaven_list_tables", map[string]any{"worker_name": "nope"}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}

	if len(rec.records) != 1 {
		t.Fatalf("got %d records, want 1", len(rec.records))
	}
	r := rec.records[0]
	if r.Status != storage.StatusError {
		t.Errorf("status = %q, want error", r.Status)
	}
	if r.Worker != "nope" {
		t.Errorf("worker = %q, want nope", r.Worker)
	}
	if !strings.Contains(r.Error, "unknown worker") {
		t.Errorf("error = %q", r.Error)
	}
}

func TestInstrumentNilRecorder(t *testing.T) {
	h := instrument(nil, "echo_tool", handleEcho)

	result, err := h(context.Background(), callRequest("echo_tool", map[string]any{"message": "hi"}))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if got := resultText(result); got != "Echo: hi" {
		t.Errorf("result = %q", got)
	}
}
