package dh

import (
	"context"
	"testing"

	"github.com/apache/arrow/go/v8/arrow"
	"github.com/apache/arrow/go/v8/arrow/array"
	"github.com/apache/arrow/go/v8/arrow/memory"

	"github.com/michaelbrown/dhmcp/internal/workers"
)

func TestAuth(t *testing.T) {
	tests := []struct {
		name      string
		worker    workers.Worker
		wantType  string
		wantToken string
	}{
		{"empty defaults to anonymous", workers.Worker{}, "Anonymous", ""},
		{"type only", workers.Worker{AuthType: "Anonymous"}, "Anonymous", ""},
		{"type and token", workers.Worker{AuthType: "Basic", AuthToken: "user:pass"}, "Basic", "user:pass"},
		{"token without type", workers.Worker{AuthToken: "tok"}, "Anonymous", "tok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authType, authToken := auth(tt.worker)
			if authType != tt.wantType || authToken != tt.wantToken {
				t.Errorf("auth() = %q/%q, want %q/%q", authType, authToken, tt.wantType, tt.wantToken)
			}
		})
	}
}

func TestSessionOptionsRejectsTLS(t *testing.T) {
	_, err := sessionOptions(workers.Worker{Host: "h", Port: 1, UseTLS: true})
	if err == nil {
		t.Fatal("expected error for use_tls worker")
	}
}

func TestSessionOptionsDefaults(t *testing.T) {
	opts, err := sessionOptions(workers.Worker{Host: "h", Port: 1})
	if err != nil {
		t.Fatalf("sessionOptions: %v", err)
	}
	if len(opts) != 1 {
		t.Errorf("got %d options, want 1 (console)", len(opts))
	}
}

func TestRecordSchema(t *testing.T) {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "C1", Type: arrow.PrimitiveTypes.Int32},
		{Name: "C2", Type: arrow.BinaryTypes.String},
	}, nil)

	b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer b.Release()
	rec := b.NewRecord()
	defer rec.Release()

	got := recordSchema(rec)
	if len(got) != 2 {
		t.Fatalf("got %d columns, want 2", len(got))
	}
	if got["C1"] != "int32" {
		t.Errorf("C1 type = %q, want int32", got["C1"])
	}
	if got["C2"] != "utf8" {
		t.Errorf("C2 type = %q, want utf8", got["C2"])
	}
}

func TestSessionUnknownWorker(t *testing.T) {
	m := NewManager(&workers.Config{
		Workers:       map[string]workers.Worker{"a": {Host: "h", Port: 1}},
		DefaultWorker: "a",
	})
	defer m.Close()

	_, _, err := m.session(context.Background(), "nope")
	if err == nil {
		t.Fatal("expected error for unknown worker")
	}
}

func TestSessionRequiresHostAndPort(t *testing.T) {
	m := NewManager(&workers.Config{
		Workers:       map[string]workers.Worker{"a": {}},
		DefaultWorker: "a",
	})
	defer m.Close()

	_, _, err := m.session(context.Background(), "")
	if err == nil {
		t.Fatal("expected error for worker without host/port")
	}
}
