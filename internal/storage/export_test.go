package storage

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func sampleRecord() *CallRecord {
	return &CallRecord{
		ID:         "abc12345-0000-0000-0000-000000000000",
		Tool:       "deephaven_list_tables",
		Worker:     "prod",
		DurationMS: 17,
		Status:     StatusError,
		Error:      "unknown worker: prod",
		CreatedAt:  time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
	}
}

func TestExportMarkdown(t *testing.T) {
	md := ExportMarkdown(sampleRecord())

	for _, want := range []string{
		"deephaven_list_tables",
		"prod",
		"error",
		"17ms",
		"unknown worker: prod",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestExportMarkdownOmitsEmptyWorker(t *testing.T) {
	rec := sampleRecord()
	rec.Worker = ""
	rec.Error = ""

	md := ExportMarkdown(rec)
	if strings.Contains(md, "Worker") {
		t.Errorf("markdown should omit empty worker:\n%s", md)
	}
}

func TestExportJSON(t *testing.T) {
	data, err := ExportJSON(sampleRecord())
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}

	var got CallRecord
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshaling export: %v", err)
	}
	if got.Tool != "deephaven_list_tables" || got.DurationMS != 17 {
		t.Errorf("roundtrip = %+v", got)
	}
}
