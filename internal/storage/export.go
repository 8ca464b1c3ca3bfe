package storage

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExportMarkdown renders a call record as a markdown document.
func ExportMarkdown(rec *CallRecord) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# Tool call %s\n\n", rec.ID))
	b.WriteString(fmt.Sprintf("- **Tool:** %s\n", rec.Tool))
	if rec.Worker != "" {
		b.WriteString(fmt.Sprintf("- **Worker:** %s\n", rec.Worker))
	}
	b.WriteString(fmt.Sprintf("- **Status:** %s\n", rec.Status))
	b.WriteString(fmt.Sprintf("- **Duration:** %dms\n", rec.DurationMS))
	b.WriteString(fmt.Sprintf("- **At:** %s\n", rec.CreatedAt.Format("2006-01-02 15:04:05")))

	if rec.Error != "" {
		b.WriteString(fmt.Sprintf("\n```\n%s\n```\n", rec.Error))
	}

	return b.String()
}

// ExportJSON renders a call record as formatted JSON.
func ExportJSON(rec *CallRecord) ([]byte, error) {
	return json.MarshalIndent(rec, "", "  ")
}
