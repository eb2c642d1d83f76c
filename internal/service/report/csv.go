package report

import (
	"bytes"
	"strings"

	"github.com/cmlabs-hris/kintai-line-go/internal/domain/report"
)

// escapeCSV quotes a field only when it holds a comma, a quote or a line
// break. Embedded quotes are doubled.
func escapeCSV(field string) string {
	if !strings.ContainsAny(field, ",\"\r\n") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

func writeCSVLine(buf *bytes.Buffer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(escapeCSV(f))
	}
	buf.WriteByte('\n')
}

func renderCSV(rows [][]string) []byte {
	var buf bytes.Buffer
	writeCSVLine(&buf, report.Columns)
	for _, row := range rows {
		writeCSVLine(&buf, row)
	}
	return buf.Bytes()
}
