package output

import (
	"io"

	"github.com/rodaine/table"
)

// RenderTable renders pre-flattened rows as a rich-mode table. Cells in
// width-limited columns are truncated with an ellipsis.
func RenderTable(w io.Writer, columns []Column, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	headers := make([]interface{}, len(columns))
	for i, col := range columns {
		headers[i] = col.Name
	}

	tbl := table.New(headers...).WithWriter(w)

	for _, row := range rows {
		cells := make([]interface{}, len(columns))
		for i, col := range columns {
			value := row[i]
			if col.Width > 0 {
				value = TruncateString(value, col.Width)
			}
			cells[i] = value
		}
		tbl.AddRow(cells...)
	}

	tbl.Print()
}

// TruncateString shortens s to at most maxLen characters, replacing the tail
// with "..." when it has to cut.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
