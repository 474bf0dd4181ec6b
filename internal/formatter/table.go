package formatter

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// Table is tabular terminal output.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Append adds a row.
func (t *Table) Append(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render writes t to w with tablewriter.
func (t *Table) Render(w io.Writer) error {
	table := tablewriter.NewTable(w)

	if len(t.Headers) > 0 {
		headers := make([]any, len(t.Headers))
		for i, h := range t.Headers {
			headers[i] = h
		}
		table.Header(headers...)
	}

	for _, row := range t.Rows {
		cells := make([]any, len(row))
		for i, c := range row {
			cells[i] = c
		}
		if err := table.Append(cells...); err != nil {
			return err
		}
	}

	return table.Render()
}
