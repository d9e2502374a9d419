package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const maxCellWidth = 60

// renderTable draws rows under headers with rounded borders. Short rows are
// padded and long cells wrap at word boundaries.
func renderTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(asRow(headers, len(headers)))
	for _, row := range rows {
		tw.AppendRow(asRow(row, len(headers)))
	}

	columns := make([]table.ColumnConfig, len(headers))
	for i := range columns {
		columns[i] = table.ColumnConfig{
			Number:           i + 1,
			WidthMax:         maxCellWidth,
			WidthMaxEnforcer: text.WrapSoft,
		}
	}
	tw.SetColumnConfigs(columns)
	return tw.Render()
}

func asRow(cells []string, width int) table.Row {
	row := make(table.Row, width)
	for i := range width {
		if i < len(cells) {
			row[i] = cells[i]
		} else {
			row[i] = ""
		}
	}
	return row
}
