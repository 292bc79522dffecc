package textutil

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Column describes one table column. Width is a minimum cell width, used to
// keep short fixed labels such as places and laps aligned from one table to
// the next.
type Column struct {
	Title string
	Right bool
	Width int
}

// RenderTable renders rows as a rounded table with headers printed as given.
// Short rows are padded with empty cells; extra cells are dropped.
func RenderTable(columns []Column, rows [][]string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, col := range columns {
		header[i] = col.Title
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			WidthMin:    col.Width,
			AlignHeader: text.AlignLeft,
		}
		if col.Right {
			configs[i].Align = text.AlignRight
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		cells := make(table.Row, len(columns))
		for i := range cells {
			cells[i] = ""
			if i < len(row) {
				cells[i] = row[i]
			}
		}
		tw.AppendRow(cells)
	}
	return tw.Render()
}
