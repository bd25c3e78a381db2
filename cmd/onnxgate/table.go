package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// renderTable draws a rounded table for the CLI surfaces: backend status,
// preflight checks, conversion history, config show. The numeric argument
// lists 1-based columns to right-align (ids, opsets, byte counts);
// everything else stays left-aligned.
func renderTable(headers []string, rows [][]string, numeric ...int) string {
	if len(headers) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range r {
			r[i] = ""
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	if len(numeric) > 0 {
		configs := make([]table.ColumnConfig, 0, len(numeric))
		for _, col := range numeric {
			configs = append(configs, table.ColumnConfig{
				Number:      col,
				Align:       text.AlignRight,
				AlignHeader: text.AlignLeft,
			})
		}
		tw.SetColumnConfigs(configs)
	}

	return tw.Render()
}
