package main

import (
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

type column struct {
	title string
	align text.Align
}

var (
	configColumns = []column{
		{"ID", text.AlignLeft},
		{"Name", text.AlignLeft},
		{"Protocol", text.AlignLeft},
		{"Header", text.AlignLeft},
		{"Keys", text.AlignRight},
		{"Default", text.AlignLeft},
		{"Updated", text.AlignLeft},
	}
	keyColumns = []column{
		{"Key", text.AlignLeft},
		{"Code", text.AlignRight},
		{"Label", text.AlignLeft},
		{"Category", text.AlignLeft},
	}
)

// writeTable prints rows as a rounded table on a terminal. Pipes and files
// get one tab-separated line per row so the output stays greppable.
func writeTable(out io.Writer, columns []column, rows [][]string) error {
	if !isTerminal(out) {
		var b strings.Builder
		for _, c := range columns {
			if b.Len() > 0 {
				b.WriteByte('\t')
			}
			b.WriteString(c.title)
		}
		b.WriteByte('\n')
		for _, row := range rows {
			b.WriteString(strings.Join(row, "\t"))
			b.WriteByte('\n')
		}
		_, err := io.WriteString(out, b.String())
		return err
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, c := range columns {
		header[i] = c.title
		configs[i] = table.ColumnConfig{Number: i + 1, Align: c.align, AlignHeader: text.AlignLeft}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)
	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}
	_, err := io.WriteString(out, tw.Render()+"\n")
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
