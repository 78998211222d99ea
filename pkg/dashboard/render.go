package dashboard

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/table"
	"github.com/tealeg/xlsx"
)

var tableHeader = []string{"Data", "Casos", "Mortes", "Recup.", "Ativos"}

func RenderCards(s Stats) string {
	cards := []struct {
		title, value string
	}{
		{"Total de Casos", s.Total},
		{"Óbitos", s.Deaths},
		{"Recuperados", s.Recovered},
		{"Ativos", s.Active},
	}

	var b strings.Builder
	for _, c := range cards {
		fmt.Fprintf(&b, "%s: %s\n", c.title, c.value)
	}
	return b.String()
}

func newTableWriter(rows []TableRow) table.Writer {
	t := table.NewWriter()
	header := make(table.Row, 0, len(tableHeader))
	for _, h := range tableHeader {
		header = append(header, h)
	}
	t.AppendHeader(header)
	for _, r := range rows {
		t.AppendRow(table.Row{r.Date, r.Cases, r.Deaths, r.Recovered, r.Active})
	}
	return t
}

// RenderTable returns the rows as a text table
func RenderTable(rows []TableRow) string {
	return newTableWriter(rows).Render()
}

// Render writes the complete dashboard (title, cards, table) as plain text
func Render(w io.Writer, s Snapshot) error {
	_, err := fmt.Fprintf(w, "%s\n\n%s\n%s\n", s.Title(), RenderCards(s.Stats), RenderTable(s.Rows))
	return err
}

// WriteXlsx writes raw counts of the window into a single sheet workbook
func WriteXlsx(w io.Writer, s Snapshot) error {
	f := xlsx.NewFile()
	sh, err := f.AddSheet("nordeste")
	if err != nil {
		return err
	}

	title := sh.AddRow()
	title.AddCell().SetString(s.Title())

	header := sh.AddRow()
	for _, h := range tableHeader {
		header.AddCell().SetString(h)
	}

	for _, r := range s.Window {
		row := sh.AddRow()
		row.AddCell().SetString(FormatDateDisplay(r.Date))
		row.AddCell().SetInt64(r.Data.Confirmed)
		row.AddCell().SetInt64(r.Data.Deaths)
		row.AddCell().SetInt64(r.Data.Recovered)
		row.AddCell().SetInt64(r.Data.Active)
	}

	return f.Write(w)
}
