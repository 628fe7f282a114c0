package main

import (
	"fmt"
	"io"
	"strconv"

	"bankeu-backend/internal/usecase/workflow"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func trackCell(t workflow.TrackDTO) string {
	if t.Status == "" {
		return "-"
	}
	return t.Status
}

// renderProposals writes one row per proposal with its workflow position.
func renderProposals(w io.Writer, items []workflow.ProposalDTO) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "no proposals")
		return err
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateRows = false
	t.AppendHeader(table.Row{"Proposal", "Year", "Title", "Stage", "Origin", "Department", "Subdistrict", "Top body", "Version"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, WidthMax: 40},
		{Number: 9, Align: text.AlignRight},
	})
	for _, p := range items {
		origin := p.ReturnOrigin
		if origin == "" {
			origin = "-"
		}
		t.AppendRow(table.Row{
			p.ProposalID,
			p.BudgetYear,
			p.Title,
			p.Stage,
			origin,
			trackCell(p.Department),
			trackCell(p.Subdistrict),
			trackCell(p.TopBody),
			strconv.FormatUint(p.Version, 10),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "", "", "", "total", len(items)})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}
