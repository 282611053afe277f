package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"

	"github.com/desertthunder/wicket/internal/models"
)

var (
	battingColumns = []table.Column{
		{Title: "Batter", Width: 24},
		{Title: "R", Width: 5},
		{Title: "B", Width: 5},
		{Title: "4s", Width: 4},
		{Title: "6s", Width: 4},
		{Title: "SR", Width: 7},
	}
	bowlingColumns = []table.Column{
		{Title: "Bowler", Width: 24},
		{Title: "O", Width: 5},
		{Title: "M", Width: 4},
		{Title: "R", Width: 5},
		{Title: "W", Width: 4},
		{Title: "Econ", Width: 6},
	}
)

func newTable(cols []table.Column, rows []table.Row) table.Model {
	return table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithHeight(len(rows)+1),
		table.WithFocused(false),
		table.WithStyles(styles.table),
	)
}

func battingTable(in models.Innings) table.Model {
	rows := make([]table.Row, 0, len(in.Batsmen))
	for _, b := range in.Batsmen {
		rows = append(rows, table.Row{
			b.Name, strconv.Itoa(b.Runs), strconv.Itoa(b.Balls),
			strconv.Itoa(b.Fours), strconv.Itoa(b.Sixes), fmt.Sprintf("%.2f", b.StrikeRate()),
		})
	}
	return newTable(battingColumns, rows)
}

func bowlingTable(in models.Innings) table.Model {
	rows := make([]table.Row, 0, len(in.Bowlers))
	for _, b := range in.Bowlers {
		rows = append(rows, table.Row{
			b.Name, b.Overs.String(), strconv.Itoa(b.Maidens),
			strconv.Itoa(b.Runs), strconv.Itoa(b.Wickets), fmt.Sprintf("%.2f", b.Economy()),
		})
	}
	return newTable(bowlingColumns, rows)
}

// renderInnings shows the innings at index i with both tables.
func renderInnings(s *models.Snapshot, i int) string {
	in, ok := s.InningsAt(i)
	if !ok {
		return styles.muted.Render("No innings yet")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s  %s\n\n",
		styles.title.Render(fmt.Sprintf("Innings %d/%d", i+1, len(s.Innings))),
		styles.ok.Render(in.Team+" "+in.Score()),
		styles.muted.Render(fmt.Sprintf("RR %.2f", in.RunRate())),
	)
	if len(in.Batsmen) > 0 {
		b.WriteString(battingTable(in).View() + "\n\n")
	}
	if len(in.Bowlers) > 0 {
		b.WriteString(bowlingTable(in).View() + "\n")
	}
	return b.String()
}

// renderProgress lists the checkpoints, one over per line.
func renderProgress(s *models.Snapshot) string {
	cps := s.Progress.Checkpoints
	if len(cps) == 0 {
		return ""
	}

	label := "Progress"
	if s.Progress.Interpolated {
		label += " (interpolated)"
	}

	first, second := "Team 1", "Team 2"
	if in, ok := s.InningsAt(0); ok && in.Team != "" {
		first = in.Team
	}
	if in, ok := s.InningsAt(1); ok && in.Team != "" {
		second = in.Team
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(label) + "\n")
	b.WriteString(styles.muted.Render(fmt.Sprintf("%5s  %-14s %-14s", "Over", first, second)) + "\n")
	for _, cp := range cps {
		t2 := "-"
		if cp.Team2Runs != nil {
			t2 = strconv.Itoa(*cp.Team2Runs)
		}
		fmt.Fprintf(&b, "%5d  %-14d %-14s\n", cp.Over, cp.Team1Runs, t2)
	}
	return b.String()
}
