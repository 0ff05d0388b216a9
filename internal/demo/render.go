package demo

import (
	"strings"

	"osrm-travel-tools/internal/domain"
	"osrm-travel-tools/internal/tabular"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const ruleWidth = 70

var (
	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			Width(ruleWidth - 2).
			Align(lipgloss.Center)

	titleStyle = lipgloss.NewStyle().Bold(true)

	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func banner(title string) string {
	return bannerStyle.Render(title)
}

func rule(ch string) string {
	return strings.Repeat(ch, ruleWidth)
}

func section(title string) string {
	return rule("=") + "\n" + titleStyle.Render(title) + "\n" + rule("=")
}

func renderTable(t *tabular.Table) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(t.Columns...).
		Rows(t.Rows...).
		String()
}

// matrixTable lays a grid out with origin names as the first column.
func matrixTable(m *domain.TravelMatrix, grid [][]*float64, decimals int) *tabular.Table {
	cols := make([]string, 0, 1+m.Cols())
	cols = append(cols, "origin")
	cols = append(cols, m.Destinations...)

	rows := make([][]string, m.Rows())
	for i, name := range m.Origins {
		row := make([]string, 0, 1+m.Cols())
		row = append(row, name)
		for _, v := range grid[i] {
			row = append(row, tabular.FormatFloat(v, decimals))
		}
		rows[i] = row
	}

	return &tabular.Table{Columns: cols, Rows: rows}
}
