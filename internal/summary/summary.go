// Package summary renders the end-of-run console report.
package summary

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vadiminshakov/cryptocorr/internal/domain"
)

// topPairs is how many leading pairs each window shows.
const topPairs = 5

var (
	subtle  = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	special = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	titleStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1)

	rowStyle  = lipgloss.NewStyle().PaddingLeft(2)
	noteStyle = lipgloss.NewStyle().Foreground(subtle).PaddingLeft(2)
)

// Render lists the top pairs of one window. Records are expected sorted by
// descending correlation, the order the aggregator produces.
func Render(window domain.Window, records []domain.PairRecord) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("TOP PAIRS %s", window)) + "\n")

	if len(records) == 0 {
		b.WriteString(noteStyle.Render("no pairs qualified") + "\n")
		return b.String()
	}

	n := topPairs
	if len(records) < n {
		n = len(records)
	}
	for i := 0; i < n; i++ {
		rec := records[i]
		line := fmt.Sprintf("%d. %-12s corr %7.4f cap %-10s change %+.2f%%",
			i+1, rec.Label, rec.Correlation,
			domain.FormatMarketCap(rec.CombinedMarketCap), rec.CombinedChangePct)
		b.WriteString(rowStyle.Render(line) + "\n")
	}
	return b.String()
}
