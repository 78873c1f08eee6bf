// Package infra contains infrastructure adapters for the scan context:
// report writers, the console renderer, and the outbound webhook.
package infra

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Adrijan-Petek/crypto-price-arbitrage-finder/business/scan/domain"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B"))
	spreadStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
)

// ConsoleRenderer renders a scan report as a ranked list on the terminal.
type ConsoleRenderer struct {
	out io.Writer
}

// NewConsoleRenderer creates a renderer writing to stdout.
func NewConsoleRenderer() *ConsoleRenderer {
	return &ConsoleRenderer{out: os.Stdout}
}

// Write renders the report.
func (r *ConsoleRenderer) Write(_ context.Context, report *domain.ScanReport) error {
	var b strings.Builder

	b.WriteString(titleStyle.Render("SPREAD SCAN"))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  %s", report.Timestamp.Format(time.RFC3339))))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("chains: %d  pairs: %d  candidates: %d",
		report.Summary.Chains, report.Summary.Pairs, report.Summary.Candidates)))
	b.WriteString("\n\n")

	if len(report.Top) == 0 {
		b.WriteString(mutedStyle.Render("no opportunities found"))
		b.WriteString("\n")
	} else {
		b.WriteString(headerStyle.Render("TOP OPPORTUNITIES"))
		b.WriteString("\n")
		for i, opp := range report.Top {
			b.WriteString(fmt.Sprintf("  %2d. %-28s %-12s %s  %s\n",
				i+1,
				opp.Pair,
				opp.ChainName,
				spreadStyle.Render(opp.SpreadPercent.StringFixed(4)+"%"),
				mutedStyle.Render(fmt.Sprintf("best=%s worst=%s", opp.Best, opp.Worst)),
			))
		}
	}

	flagged := 0
	for _, chain := range report.Chains {
		for _, res := range chain.Results {
			if res.LiquidityFlag {
				flagged++
			}
		}
	}
	if flagged > 0 {
		b.WriteString("\n")
		b.WriteString(warnStyle.Render(fmt.Sprintf("%d pair(s) suppressed for thin liquidity", flagged)))
		b.WriteString("\n")
	}

	_, err := fmt.Fprintln(r.out, b.String())
	return err
}
