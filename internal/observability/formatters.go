// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/relocation-matcher/internal/types"
	"github.com/jonathan/relocation-matcher/internal/vibes"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // verbose output; write errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintMatches outputs the top matches with their breakdown and reasons.
func (p *Printer) PrintMatches(results []types.ScoredProperty) {
	if len(results) == 0 {
		p.printBox("TOP MATCHES", "No properties matched.")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Properties returned: %d\n\n", len(results)))

	count := min(len(results), maxItemsToShow)
	for i := 0; i < count; i++ {
		r := results[i]
		b := r.ScoreBreakdown
		sb.WriteString(fmt.Sprintf("#%d  %s (%s)\n", i+1, r.Title, r.Region))
		sb.WriteString(fmt.Sprintf("    Score: %d  ¥%d/month\n", r.AIScore, r.MonthlyCost))
		sb.WriteString(fmt.Sprintf("    B%d L%d E%d W%d F%d\n", b.Budget, b.Lifestyle, b.Environment, b.Workstyle, b.Family))
		for _, reason := range r.MatchReasons {
			sb.WriteString(fmt.Sprintf("    • %s\n", reason))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(results) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more", len(results)-maxItemsToShow))
	}

	p.printBox("TOP MATCHES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintVibes outputs base scores and the four time-of-day variants as a table.
func (p *Printer) PrintVibes(a *vibes.Assessment) {
	if a == nil {
		return
	}

	categories := make([]string, 0, len(a.Base))
	for c := range a.Base {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	var sb strings.Builder
	if a.Summary != "" {
		sb.WriteString(a.Summary + "\n\n")
	}
	sb.WriteString(fmt.Sprintf("%-10s %5s", "", "base"))
	for _, period := range vibes.Periods() {
		sb.WriteString(fmt.Sprintf(" %8s", period))
	}
	sb.WriteString("\n")

	for _, c := range categories {
		sb.WriteString(fmt.Sprintf("%-10s %5d", c, a.Base[c]))
		for _, period := range vibes.Periods() {
			sb.WriteString(fmt.Sprintf(" %8d", a.Periods[period][c]))
		}
		sb.WriteString("\n")
	}

	p.printBox("VIBES: "+a.Area, strings.TrimSuffix(sb.String(), "\n"))
}
