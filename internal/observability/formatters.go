// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jonathan/interview-engine/internal/types"
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
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintReport outputs a human-readable summary of a finished session's report.
func (p *Printer) PrintReport(report *types.Report) {
	if report == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Session:  %s\n", report.SessionID))
	sb.WriteString(fmt.Sprintf("Turns:    %d graded / %d total\n", report.GradedTurns, report.TotalTurns))
	sb.WriteString(fmt.Sprintf("Overall:  %.2f\n", report.AggregateScore))
	sb.WriteString(fmt.Sprintf("Trend:    %s\n", report.TrendLabel))
	sb.WriteString(fmt.Sprintf("Verdict:  %s\n", report.Recommendation))

	if len(report.ByCategory) > 0 {
		sb.WriteString("\nBy category:\n")
		categories := make([]string, 0, len(report.ByCategory))
		for category := range report.ByCategory {
			categories = append(categories, string(category))
		}
		sort.Strings(categories)
		for _, category := range categories {
			sb.WriteString(fmt.Sprintf("  • %-14s %.2f\n", category, report.ByCategory[types.Category(category)]))
		}
	}

	if len(report.Strengths) > 0 {
		sb.WriteString("\nStrengths:\n")
		for _, s := range report.Strengths {
			sb.WriteString(fmt.Sprintf("  • %s\n", s))
		}
	}
	if len(report.Weaknesses) > 0 {
		sb.WriteString("\nWeaknesses:\n")
		for _, w := range report.Weaknesses {
			sb.WriteString(fmt.Sprintf("  • %s\n", w))
		}
	}

	p.printBox("INTERVIEW REPORT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTurns outputs a session's turn history with scores and arms.
func (p *Printer) PrintTurns(turns []types.Turn) {
	if len(turns) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total turns: %d\n\n", len(turns)))

	count := min(len(turns), maxItemsToShow)
	for i := 0; i < count; i++ {
		turn := turns[i]
		sb.WriteString(fmt.Sprintf("#%d  %s (%s)\n", i+1, turn.QuestionID, turn.Arm))
		if turn.Graded() {
			sb.WriteString(fmt.Sprintf("    Score: %.2f (confidence %.2f)\n", *turn.Score, turn.Confidence))
		} else {
			sb.WriteString("    Score: ungraded\n")
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(turns) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more turns", len(turns)-maxItemsToShow))
	}

	p.printBox("TURN HISTORY", sb.String())
}

// PrintArmBeliefs outputs the posterior of every arm, sorted by mean.
func (p *Printer) PrintArmBeliefs(beliefs map[string]types.Belief) {
	if len(beliefs) == 0 {
		return
	}

	names := make([]string, 0, len(beliefs))
	for name := range beliefs {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return beliefs[names[i]].Mean() > beliefs[names[j]].Mean()
	})

	var sb strings.Builder
	for i, name := range names {
		b := beliefs[name]
		sb.WriteString(fmt.Sprintf("%-32s %.2f\n", name, b.Mean()))
		sb.WriteString(fmt.Sprintf("  α=%.2f β=%.2f presented=%d\n", b.Alpha, b.Beta, b.TimesPresented))
		if i < len(names)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("ARM BELIEFS", strings.TrimSuffix(sb.String(), "\n"))
}
