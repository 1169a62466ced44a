package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"apicheck/internal/breaking"
)

// reportStyles colors report lines. Without color every style renders
// text unchanged and accepted changes get a textual marker instead.
type reportStyles struct {
	breaking lipgloss.Style
	accepted lipgloss.Style
	addition lipgloss.Style
	heading  lipgloss.Style
	colored  bool
}

var styles = newReportStyles(io.Discard, false)

func newReportStyles(out io.Writer, colored bool) reportStyles {
	r := lipgloss.NewRenderer(out)
	if colored {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return reportStyles{
		breaking: r.NewStyle().Foreground(lipgloss.Color("196")),
		accepted: r.NewStyle().Foreground(lipgloss.Color("214")),
		addition: r.NewStyle().Foreground(lipgloss.Color("42")),
		heading:  r.NewStyle().Bold(true),
		colored:  colored,
	}
}

// useColor decides whether report output to w is colored. mode is one of
// auto, always, never. Under auto only a terminal file gets color.
func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (s reportStyles) change(c breaking.APIChange, line string) string {
	switch {
	case c.Accepted:
		if !s.colored {
			line += " [accepted]"
		}
		return s.accepted.Render(line)
	case c.Severity == breaking.SeverityNonBreaking:
		return s.addition.Render(line)
	default:
		return s.breaking.Render(line)
	}
}

// CompareResponseCLI is the CLI response for compare
type CompareResponseCLI struct {
	breaking.CompareResult `yaml:",inline"`
	RunID                  string `json:"runId,omitempty" yaml:"runId,omitempty"`
}

// detailRank orders the lines of one CHANGED block the way the diff walks a
// class: superclass, interfaces, methods, fields, removals first.
func detailRank(c breaking.APIChange) int {
	rank := 0
	switch c.SymbolKind {
	case breaking.SymbolSuperclass:
		return 0
	case breaking.SymbolSupertype:
		rank = 1
	case breaking.SymbolMethod:
		rank = 3
	case breaking.SymbolField:
		rank = 5
	}
	if c.Kind == breaking.ChangeAdded {
		rank++
	}
	return rank
}

func isClassLevel(c breaking.APIChange) bool {
	return c.SymbolKind == breaking.SymbolClass || c.SymbolKind == breaking.SymbolInterface
}

func detailLine(c breaking.APIChange) string {
	verb := "removed"
	if c.Kind == breaking.ChangeAdded {
		verb = "added"
	}
	switch c.SymbolKind {
	case breaking.SymbolSuperclass:
		return fmt.Sprintf("  * super class changed: was: %s, now: %s", orNone(c.OldValue), orNone(c.NewValue))
	case breaking.SymbolSupertype:
		return fmt.Sprintf("  * interface %s: %s", verb, strings.ReplaceAll(c.Member, "/", "."))
	case breaking.SymbolField:
		return fmt.Sprintf("  * field %s: %s", verb, c.Member)
	default:
		return fmt.Sprintf("  * method %s: %s", verb, c.Member)
	}
}

// formatCompareHuman renders added and removed classes first, then one
// CHANGED block per class with detail lines.
func formatCompareHuman(resp *CompareResponseCLI) string {
	var sb strings.Builder

	sb.WriteString(styles.heading.Render(fmt.Sprintf("Comparing %s to %s", resp.Before, resp.After)))
	sb.WriteString("\n\n")

	var added, removed, details []breaking.APIChange
	for _, c := range resp.Changes {
		switch {
		case isClassLevel(c) && c.Kind == breaking.ChangeAdded:
			added = append(added, c)
		case isClassLevel(c):
			removed = append(removed, c)
		default:
			details = append(details, c)
		}
	}
	byClass := func(list []breaking.APIChange) {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Class < list[j].Class })
	}
	byClass(added)
	byClass(removed)
	sort.SliceStable(details, func(i, j int) bool {
		a, b := details[i], details[j]
		if a.Class != b.Class {
			return a.Class < b.Class
		}
		if ra, rb := detailRank(a), detailRank(b); ra != rb {
			return ra < rb
		}
		return a.Member < b.Member
	})

	if len(resp.Changes) == 0 {
		sb.WriteString("No API changes detected.\n")
	}
	for _, c := range added {
		sb.WriteString(styles.change(c, "ADDED: "+c.SymbolName))
		sb.WriteString("\n")
	}
	for _, c := range removed {
		sb.WriteString(styles.change(c, "REMOVED: "+c.SymbolName))
		sb.WriteString("\n")
	}
	current := ""
	for _, c := range details {
		if c.Class != current {
			current = c.Class
			sb.WriteString(styles.heading.Render("CHANGED: " + strings.ReplaceAll(c.Class, "/", ".")))
			sb.WriteString("\n")
		}
		sb.WriteString(styles.change(c, detailLine(c)))
		sb.WriteString("\n")
	}

	if resp.Summary != nil {
		s := resp.Summary
		sb.WriteString(fmt.Sprintf("\nSummary: %d breaking, %d accepted, %d additions", s.BreakingChanges, s.Warnings, s.Additions))
		sb.WriteString(fmt.Sprintf(" (classes: %d added, %d removed, %d changed, %d unchanged)\n",
			s.ClassesAdded, s.ClassesRemoved, s.ClassesChanged, s.ClassesUnchanged))
	}
	sb.WriteString(fmt.Sprintf("Public classes: %d before, %d after\n", resp.TotalBeforeClasses, resp.TotalAfterClasses))
	if resp.SemverAdvice != "" {
		sb.WriteString(fmt.Sprintf("Recommended version bump: %s\n", strings.ToUpper(resp.SemverAdvice)))
	}
	if resp.RunID != "" {
		sb.WriteString(fmt.Sprintf("Exported as run %s\n", resp.RunID))
	}

	return sb.String()
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
