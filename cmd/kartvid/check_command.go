package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"kartvid/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify masks, directories, and external tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			results := preflight.RunAll(cmd.Context(), cfg)
			fmt.Fprint(out, newCheckReport(out, shouldColorize(out)).render(results))
			if preflight.Failed(results) {
				return fmt.Errorf("%d check(s) failed", countOutcomes(results)[outcomeFailed])
			}
			return nil
		},
	}
}

type checkOutcome int

const (
	outcomePassed checkOutcome = iota
	outcomeWarned
	outcomeFailed
)

// Optional checks warn instead of failing.
func outcomeOf(r preflight.Result) checkOutcome {
	switch {
	case r.Passed:
		return outcomePassed
	case r.Optional:
		return outcomeWarned
	default:
		return outcomeFailed
	}
}

func (o checkOutcome) label() string {
	switch o {
	case outcomePassed:
		return "OK"
	case outcomeWarned:
		return "WARN"
	default:
		return "FAIL"
	}
}

func countOutcomes(results []preflight.Result) map[checkOutcome]int {
	counts := make(map[checkOutcome]int, 3)
	for _, r := range results {
		counts[outcomeOf(r)]++
	}
	return counts
}

const checkNameWidth = 20

type checkReport struct {
	color   bool
	title   lipgloss.Style
	detail  lipgloss.Style
	outcome map[checkOutcome]lipgloss.Style
}

func newCheckReport(w io.Writer, color bool) checkReport {
	r := lipgloss.NewRenderer(w)
	return checkReport{
		color:  color,
		title:  r.NewStyle().Bold(true),
		detail: r.NewStyle().Faint(true),
		outcome: map[checkOutcome]lipgloss.Style{
			outcomePassed: r.NewStyle().Foreground(lipgloss.ANSIColor(2)),
			outcomeWarned: r.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(3)),
			outcomeFailed: r.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(1)),
		},
	}
}

func (c checkReport) style(s lipgloss.Style, text string) string {
	if !c.color || text == "" {
		return text
	}
	return s.Render(text)
}

// line renders one result as "  [OK]   Mask catalog         12 masks".
func (c checkReport) line(r preflight.Result) string {
	o := outcomeOf(r)
	tag := fmt.Sprintf("%-6s", "["+o.label()+"]")
	name := fmt.Sprintf("%-*s", checkNameWidth, r.Name)
	return strings.TrimRight("  "+c.style(c.outcome[o], tag)+" "+name+" "+c.style(c.detail, r.Detail), " ")
}

func (c checkReport) render(results []preflight.Result) string {
	var b strings.Builder
	title := "kartvid check"
	b.WriteString(c.style(c.title, title))
	b.WriteByte('\n')
	b.WriteString(strings.Repeat("─", len(title)))
	b.WriteByte('\n')
	for _, r := range results {
		b.WriteString(c.line(r))
		b.WriteByte('\n')
	}
	counts := countOutcomes(results)
	fmt.Fprintf(&b, "%d passed, %d warned, %d failed\n",
		counts[outcomePassed], counts[outcomeWarned], counts[outcomeFailed])
	return b.String()
}
