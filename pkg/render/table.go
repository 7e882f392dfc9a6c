package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize/english"

	"github.com/macropower/zoorunner/pkg/plan"
	"github.com/macropower/zoorunner/pkg/rule"
)

const columnGap = "  "

// Table writes one row per route with its verdict, reason and matching rule,
// followed by the plan's warnings and a summary line.
func Table(w io.Writer, p *plan.Plan) error {
	s := NewStyles(w)

	rows := [][]string{{"ROUTE", "VERDICT", "REASON", "RULE"}}
	for _, e := range p.Entries {
		verdict := s.Test.Render(string(e.Decision.Verdict))
		if e.Decision.Verdict == rule.Skip {
			verdict = s.Skip.Render(string(e.Decision.Verdict))
		}

		rows = append(rows, []string{
			e.Route,
			verdict,
			s.Subtle.Render(string(e.Decision.Reason)),
			e.Decision.Rule,
		})
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], ansi.StringWidth(cell))
		}
	}

	var b strings.Builder
	for i, row := range rows {
		var line strings.Builder
		for j, cell := range row {
			if j > 0 {
				line.WriteString(columnGap)
			}

			pad := strings.Repeat(" ", widths[j]-ansi.StringWidth(cell))
			if i == 0 {
				cell = s.Header.Render(cell)
			}

			line.WriteString(cell + pad)
		}

		b.WriteString(strings.TrimRight(line.String(), " ") + "\n")
	}

	b.WriteString(Warnings(s, p))
	b.WriteString("\n" + Summary(p) + "\n")

	_, err := io.WriteString(w, b.String())
	if err != nil {
		return fmt.Errorf("write table: %w", err)
	}

	return nil
}

// Warnings describes the plan's unresolved routes and orphan include
// entries, one per line. It returns an empty string when there are none.
func Warnings(s *Styles, p *plan.Plan) string {
	var b strings.Builder

	for _, r := range p.Unresolved {
		fmt.Fprintf(&b, "%s %s has placeholders, add an example URL to [%s]\n",
			s.Warning.Render("!"), s.URL.Render(r), rule.SectionInclude)
	}

	for _, o := range p.Orphans {
		fmt.Fprintf(&b, "%s %s matches no route", s.Warning.Render("!"), s.URL.Render(o.Entry))
		if len(o.Suggestions) > 0 {
			fmt.Fprintf(&b, ", did you mean %s?", english.OxfordWordSeries(o.Suggestions, "or"))
		}

		b.WriteString("\n")
	}

	return b.String()
}

// Summary returns a one-line count of the plan's decisions.
func Summary(p *plan.Plan) string {
	return fmt.Sprintf("%s: %d tested, %d skipped; %s to check",
		english.Plural(len(p.Entries), "route", ""),
		p.Tested(),
		p.Skipped(),
		english.Plural(len(p.URLs), "URL", ""),
	)
}
