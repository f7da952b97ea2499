package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"stdinspector/internal/inspector"
	"stdinspector/internal/standards"
)

const (
	symbolPass = "✓"
	symbolFail = "✗"
	symbolWarn = "⚠"
)

// ChecklistRenderer writes one line per standard: a pass mark, a critical
// failure mark or a recommendation mark, followed by the code and
// description. Failing entries add what was observed and the remediation.
type ChecklistRenderer struct {
	Color bool
}

func (r *ChecklistRenderer) Render(w io.Writer, report *inspector.Report) error {
	pass := r.paint(color.FgGreen)
	critical := r.paint(color.FgRed)
	advisory := r.paint(color.FgYellow)

	var b strings.Builder
	for _, e := range report.Entries {
		mark := pass.Sprint(symbolPass)
		if !e.MeetsStandard {
			if e.Severity == standards.SeverityCritical {
				mark = critical.Sprint(symbolFail)
			} else {
				mark = advisory.Sprint(symbolWarn)
			}
		}
		fmt.Fprintf(&b, "[%s] [%s] %s\n", mark, e.Code, e.Description)
		if e.MeetsStandard {
			continue
		}
		if e.Errored() {
			fmt.Fprintf(&b, "    - Error: %v\n", e.Err)
		} else {
			fmt.Fprintf(&b, "    - Got: %s\n", e.ValueOr(standards.ValueNotFound))
		}
		fmt.Fprintf(&b, "    - Suggestion: %s\n", e.Recommendation)
	}
	b.WriteString(summaryLine(report.Summary()))
	b.WriteByte('\n')

	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}
	return flush(w)
}

func (r *ChecklistRenderer) paint(attr color.Attribute) *color.Color {
	c := color.New(attr)
	if r.Color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func summaryLine(s inspector.Summary) string {
	line := fmt.Sprintf("%d/%d standards met", s.Passed, s.Total)
	var parts []string
	if s.CriticalFailures > 0 {
		parts = append(parts, plural(s.CriticalFailures, "critical failure", "critical failures"))
	}
	if s.RecommendationFailures > 0 {
		parts = append(parts, plural(s.RecommendationFailures, "recommendation not met", "recommendations not met"))
	}
	if s.Errored > 0 {
		parts = append(parts, plural(s.Errored, "standard errored", "standards errored"))
	}
	if len(parts) > 0 {
		line += " (" + strings.Join(parts, ", ") + ")"
	}
	return line
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
