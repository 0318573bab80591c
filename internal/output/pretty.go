// Package output renders run summaries and verification reports for the
// terminal or as JSON.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"themeshot/internal/runner"
	"themeshot/internal/theme"
	"themeshot/internal/verify"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Pretty renders human readable output.
type Pretty struct {
	out io.Writer
}

// NewPretty creates a pretty renderer writing to out.
func NewPretty(out io.Writer) *Pretty {
	return &Pretty{out: out}
}

// RenderSummary writes the end-of-run summary.
func (p *Pretty) RenderSummary(runID string, s runner.Summary, themes []theme.Theme, projectCount int) error {
	var b strings.Builder
	fmt.Fprintln(&b, titleStyle.Render("Screenshot generation summary"))
	if runID != "" {
		fmt.Fprintln(&b, mutedStyle.Render("run "+runID))
	}
	total := fmt.Sprintf("%d/%d successful", s.Successful, s.TotalExpected)
	if s.OK() {
		fmt.Fprintln(&b, okStyle.Render(total))
	} else {
		fmt.Fprintln(&b, errorStyle.Render(total))
	}

	if len(themes) > 1 {
		fmt.Fprintln(&b, "By theme:")
		for _, t := range themes {
			fmt.Fprintf(&b, "  %-6s %d/%d\n", t, s.ByTheme[t], projectCount)
		}
	}
	if s.RetriedCount > 0 {
		fmt.Fprintln(&b, warnStyle.Render(fmt.Sprintf("Required retries: %d", s.RetriedCount)))
	}
	if len(s.Failed) > 0 {
		fmt.Fprintln(&b, errorStyle.Render("Failed:"))
		for _, f := range s.Failed {
			fmt.Fprintf(&b, "  - %s (%s): %s (%d attempts)\n", f.ProjectName, f.Theme, f.Error, f.AttemptsUsed)
		}
	}
	_, err := io.WriteString(p.out, b.String())
	return err
}

// RenderReport writes a verification report.
func (p *Pretty) RenderReport(r verify.Report) error {
	var b strings.Builder
	fmt.Fprintln(&b, titleStyle.Render("Verifying screenshots in "+r.Dir))

	current := ""
	for _, e := range r.Entries {
		if e.Project != current {
			current = e.Project
			fmt.Fprintf(&b, "%s:\n", e.Project)
		}
		if e.Found {
			fmt.Fprintf(&b, "  %s %-5s %s (%s)\n", okStyle.Render("ok"), e.Theme, e.File, humanize.Bytes(uint64(e.SizeBytes)))
		} else {
			fmt.Fprintf(&b, "  %s %-5s %s\n", errorStyle.Render("missing"), e.Theme, e.File)
		}
	}

	found := fmt.Sprintf("Found %d/%d screenshots", r.TotalFound, r.TotalExpected)
	if r.Success {
		fmt.Fprintln(&b, okStyle.Render(found))
	} else {
		fmt.Fprintln(&b, errorStyle.Render(found))
		fmt.Fprintln(&b, mutedStyle.Render("Some screenshots are missing. Run: themeshot generate"))
	}

	if len(r.Comparisons) > 0 {
		fmt.Fprintln(&b, "Theme comparison (sizes):")
		for _, c := range r.Comparisons {
			sign := ""
			if c.DeltaBytes > 0 {
				sign = "+"
			}
			line := fmt.Sprintf("  %s: light %s, dark %s (%s%s)", c.Project,
				humanize.Bytes(uint64(c.LightBytes)), humanize.Bytes(uint64(c.DarkBytes)),
				sign, signedBytes(c.DeltaBytes))
			if c.ThemeSuspect {
				line += " " + warnStyle.Render("dark capture is not darker than light")
			}
			fmt.Fprintln(&b, line)
		}
	}
	_, err := io.WriteString(p.out, b.String())
	return err
}

// RenderRuns lists run ids with their headline numbers.
func (p *Pretty) RenderRuns(runs []runner.Manifest) error {
	var b strings.Builder
	if len(runs) == 0 {
		fmt.Fprintln(&b, mutedStyle.Render("no runs yet"))
	}
	for _, m := range runs {
		status := okStyle.Render("ok")
		if !m.Summary.OK() {
			status = errorStyle.Render("partial")
		}
		fmt.Fprintf(&b, "%s  %s  %d/%d  %s\n", m.RunID, m.StartedAt.Format("2006-01-02 15:04:05"),
			m.Summary.Successful, m.Summary.TotalExpected, status)
	}
	_, err := io.WriteString(p.out, b.String())
	return err
}

func signedBytes(n int64) string {
	if n < 0 {
		return "-" + humanize.Bytes(uint64(-n))
	}
	return humanize.Bytes(uint64(n))
}
