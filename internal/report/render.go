package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/avelira/devpulse/pkg/models"
	"github.com/fatih/color"
)

// View adapts a Report for the output formatter. Percentages and durations
// are rounded to one decimal here; the underlying report keeps full
// precision.
type View struct {
	Report *models.Report
}

// NewView wraps a report for rendering.
func NewView(r *models.Report) *View {
	return &View{Report: r}
}

// RenderData returns the underlying report for JSON and TOON serialization.
func (v *View) RenderData() any {
	return v.Report
}

// RenderText implements output.Renderable for text output.
func (v *View) RenderText(w io.Writer, colored bool) error {
	r := v.Report
	title := fmt.Sprintf("Delivery Report (%s, %s)", r.Period.Label(), r.Period.Granularity)
	if colored {
		color.New(color.Bold).Fprintln(w, title)
	} else {
		fmt.Fprintln(w, title)
	}
	fmt.Fprintln(w, strings.Repeat("=", len(title)))
	fmt.Fprintln(w)

	m := r.Metrics
	fmt.Fprintf(w, "Commits:              %d\n", m.TotalCommits)
	fmt.Fprintf(w, "Churn:                %d lines\n", m.TotalChurn)
	fmt.Fprintf(w, "Files Touched:        %d\n", m.FilesTouched)
	fmt.Fprintf(w, "Lead Time:            %s\n", hours(m.LeadTimeHours))
	fmt.Fprintf(w, "Review Latency:       %s\n", hours(m.ReviewLatencyHours))
	fmt.Fprintf(w, "Deploy Frequency:     %d merged PRs\n", m.DeployFrequency)
	fmt.Fprintf(w, "Change Failure Rate:  %s\n", percent(m.ChangeFailureRate))
	fmt.Fprintf(w, "MTTR:                 %s\n", hours(m.MTTRHours))
	if r.SkippedEvents > 0 {
		fmt.Fprintf(w, "Skipped Events:       %d\n", r.SkippedEvents)
	}
	fmt.Fprintln(w)

	riskyStr := fmt.Sprintf("%.1f%%", r.Risk.RiskyCommitPct)
	if colored && r.Risk.RiskyCommitPct >= 25 {
		riskyStr = color.RedString(riskyStr)
	}
	fmt.Fprintf(w, "Risky Commits:        %s (%d flags)\n", riskyStr, len(r.Risk.Flags))
	fmt.Fprintf(w, "After Hours:          %.1f%%\n", r.Risk.AfterHoursPct)
	for _, f := range r.Risk.Flags {
		if f.Check == models.CheckOutlierAuthor {
			fmt.Fprintf(w, "  outlier author: %s\n", f.Author)
		}
	}
	fmt.Fprintln(w)

	for _, fc := range r.Forecasts {
		line := fmt.Sprintf("Forecast %-10s %s: %.1f (%s, confidence %s)",
			fc.Series, fc.Period.Label(), fc.Value, fc.Direction, fc.Confidence)
		if fc.Reason != "" {
			line += " [" + fc.Reason + "]"
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintln(w)
	return nil
}

// RenderMarkdown implements output.Renderable for markdown output.
func (v *View) RenderMarkdown(w io.Writer) error {
	r := v.Report
	fmt.Fprintf(w, "## Delivery Report (%s, %s)\n\n", r.Period.Label(), r.Period.Granularity)

	m := r.Metrics
	fmt.Fprintln(w, "| Metric | Value |")
	fmt.Fprintln(w, "|--------|-------|")
	fmt.Fprintf(w, "| Commits | %d |\n", m.TotalCommits)
	fmt.Fprintf(w, "| Churn | %d |\n", m.TotalChurn)
	fmt.Fprintf(w, "| Files Touched | %d |\n", m.FilesTouched)
	fmt.Fprintf(w, "| Lead Time | %s |\n", hours(m.LeadTimeHours))
	fmt.Fprintf(w, "| Review Latency | %s |\n", hours(m.ReviewLatencyHours))
	fmt.Fprintf(w, "| Deploy Frequency | %d |\n", m.DeployFrequency)
	fmt.Fprintf(w, "| Change Failure Rate | %s |\n", percent(m.ChangeFailureRate))
	fmt.Fprintf(w, "| MTTR | %s |\n", hours(m.MTTRHours))
	fmt.Fprintf(w, "| Risky Commits | %.1f%% |\n", r.Risk.RiskyCommitPct)
	fmt.Fprintf(w, "| After Hours | %.1f%% |\n", r.Risk.AfterHoursPct)
	fmt.Fprintln(w)

	if len(r.Authors) > 0 {
		fmt.Fprintln(w, "| Author | Commits | Churn | Risky | After Hours |")
		fmt.Fprintln(w, "|--------|---------|-------|-------|-------------|")
		for _, st := range SortedAuthors(r.Authors) {
			fmt.Fprintf(w, "| %s | %d | %d | %d | %d |\n",
				st.Author, st.Commits, st.TotalChurn(), st.RiskyCommits, st.AfterHoursCommits)
		}
		fmt.Fprintln(w)
	}

	for _, fc := range r.Forecasts {
		fmt.Fprintf(w, "**Forecast %s** (%s): %.1f, %s, confidence %s\n\n",
			fc.Series, fc.Period.Label(), fc.Value, fc.Direction, fc.Confidence)
	}
	return nil
}

// SortedAuthors orders author stats by commit count descending, ties
// broken by name for stable output.
func SortedAuthors(authors map[string]models.AuthorStats) []models.AuthorStats {
	out := make([]models.AuthorStats, 0, len(authors))
	for _, st := range authors {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Commits != out[j].Commits {
			return out[i].Commits > out[j].Commits
		}
		return out[i].Author < out[j].Author
	})
	return out
}

func hours(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1fh", *v)
}

func percent(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", *v)
}
