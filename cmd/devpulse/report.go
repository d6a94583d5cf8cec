package main

import (
	"fmt"
	"path/filepath"

	"github.com/avelira/devpulse/internal/harvest"
	"github.com/avelira/devpulse/internal/history"
	"github.com/avelira/devpulse/internal/output"
	"github.com/avelira/devpulse/internal/pipeline"
	"github.com/avelira/devpulse/internal/progress"
	"github.com/avelira/devpulse/internal/report"
	"github.com/avelira/devpulse/pkg/models"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

func reportCmd() *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "Run the analytics pipeline and render a delivery report",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "granularity",
				Aliases: []string{"g"},
				Value:   "weekly",
				Usage:   "Period granularity: daily, weekly, or monthly",
			},
			&cli.StringFlag{
				Name:  "end",
				Usage: "Anchor date (YYYY-MM-DD) for the reported period, default today",
			},
			&cli.IntFlag{
				Name:  "periods",
				Value: 1,
				Usage: "Report the N trailing periods",
			},
			&cli.StringFlag{
				Name:  "prs",
				Usage: "Pull request JSON export to include",
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Persist period metrics to the history store",
			},
			&cli.StringFlag{
				Name:  "history-dir",
				Usage: "Override the history store directory",
			},
			&cli.IntFlag{
				Name:  "top",
				Value: 10,
				Usage: "Show top N authors by commits",
			},
		},
		Action: runReportCmd,
	}
}

func runReportCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	absPath, err := filepath.Abs(getPath(c))
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	periods, err := resolvePeriods(c)
	if err != nil {
		return err
	}

	var harvestOpts []harvest.Option
	if prFile := c.String("prs"); prFile != "" {
		harvestOpts = append(harvestOpts, harvest.WithPRFile(prFile))
	}
	spinner := progress.NewSpinner("Harvesting events...")
	harvestOpts = append(harvestOpts, harvest.WithSpinner(spinner))
	harvester := harvest.New(absPath, harvestOpts...)

	historyDir := cfg.History.Dir
	if dir := c.String("history-dir"); dir != "" {
		historyDir = dir
	}
	store := history.NewStore(historyDir)
	pipeOpts := []pipeline.Option{pipeline.WithConfig(cfg)}
	if cfg.History.Enabled {
		pipeOpts = append(pipeOpts, pipeline.WithHistory(store.ForRepo(absPath)))
	}
	pipe := pipeline.New(pipeOpts...)

	reports, err := pipeline.RunAll(c.Context, pipe, periods, harvester)
	if err != nil {
		spinner.FinishError(err)
		return fmt.Errorf("pipeline failed (is %s a git repository?): %w", absPath, err)
	}
	spinner.FinishSuccess()

	if c.Bool("save") && cfg.History.Enabled {
		for _, rep := range reports {
			if rep == nil {
				continue
			}
			if err := store.Save(absPath, rep.Metrics); err != nil {
				return fmt.Errorf("saving history: %w", err)
			}
		}
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if len(reports) == 1 {
		return renderSingle(formatter, reports[0], c.Int("top"))
	}
	return renderTrend(formatter, reports)
}

// renderSingle renders one period's full report plus the author table.
func renderSingle(formatter *output.Formatter, rep *models.Report, top int) error {
	if err := formatter.Output(report.NewView(rep)); err != nil {
		return err
	}

	authors := report.SortedAuthors(rep.Authors)
	if len(authors) == 0 {
		return nil
	}
	if len(authors) > top {
		authors = authors[:top]
	}

	var rows [][]string
	for _, st := range authors {
		riskyStr := fmt.Sprintf("%d", st.RiskyCommits)
		if st.RiskyCommits > 0 {
			riskyStr = color.YellowString(riskyStr)
		}
		rows = append(rows, []string{
			st.Author,
			fmt.Sprintf("%d", st.Commits),
			fmt.Sprintf("+%d/-%d", st.Additions, st.Deletions),
			fmt.Sprintf("%.1f", st.AvgChurn),
			riskyStr,
			fmt.Sprintf("%d", st.AfterHoursCommits),
		})
	}

	table := output.NewTable(
		"Authors",
		[]string{"Author", "Commits", "Lines", "Avg Churn", "Risky", "After Hours"},
		rows,
		[]string{
			fmt.Sprintf("Total Authors: %d", len(rep.Authors)),
			fmt.Sprintf("Total Commits: %d", rep.Metrics.TotalCommits),
			"", "", "", "",
		},
		authors,
	)
	return formatter.Output(table)
}

// renderTrend renders one row per period across a multi-period run.
func renderTrend(formatter *output.Formatter, reports []*models.Report) error {
	var rows [][]string
	for _, rep := range reports {
		if rep == nil {
			continue
		}
		m := rep.Metrics
		leadTime := "n/a"
		if m.LeadTimeHours != nil {
			leadTime = fmt.Sprintf("%.1fh", *m.LeadTimeHours)
		}
		cfr := "n/a"
		if m.ChangeFailureRate != nil {
			cfr = fmt.Sprintf("%.1f%%", *m.ChangeFailureRate)
		}
		rows = append(rows, []string{
			rep.Period.Label(),
			fmt.Sprintf("%d", m.TotalCommits),
			fmt.Sprintf("%d", m.TotalChurn),
			leadTime,
			fmt.Sprintf("%d", m.DeployFrequency),
			cfr,
			fmt.Sprintf("%.1f%%", rep.Risk.RiskyCommitPct),
		})
	}

	table := output.NewTable(
		"Delivery Trend",
		[]string{"Period", "Commits", "Churn", "Lead Time", "Deploys", "CFR", "Risky"},
		rows,
		nil,
		reports,
	)
	return formatter.Output(table)
}
