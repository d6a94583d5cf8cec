package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/avelira/devpulse/internal/history"
	"github.com/avelira/devpulse/internal/output"
	"github.com/avelira/devpulse/pkg/analyzer/forecast"
	"github.com/avelira/devpulse/pkg/models"
	"github.com/avelira/devpulse/pkg/stats"
	"github.com/urfave/cli/v2"
)

func forecastCmd() *cli.Command {
	return &cli.Command{
		Name:      "forecast",
		Usage:     "Project next-period churn and lead time from stored history",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "granularity",
				Aliases: []string{"g"},
				Value:   "weekly",
				Usage:   "Period granularity: daily, weekly, or monthly",
			},
			&cli.StringFlag{
				Name:  "history-dir",
				Usage: "Override the history store directory",
			},
		},
		Action: runForecastCmd,
	}
}

func runForecastCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	absPath, err := filepath.Abs(getPath(c))
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	g, err := models.ParseGranularity(c.String("granularity"))
	if err != nil {
		return err
	}

	// Forecast the period after the latest stored one.
	target := models.PeriodContaining(time.Now().UTC(), g).Next()
	historyDir := cfg.History.Dir
	if dir := c.String("history-dir"); dir != "" {
		historyDir = dir
	}
	store := history.NewStore(historyDir)
	stored, err := store.Recent(absPath, target, cfg.Forecast.Window)
	if err != nil {
		return err
	}
	if len(stored) == 0 {
		return fmt.Errorf("no stored history for %s (run `devpulse report --save` first)", absPath)
	}

	churn := make([]float64, 0, len(stored))
	leadTime := make([]float64, 0, len(stored))
	for _, m := range stored {
		churn = append(churn, float64(m.TotalChurn))
		if m.LeadTimeHours != nil {
			leadTime = append(leadTime, *m.LeadTimeHours)
		}
	}

	fc := forecast.New(
		forecast.WithWindow(cfg.Forecast.Window),
		forecast.WithMinHistory(cfg.Forecast.MinHistory),
		forecast.WithDirectionBand(cfg.Forecast.DirectionBand),
	)
	results := []models.ForecastResult{
		fc.Forecast(models.SeriesChurn, churn, target),
		fc.Forecast(models.SeriesLeadTime, leadTime, target),
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	var rows [][]string
	for _, r := range results {
		detail := r.Reason
		if detail == "" && c.Bool("verbose") {
			series := churn
			if r.Series == models.SeriesLeadTime {
				series = leadTime
			}
			ts := forecast.ComputeTrendStats(series)
			sorted := append([]float64(nil), series...)
			sort.Float64s(sorted)
			detail = fmt.Sprintf("slope %.2f/period, r2 %.2f, median %.1f",
				ts.Slope, ts.RSquared, stats.Percentile(sorted, 50))
		}
		rows = append(rows, []string{
			string(r.Series),
			r.Period.Label(),
			fmt.Sprintf("%.1f", r.Value),
			string(r.Direction),
			string(r.Confidence),
			fmt.Sprintf("%d", r.Observations),
			detail,
		})
	}

	table := output.NewTable(
		"Forecast",
		[]string{"Series", "Period", "Value", "Direction", "Confidence", "History", "Detail"},
		rows,
		nil,
		results,
	)
	return formatter.Output(table)
}
