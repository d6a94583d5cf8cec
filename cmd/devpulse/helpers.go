package main

import (
	"fmt"
	"time"

	"github.com/avelira/devpulse/internal/output"
	"github.com/avelira/devpulse/pkg/config"
	"github.com/avelira/devpulse/pkg/models"
	"github.com/urfave/cli/v2"
)

// getPath returns the repository path from positional args, defaulting to ".".
func getPath(c *cli.Context) string {
	if c.Args().Len() > 0 {
		return c.Args().First()
	}
	return "."
}

// loadConfig loads the config named by --config, or searches the standard
// locations.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := c.String("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("loading config %q: %w", path, err)
		}
		return cfg, nil
	}
	return config.LoadOrDefault(), nil
}

// newFormatter builds the output formatter from the global flags.
func newFormatter(c *cli.Context, cfg *config.Config) (*output.Formatter, error) {
	format := c.String("format")
	if !c.IsSet("format") && cfg.Output.Format != "" {
		format = cfg.Output.Format
	}
	return output.NewFormatter(output.ParseFormat(format), c.String("output"), cfg.Output.Color)
}

// resolvePeriods returns the trailing n periods ending at the one that
// contains the anchor date, oldest first.
func resolvePeriods(c *cli.Context) ([]models.Period, error) {
	g, err := models.ParseGranularity(c.String("granularity"))
	if err != nil {
		return nil, err
	}

	anchor := time.Now().UTC()
	if end := c.String("end"); end != "" {
		anchor, err = time.Parse("2006-01-02", end)
		if err != nil {
			return nil, fmt.Errorf("invalid --end date %q: %w", end, err)
		}
	}

	n := c.Int("periods")
	if n < 1 {
		n = 1
	}

	last := models.PeriodContaining(anchor, g)
	periods := make([]models.Period, n)
	p := last
	for i := n - 1; i >= 0; i-- {
		periods[i] = p
		p = p.Previous()
	}
	return periods, nil
}
