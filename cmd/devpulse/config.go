package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/avelira/devpulse/pkg/config"
	"github.com/fatih/color"
	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write a devpulse.toml with default settings",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Value:   "devpulse.toml",
						Usage:   "Output file path",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite existing config file",
					},
				},
				Action: runConfigInit,
			},
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: runConfigShow,
			},
		},
	}
}

func runConfigInit(c *cli.Context) error {
	outputPath := c.String("output")

	if _, err := os.Stat(outputPath); err == nil && !c.Bool("force") {
		return fmt.Errorf("config file %q already exists (use --force to overwrite)", outputPath)
	}

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}

	content, err := generateDefaultConfig()
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	color.Green("Created %s", outputPath)
	fmt.Println("Edit this file to customize thresholds and forecast settings.")
	return nil
}

func generateDefaultConfig() (string, error) {
	cfg := config.DefaultConfig()

	content, err := toml.Marshal(*cfg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config to TOML: %w", err)
	}

	var buf strings.Builder
	buf.WriteString("# Devpulse configuration\n\n")
	buf.Write(content)

	return buf.String(), nil
}

func runConfigShow(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	content, err := toml.Marshal(*cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Print(string(content))
	return nil
}
