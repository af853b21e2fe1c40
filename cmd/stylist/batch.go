package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/robalyx/stylist/internal/batch"
	"github.com/robalyx/stylist/internal/session"
	"github.com/robalyx/stylist/internal/setup"
	"github.com/robalyx/stylist/internal/setup/telemetry"
	"github.com/urfave/cli/v3"
)

func batchCommand() *cli.Command {
	flags := append(formFlags(),
		&cli.StringFlag{
			Name:     "dir",
			Aliases:  []string{"d"},
			Usage:    "Directory of outfit photos",
			Required: true,
		},
		&cli.IntFlag{
			Name:  "concurrency",
			Value: 2,
			Usage: "Number of photos analyzed at once",
		},
		&cli.StringFlag{
			Name:  "out",
			Usage: "Directory to write generated outfit images to",
		},
	)

	return &cli.Command{
		Name:  "batch",
		Usage: "Analyze every photo in a directory",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			paths, err := batch.Discover(c.String("dir"))
			if err != nil {
				return err
			}

			app, err := setup.InitializeApp(ctx, telemetry.ServiceBatch, BatchLogDir, c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			defer app.Cleanup(ctx)

			summary, err := resolveWeather(ctx, c, app.Weather, app.Logger)
			if err != nil {
				return err
			}

			runner := batch.NewRunner(app.NewSession, int(c.Int("concurrency")), app.Logger)
			outcomes := runner.Run(ctx, paths, batch.Form{
				Occasion: c.String("occasion"),
				Genre:    c.String("genre"),
				Gender:   c.String("gender"),
				Weather:  summary,
			})

			outDir := c.String("out")
			if outDir != "" {
				if err := os.MkdirAll(outDir, 0o755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
			}

			failed := 0
			for _, outcome := range outcomes {
				name := filepath.Base(outcome.Path)
				if outcome.Err != nil {
					failed++
					fmt.Printf("FAIL %s: %v\n", name, describeFailure(outcome.Snapshot, outcome.Err))
					continue
				}

				fmt.Printf("OK   %s: %s\n", name, outfitTitles(outcome.Snapshot))

				if outDir != "" && outcome.Snapshot.Image != nil {
					target := filepath.Join(outDir, strings.TrimSuffix(name, filepath.Ext(name))+imageExt(outcome.Snapshot))
					if err := os.WriteFile(target, outcome.Snapshot.Image.Data, 0o644); err != nil {
						return fmt.Errorf("failed to write outfit image: %w", err)
					}
				}
			}

			fmt.Printf("\nAnalyzed %d photos, %d failed\n", len(outcomes), failed)
			return nil
		},
	}
}

func outfitTitles(snapshot session.Snapshot) string {
	if snapshot.Result == nil {
		return ""
	}

	titles := make([]string, 0, len(snapshot.Result.OutfitRecommendations))
	for _, o := range snapshot.Result.OutfitRecommendations {
		titles = append(titles, o.Title)
	}
	return strings.Join(titles, " / ")
}

func imageExt(snapshot session.Snapshot) string {
	switch snapshot.Image.MIMEType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
