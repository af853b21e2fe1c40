package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/robalyx/stylist/internal/palette"
	"github.com/robalyx/stylist/internal/photo"
	"github.com/robalyx/stylist/internal/session"
	"github.com/robalyx/stylist/internal/setup"
	"github.com/robalyx/stylist/internal/setup/telemetry"
	"github.com/robalyx/stylist/internal/style"
	"github.com/robalyx/stylist/internal/weather"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// ErrMissingCoordinate indicates only one of --lat and --lon was given.
var ErrMissingCoordinate = errors.New("--lat and --lon must be given together")

func analyzeCommand() *cli.Command {
	flags := append(formFlags(),
		&cli.StringFlag{
			Name:     "photo",
			Aliases:  []string{"p"},
			Usage:    "Path to the outfit photo",
			Required: true,
		},
		&cli.IntFlag{
			Name:  "regenerate",
			Usage: "Number of times to regenerate after the first look",
		},
		&cli.StringFlag{
			Name:  "out",
			Usage: "File to write the generated outfit image to",
		},
		&cli.StringFlag{
			Name:  "palette",
			Usage: "File to write the suggested color palette chart (PNG) to",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print the session snapshot as JSON",
		},
	)

	return &cli.Command{
		Name:  "analyze",
		Usage: "Analyze a single outfit photo",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			app, err := setup.InitializeApp(ctx, telemetry.ServiceAnalyze, AnalyzeLogDir, c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			defer app.Cleanup(ctx)

			summary, err := resolveWeather(ctx, c, app.Weather, app.Logger)
			if err != nil {
				return err
			}

			p, err := loadPhoto(c.String("photo"))
			if err != nil {
				return err
			}

			orchestrator := app.NewSession()
			orchestrator.SetWeather(summary)

			err = orchestrator.Submit(ctx, session.Submission{
				Photo:    p,
				Occasion: c.String("occasion"),
				Genre:    c.String("genre"),
				Gender:   c.String("gender"),
			})
			if err != nil {
				return describeFailure(orchestrator.Snapshot(), err)
			}

			for range c.Int("regenerate") {
				if err := orchestrator.Regenerate(ctx); err != nil {
					return describeFailure(orchestrator.Snapshot(), err)
				}
			}

			snapshot := orchestrator.Snapshot()
			if err := writeArtifacts(c, snapshot); err != nil {
				return err
			}

			if c.Bool("json") {
				out, err := sonic.ConfigStd.MarshalIndent(snapshot, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode snapshot: %w", err)
				}
				fmt.Println(string(out))
				return nil
			}

			printLook(snapshot)
			return nil
		},
	}
}

// resolveWeather picks the weather summary from the flags, looking it up when coordinates are given.
func resolveWeather(ctx context.Context, c *cli.Command, provider weather.Provider, logger *zap.Logger) (string, error) {
	if summary := strings.TrimSpace(c.String("weather")); summary != "" {
		return summary, nil
	}

	latSet, lonSet := c.IsSet("lat"), c.IsSet("lon")
	switch {
	case latSet && lonSet:
		return weather.Resolve(ctx, provider, c.Float("lat"), c.Float("lon"), logger), nil
	case latSet || lonSet:
		return "", ErrMissingCoordinate
	default:
		return weather.DefaultSummary, nil
	}
}

func loadPhoto(path string) (*photo.Photo, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open photo: %w", err)
	}
	defer file.Close()

	return photo.Load(file)
}

// describeFailure adds the user-facing message of a failed session to the error.
func describeFailure(snapshot session.Snapshot, err error) error {
	var verrs style.ValidationErrors
	if errors.As(err, &verrs) {
		return fmt.Errorf("invalid input: %w", err)
	}
	if snapshot.Message != "" {
		return fmt.Errorf("%s: %w", snapshot.Message, err)
	}
	return err
}

// writeArtifacts saves the generated image and palette chart when requested.
func writeArtifacts(c *cli.Command, snapshot session.Snapshot) error {
	if path := c.String("out"); path != "" && snapshot.Image != nil {
		if err := os.WriteFile(path, snapshot.Image.Data, 0o644); err != nil {
			return fmt.Errorf("failed to write outfit image: %w", err)
		}
	}

	if path := c.String("palette"); path != "" && snapshot.Result != nil {
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create palette file: %w", err)
		}
		defer file.Close()

		if err := palette.Render(file, snapshot.Result.ColorSuggestions); err != nil {
			return fmt.Errorf("failed to render palette: %w", err)
		}
	}

	return nil
}

// printLook writes a readable summary of a ready session to stdout.
func printLook(snapshot session.Snapshot) {
	result := snapshot.Result

	fmt.Printf("Weather: %s\n", snapshot.Weather)
	fmt.Printf("Skin tone: %s | Dress colors: %s\n", snapshot.SkinTone, snapshot.DressColors)
	if snapshot.Regenerations > 0 {
		fmt.Printf("Regenerations: %d\n", snapshot.Regenerations)
	}

	fmt.Printf("\n%s\n\nHighlights:\n", result.Feedback)
	for _, h := range result.Highlights {
		fmt.Printf("  - %s\n", h)
	}

	fmt.Println("\nColors:")
	for _, s := range result.ColorSuggestions {
		fmt.Printf("  %s %-16s %s\n", s.Hex, s.Name, s.Reason)
	}

	fmt.Println("\nOutfits:")
	for _, o := range result.OutfitRecommendations {
		fmt.Printf("  %s: %s\n", o.Title, strings.Join(o.Items, ", "))
	}

	fmt.Printf("\nNotes: %s\n", result.Notes)
}
