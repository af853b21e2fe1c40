package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/robalyx/stylist/internal/history"
	"github.com/robalyx/stylist/internal/setup"
	"github.com/robalyx/stylist/internal/setup/telemetry"
	"github.com/robalyx/stylist/pkg/utils"
	"github.com/urfave/cli/v3"
)

// feedbackWidth is the widest feedback column printed per look.
const feedbackWidth = 48

// ErrHistoryDisabled indicates history.enabled is false in the config.
var ErrHistoryDisabled = errors.New("history is disabled in the config")

func historyCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recently generated looks",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Value:   20,
				Usage:   "Maximum number of looks to list",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			// Listing needs no model clients, so only logging is initialized
			cfg, logManager, logger, err := setup.InitializeLogging(telemetry.ServiceHistory, HistoryLogDir, c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to initialize logging: %w", err)
			}
			defer logManager.Stop()
			defer func() { _ = logger.Sync() }()

			if !cfg.History.Enabled {
				return ErrHistoryDisabled
			}

			store, err := history.Open(cfg.History.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(ctx, int(c.Int("limit")))
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				fmt.Println("No looks recorded yet")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CREATED\tOCCASION\tGENRE\tGENDER\tSKIN\tCOLORS\tREGEN\tOUTFITS\tFEEDBACK")
			for _, e := range entries {
				outfits, feedback := 0, ""
				if e.Result != nil {
					outfits = len(e.Result.OutfitRecommendations)
					feedback = utils.Truncate(utils.CompressAllWhitespace(e.Result.Feedback), feedbackWidth)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
					e.CreatedAt.Local().Format(time.DateTime),
					e.Occasion, e.Genre, e.Gender, e.SkinTone, e.DressColors,
					e.Regeneration, outfits, feedback)
			}
			return w.Flush()
		},
	}
}
