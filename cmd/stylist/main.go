package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"
)

const (
	// AnalyzeLogDir specifies where single-photo analysis logs are stored.
	AnalyzeLogDir = "logs/analyze_logs"
	// BatchLogDir specifies where batch analysis logs are stored.
	BatchLogDir = "logs/batch_logs"
	// ServerLogDir specifies where HTTP server logs are stored.
	ServerLogDir = "logs/server_logs"
	// HistoryLogDir specifies where history listing logs are stored.
	HistoryLogDir = "logs/history_logs"
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.Command{
		Name:  "stylist",
		Usage: "Analyze outfit photos and suggest complete looks",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the config file (searched in default locations when empty)",
			},
		},
		Commands: []*cli.Command{
			analyzeCommand(),
			batchCommand(),
			serveCommand(),
			historyCommand(),
		},
	}

	return app.Run(context.Background(), os.Args)
}

// formFlags are the questionnaire flags shared by analyze and batch.
func formFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "occasion",
			Aliases:  []string{"o"},
			Usage:    "Occasion the outfit is for",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "genre",
			Aliases:  []string{"g"},
			Usage:    "Preferred style genre",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "gender",
			Usage:    "Styling gender (male, female or neutral)",
			Required: true,
		},
		&cli.FloatFlag{
			Name:  "lat",
			Usage: "Latitude used for the weather lookup",
		},
		&cli.FloatFlag{
			Name:  "lon",
			Usage: "Longitude used for the weather lookup",
		},
		&cli.StringFlag{
			Name:  "weather",
			Usage: "Weather summary to use instead of a lookup",
		},
	}
}
