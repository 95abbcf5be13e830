package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/rake/internal/datagen"
	"github.com/okian/rake/pkg/logger"
)

const generateTimeout = 5 * time.Minute

func main() {
	var (
		outDir  = flag.String("out", "data", "Output directory for the dataset files")
		players = flag.Int("players", datagen.DefaultPlayers, "Number of distinct players")
		days    = flag.Int("days", datagen.DefaultDays, "Length of the activity window in days")
		force   = flag.Bool("force", false, "Regenerate even if the directory already has files")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), generateTimeout)
	defer cancel()

	seeder := datagen.NewSeeder(*players, *days)
	if _, err := seeder.Acquire(ctx, *outDir, *force); err != nil {
		os.Stderr.WriteString("dataset generation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func showHelp() {
	os.Stdout.WriteString(`Rake Dataset Seeder
===================

Writes a synthetic casino dataset (players, transactions, bets, sessions)
for the analytics service to explore.

Usage:
  go run cmd/seed-dataset/main.go [options]

Options:
  -out string
        Output directory for the dataset files (default "data")
  -players int
        Number of distinct players (default 500)
  -days int
        Length of the activity window in days (default 60)
  -force
        Regenerate even if the directory already has files
  -help
        Show this help message

Examples:
  # Seed the default data directory
  go run cmd/seed-dataset/main.go

  # A bigger dataset in a custom location
  go run cmd/seed-dataset/main.go -out /srv/datasets -players 5000 -days 180
`)
}
