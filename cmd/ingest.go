package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rankpipe/rankpipe/internal/blobstore"
	"github.com/rankpipe/rankpipe/internal/coordinator"
	"github.com/rankpipe/rankpipe/internal/rating"
	"github.com/rankpipe/rankpipe/internal/report"
	"github.com/rankpipe/rankpipe/internal/storage"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <logfile>",
	Short: "Ingest a server log file and store the game",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	logPath := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	before, err := db.ListGames(ctx)
	if err != nil {
		return fmt.Errorf("list games: %w", err)
	}

	// One-shot run: a single worker rooted at the file's directory.
	store := blobstore.NewLocal(filepath.Dir(logPath))
	coord := coordinator.New(store, db, rating.Impact{}, log,
		coordinator.WithWorkerCount(1))
	coord.Start(ctx)
	jobID := coord.Submit(filepath.Base(logPath))
	fmt.Fprintf(os.Stdout, "Submitted job %s\n", jobID)
	coord.Stop()

	after, err := db.ListGames(ctx)
	if err != nil {
		return fmt.Errorf("list games: %w", err)
	}
	if len(after) == len(before) {
		fmt.Fprintln(os.Stdout, "No new game stored (duplicate log or failed ingestion, see log output).")
		return nil
	}

	// Newest game is the one we just wrote.
	game := after[0]
	stats, err := db.GetPlayerStats(ctx, game.ID)
	if err != nil {
		return fmt.Errorf("player stats: %w", err)
	}
	accolades, err := db.GetAccolades(ctx, game.ID)
	if err != nil {
		return fmt.Errorf("accolades: %w", err)
	}

	report.PrintGameSummary(os.Stdout, game)
	report.PrintPlayerTable(os.Stdout, stats)
	report.PrintAccoladeTable(os.Stdout, accolades, stats)
	return nil
}
