package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rankpipe/rankpipe/internal/report"
	"github.com/rankpipe/rankpipe/internal/storage"
)

var topLimit int

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Show the rating leaderboard across all stored games",
	Args:  cobra.NoArgs,
	RunE:  runTop,
}

func init() {
	topCmd.Flags().IntVar(&topLimit, "limit", 20, "number of players to show")
}

func runTop(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	entries, err := db.TopRatings(context.Background(), topLimit)
	if err != nil {
		return fmt.Errorf("top ratings: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stdout, "No player stats stored yet.")
		return nil
	}

	report.PrintLeaderboard(os.Stdout, entries)
	return nil
}
