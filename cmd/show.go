package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rankpipe/rankpipe/internal/report"
	"github.com/rankpipe/rankpipe/internal/storage"
)

var showCmd = &cobra.Command{
	Use:   "show <game-id>",
	Short: "Show stats and accolades for one stored game",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	gameID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid game id: %s", args[0])
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	game, err := db.GetGame(ctx, gameID)
	if err != nil {
		return err
	}
	if game == nil {
		return fmt.Errorf("game not found: %d", gameID)
	}

	stats, err := db.GetPlayerStats(ctx, gameID)
	if err != nil {
		return err
	}
	accolades, err := db.GetAccolades(ctx, gameID)
	if err != nil {
		return err
	}

	report.PrintGameSummary(os.Stdout, game)
	report.PrintPlayerTable(os.Stdout, stats)
	report.PrintAccoladeTable(os.Stdout, accolades, stats)
	return nil
}
