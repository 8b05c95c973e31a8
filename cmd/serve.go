package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rankpipe/rankpipe/internal/api"
	"github.com/rankpipe/rankpipe/internal/blobstore"
	"github.com/rankpipe/rankpipe/internal/coordinator"
	"github.com/rankpipe/rankpipe/internal/rating"
	"github.com/rankpipe/rankpipe/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP submission surface",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := blobstore.NewLocal(cfg.LogDir)
	coord := coordinator.New(store, db, rating.Impact{}, log,
		coordinator.WithWorkerCount(cfg.WorkerCount),
		coordinator.WithQueueSize(cfg.QueueSize))
	coord.Start(ctx)

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: api.NewServer(coord, db, log).Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Addr).Info("http server listening")
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.WithField("signal", sig.String()).Info("shutting down")
	}

	_ = server.Shutdown(context.Background())
	coord.Stop()
	return nil
}
