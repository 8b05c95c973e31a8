// Package coordinator orchestrates parse → reconstruct → aggregate → rate
// → persist as asynchronous jobs with at-most-once persistence per game
// signature.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rankpipe/rankpipe/internal/aggregator"
	"github.com/rankpipe/rankpipe/internal/blobstore"
	"github.com/rankpipe/rankpipe/internal/identity"
	"github.com/rankpipe/rankpipe/internal/model"
	"github.com/rankpipe/rankpipe/internal/parser"
	"github.com/rankpipe/rankpipe/internal/rating"
	"github.com/rankpipe/rankpipe/internal/storage"
	"github.com/rankpipe/rankpipe/internal/tracker"
	"github.com/rankpipe/rankpipe/pkg/metrics"
)

// Persistence is the narrow contract the coordinator needs from storage.
type Persistence interface {
	FindGameBySignature(ctx context.Context, endTS time.Time, mapName string) (*model.Game, error)
	SaveGameBundle(ctx context.Context, b *storage.GameBundle) (int64, error)
	LatestRating(ctx context.Context, playerID string) (float64, bool, error)
}

type job struct {
	id   string
	path string
}

// Coordinator runs ingestion jobs on a fixed worker pool. Submission never
// blocks on the pipeline; job failures are logged, not surfaced. Callers
// observe completion by polling persisted state.
type Coordinator struct {
	store blobstore.Store
	db    Persistence
	algo  rating.Algorithm
	log   logrus.FieldLogger
	guard *signatureGuard

	workerCount int
	jobs        chan job

	inflight sync.WaitGroup // submitted jobs not yet finished
	workers  sync.WaitGroup
	startMu  sync.Mutex
	started  bool
}

// Option applies a configuration option to the Coordinator.
type Option func(*Coordinator)

// WithWorkerCount sets the number of concurrent ingestion workers.
func WithWorkerCount(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.workerCount = n
		}
	}
}

// WithQueueSize bounds the pending-job queue.
func WithQueueSize(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.jobs = make(chan job, n)
		}
	}
}

func New(store blobstore.Store, db Persistence, algo rating.Algorithm, log logrus.FieldLogger, opts ...Option) *Coordinator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if algo == nil {
		algo = rating.Impact{}
	}
	c := &Coordinator{
		store:       store,
		db:          db,
		algo:        algo,
		log:         log,
		guard:       newSignatureGuard(),
		workerCount: 4,
		jobs:        make(chan job, 256),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start launches the worker pool.
func (c *Coordinator) Start(ctx context.Context) {
	c.startMu.Lock()
	defer c.startMu.Unlock()
	if c.started {
		return
	}
	c.started = true
	for i := 0; i < c.workerCount; i++ {
		c.workers.Add(1)
		go func() {
			defer c.workers.Done()
			for j := range c.jobs {
				c.runJob(ctx, j)
			}
		}()
	}
}

// Submit enqueues a log for ingestion and returns the job id immediately.
func (c *Coordinator) Submit(path string) string {
	id := uuid.NewString()
	c.inflight.Add(1)
	metrics.RecordJobStarted()
	c.jobs <- job{id: id, path: path}
	metrics.UpdateQueueDepth(len(c.jobs))
	return id
}

// Wait blocks until every submitted job has finished.
func (c *Coordinator) Wait() {
	c.inflight.Wait()
}

// Stop drains in-flight jobs and stops the workers.
func (c *Coordinator) Stop() {
	c.inflight.Wait()
	close(c.jobs)
	c.workers.Wait()
}

// runJob executes the whole pipeline for one log. Errors never propagate
// past here: the submission response has long been sent.
func (c *Coordinator) runJob(ctx context.Context, j job) {
	defer c.inflight.Done()
	defer metrics.UpdateQueueDepth(len(c.jobs))

	log := c.log.WithFields(logrus.Fields{"job": j.id, "path": j.path})
	log.Info("ingestion job started")

	if err := c.ingest(ctx, log, j.path); err != nil {
		metrics.RecordJobFailed()
		log.WithError(err).Error("ingestion job failed")
		return
	}
	metrics.RecordJobSucceeded()
	log.Info("ingestion job finished")
}

func (c *Coordinator) ingest(ctx context.Context, log logrus.FieldLogger, path string) error {
	lines, err := c.store.DownloadAsLines(ctx, path)
	if err != nil {
		return fmt.Errorf("download log: %w", err)
	}

	// New parser, tracker, and resolver per job: no cross-job state.
	p := parser.New(log)
	events := p.ParseLines(lines)
	stats := p.Stats()
	metrics.RecordLines(stats.Lines, stats.Skipped)
	log.WithFields(logrus.Fields{
		"lines":   stats.Lines,
		"events":  stats.Events,
		"skipped": stats.Skipped,
	}).Info("log parsed")

	tr := tracker.New(log)
	res := tr.Track(events)
	metrics.RecordAnomalousDamage(res.Anomalies)
	if res.Game == nil {
		return errors.New("log carries no game-over line, cannot ingest")
	}

	// Cheap pre-check; the unique constraint below settles races.
	if existing, err := c.db.FindGameBySignature(ctx, res.Game.EndTime, res.Game.MapName); err != nil {
		return fmt.Errorf("signature lookup: %w", err)
	} else if existing != nil {
		metrics.RecordDuplicateGame()
		log.WithField("signature", res.Game.Signature()).Info("game already ingested, skipping")
		return nil
	}

	sig := res.Game.Signature()
	if !c.guard.acquire(sig) {
		metrics.RecordDuplicateGame()
		log.WithField("signature", sig).Info("game already being ingested by another job, skipping")
		return nil
	}
	defer c.guard.release(sig)

	tracker.EstimateWinners(res.Rounds, res.Game.CTScore, res.Game.TScore)

	resolver := identity.NewResolver(log)
	playerStats, err := aggregator.Aggregate(res.Rounds, res.Events, resolver)
	if err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}
	metrics.RecordIdentityFallbacks(resolver.FallbackHits())

	for _, s := range playerStats {
		prior, ok, err := c.db.LatestRating(ctx, s.PlayerID)
		if err != nil {
			return fmt.Errorf("prior rating for %s: %w", s.PlayerID, err)
		}
		if !ok {
			prior = rating.BaseRating
		}
		s.Rating = c.algo.Update(prior, rating.Performance{
			Kills:         s.Kills,
			Deaths:        s.Deaths,
			Assists:       s.Assists,
			HeadshotKills: s.HeadshotKills,
			DamageDealt:   s.DamageDealt,
			RoundsPlayed:  s.RoundsPlayed,
		})
	}

	accolades := aggregator.ComputeAccolades(playerStats)

	stored := make([]model.StoredEvent, 0, len(res.Events))
	for _, ev := range res.Events {
		stored = append(stored, model.Flatten(ev))
	}

	gameID, err := c.db.SaveGameBundle(ctx, &storage.GameBundle{
		Game:      res.Game,
		Rounds:    res.Rounds,
		Events:    stored,
		Stats:     playerStats,
		Accolades: accolades,
	})
	if errors.Is(err, storage.ErrDuplicateGame) {
		// Lost the race to another process. Same outcome as the pre-check.
		metrics.RecordDuplicateGame()
		log.WithField("signature", sig).Info("game persisted concurrently elsewhere, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("persist game: %w", err)
	}

	log.WithFields(logrus.Fields{
		"game":    gameID,
		"rounds":  len(res.Rounds),
		"players": len(playerStats),
	}).Info("game persisted")
	return nil
}
