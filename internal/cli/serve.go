package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/hanoi/internal/auth"
	"github.com/robalobadob/hanoi/internal/bestscore"
	"github.com/robalobadob/hanoi/internal/config"
	"github.com/robalobadob/hanoi/internal/db"
	"github.com/robalobadob/hanoi/internal/history"
	"github.com/robalobadob/hanoi/internal/httpserver"
	"github.com/robalobadob/hanoi/internal/play"
	"github.com/robalobadob/hanoi/internal/ranking"
	"github.com/robalobadob/hanoi/internal/store"
)

const (
	pruneEvery = 10 * time.Minute
	maxIdle    = 24 * time.Hour
)

func newServeCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, o.cfg)
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	sqlDB, err := db.OpenAndMigrate(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer sqlDB.Close()

	rank, closeRank, err := openRanking(cfg, sqlDB)
	if err != nil {
		return err
	}
	defer closeRank()

	hist := history.NewStore(sqlDB)
	opts := []play.Option{play.WithHistory(hist)}
	if rank != nil {
		opts = append(opts, play.WithRanking(rank))
	}
	svc := play.New(cfg.Game, store.NewMemoryStore(), bestscore.NewSQLStore(sqlDB), opts...)
	go pruneLoop(ctx, svc)

	srv := httpserver.New(cfg, svc,
		httpserver.WithAccounts(auth.NewUsers(sqlDB)),
		httpserver.WithHistory(hist),
	)
	log.Info().Str("port", cfg.Port).Ints("levels", cfg.Game.Levels).Msg("starting hanoi server")
	return srv.Start(ctx, ":"+cfg.Port)
}

// openRanking picks the ranking backend. An empty RANKING_DSN keeps the
// ranking next to everything else in SQLite. An unreachable Postgres only
// disables ranking; play goes on without it.
func openRanking(cfg config.Config, sqlDB *sql.DB) (ranking.Store, func(), error) {
	noop := func() {}
	switch {
	case cfg.RankingDSN == "":
		return ranking.NewSQLStore(sqlDB), noop, nil
	case ranking.IsPostgresDSN(cfg.RankingDSN):
		pg, err := ranking.OpenPostgres(cfg.RankingDSN)
		if err != nil {
			log.Error().Err(err).Msg("postgres ranking unavailable, ranking disabled")
			return nil, noop, nil
		}
		log.Info().Msg("ranking stored in postgres")
		return pg, func() { _ = pg.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("%w: unsupported RANKING_DSN", config.ErrInvalidConfig)
	}
}

func pruneLoop(ctx context.Context, svc *play.Service) {
	t := time.NewTicker(pruneEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := svc.Prune(ctx, maxIdle); n > 0 {
				log.Debug().Int("sessions", n).Msg("pruned idle games")
			}
		}
	}
}
