package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dkeye/tunequiz/internal/adapters/http"
	wssignal "github.com/dkeye/tunequiz/internal/adapters/signal"
	"github.com/dkeye/tunequiz/internal/app"
	"github.com/dkeye/tunequiz/internal/app/orch"
	"github.com/dkeye/tunequiz/internal/config"
	"github.com/dkeye/tunequiz/internal/deezer"
	"github.com/dkeye/tunequiz/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Mode == "release" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	tracks := deezer.NewClient(deezer.Options{
		BaseURL:           cfg.Deezer.BaseURL,
		Timeout:           cfg.Deezer.Timeout,
		RequestsPerSecond: cfg.Deezer.RequestsPerSecond,
		Burst:             cfg.Deezer.Burst,
	})

	locks := &app.KeyedMutex{}
	playlists := app.NewPlaylistService(db, tracks, locks, cfg.Game.PlaylistMinTracks, cfg.Game.PlaylistMaxTracks)

	o := &orch.Orchestrator{
		Registry:  app.NewRegistry(app.PolicyByName(cfg.Backpressure)),
		Rooms:     app.NewRoomManager(db, locks, cfg.Game.MaxQuestionCount),
		Sessions:  app.NewGameSessionManager(db, locks, playlists, cfg.Game.MaxAnswerSeconds),
		Playlists: playlists,
		Questions: app.NewQuestionGenerator(tracks, cfg.Game.QuestionPoolSize),
		Users:     app.NewUserService(db),
	}

	ws := wssignal.NewSignalWSController(o, wssignal.Options{
		ReadLimit:      cfg.ReadLimit,
		PingPeriod:     cfg.PingPeriod,
		SendBuffer:     cfg.SendBuffer,
		Limiter:        wssignal.NewCommandRateLimiter(cfg.RateLimit.Commands, cfg.RateLimit.Interval),
		AllowQueryUser: cfg.Mode == "debug",
	})

	r := router.SetupRouter(ctx, cfg, o, ws)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("TuneQuiz server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
