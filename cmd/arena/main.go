package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/codearena/arena/internal/api"
	"github.com/codearena/arena/internal/cache"
	"github.com/codearena/arena/internal/config"
	"github.com/codearena/arena/internal/contest"
	"github.com/codearena/arena/internal/database"
	"github.com/codearena/arena/internal/judge"
)

var Version = "dev-build"

func main() {

	fmt.Fprintf(os.Stderr, "CodeArena %s - Contest Execution and Ranking Engine\n\n", Version)

	// config
	var configPath string
	flag.StringVar(&configPath, "c", "configs/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// logger
	var logger *zap.Logger
	if cfg.Logger.Level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	// database
	db, err := database.Init(cfg.Storage.Database)
	if err != nil {
		zap.S().Fatalf("failed to initialize database: %v", err)
	}
	zap.S().Info("database initialized successfully")
	store := database.NewStore(db)

	// leaderboard cache
	redisCache, err := cache.NewRedis(cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB)
	if err != nil {
		zap.S().Fatalf("failed to connect to redis: %v", err)
	}
	defer redisCache.Close()
	zap.S().Info("leaderboard cache connected")

	// judge client
	judgeClient := judge.NewHTTPClient(cfg.Judge.URL, time.Duration(cfg.Judge.TimeoutSeconds)*time.Second)

	// orchestrator
	svc := contest.NewService(store, redisCache, judgeClient, contest.Options{
		PenaltyPerWrong:      cfg.Contest.PenaltyPerWrong,
		PointsPerProblem:     cfg.Contest.PointsPerProblem,
		LeaderboardActiveTTL: time.Duration(cfg.Cache.LeaderboardActiveTTL) * time.Second,
		LeaderboardFinalTTL:  time.Duration(cfg.Cache.LeaderboardFinalTTL) * time.Second,
		JudgeTimeout:         time.Duration(cfg.Judge.TimeoutSeconds) * time.Second,
		Workers:              cfg.Judge.Workers,
		QueueSize:            cfg.Judge.QueueSize,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc.Start(ctx)

	// Requeue submissions left pending by the last run
	if err := svc.RequeuePending(ctx); err != nil {
		zap.S().Errorf("failed to requeue pending submissions: %v", err)
	}

	// periodic lifecycle sweep; run once immediately to catch windows that
	// opened or closed while the engine was down
	go func() {
		if err := svc.UpdateContestStatuses(ctx); err != nil {
			zap.S().Errorf("contest status sweep failed: %v", err)
		}
		interval := time.Duration(cfg.Contest.StatusSweepInterval) * time.Second
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := svc.UpdateContestStatuses(ctx); err != nil {
					zap.S().Errorf("contest status sweep failed: %v", err)
				}
			}
		}
	}()
	zap.S().Info("contest status sweep started")

	// API router
	engine := api.NewRouter(cfg, svc)

	go func() {
		zap.S().Infof("starting server at %s", cfg.Listen)
		if err := engine.Run(cfg.Listen); err != nil {
			zap.S().Fatalf("failed to start server: %v", err)
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.S().Info("shutting down server...")
}
