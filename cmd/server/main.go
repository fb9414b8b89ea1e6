package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abontemps/classquest/internal/api/rest"
	"github.com/abontemps/classquest/internal/cache"
	"github.com/abontemps/classquest/internal/config"
	"github.com/abontemps/classquest/internal/engine"
	"github.com/abontemps/classquest/internal/questpack"
	"github.com/abontemps/classquest/internal/service/awards"
	"github.com/abontemps/classquest/internal/service/leaderboard"
	"github.com/abontemps/classquest/internal/service/scheduler"
	"github.com/abontemps/classquest/internal/store"
	"github.com/abontemps/classquest/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "classquest: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file (default: search ./config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log := logger.Get()

	log.Info().
		Str("environment", cfg.Server.Environment).
		Str("driver", cfg.Database.Driver).
		Msg("Starting classquest server")

	// Storage
	if cfg.Database.Driver == "postgres" {
		if err := store.MigratePostgres(&cfg.Database.Postgres); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	db, err := store.NewDB(&cfg.Database, log)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	stateStore := store.NewStateStore(db, log)

	// Cache is optional; the leaderboard recomputes on every request without it.
	var lbCache cache.Cache
	var redisCache *cache.RedisCache
	if cfg.Database.Redis.Host != "" {
		redisCache, err = cache.NewRedisCache(&cfg.Database.Redis, log)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, running without leaderboard cache")
		} else {
			lbCache = redisCache
			defer redisCache.Close()
		}
	}

	// Core services
	eng := engine.New(engine.SystemClock{}, engine.UUIDGenerator{})
	classService, err := awards.NewService(eng, stateStore, cfg.Class.Settings(), log)
	if err != nil {
		return fmt.Errorf("failed to initialize class service: %w", err)
	}

	if cfg.QuestPack.Path != "" {
		if err := seedQuestPack(cfg.QuestPack.Path, classService, log); err != nil {
			return err
		}
	}

	cacheTTL := time.Duration(cfg.Database.Redis.TTL) * time.Second
	leaderboardService := leaderboard.NewService(classService, stateStore, lbCache, cacheTTL, log)

	// Background jobs
	sched := scheduler.NewService(cfg, classService, stateStore, log)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// HTTP
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		if err := db.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.Metrics.Enabled {
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	handler := rest.NewHandler(classService, leaderboardService, stateStore, engine.UUIDGenerator{}, log)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	log.Info().Msg("Server stopped")
	return nil
}

// seedQuestPack loads a YAML catalog and merges it into the class. Already
// known ids are left untouched, so restarts are safe.
func seedQuestPack(path string, svc *awards.Service, log *logger.Logger) error {
	pack, err := questpack.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load quest pack: %w", err)
	}

	added := 0
	for _, q := range pack.QuestModels() {
		changed, err := svc.AddQuest(q)
		if err != nil {
			return fmt.Errorf("failed to seed quest %q: %w", q.ID, err)
		}
		if changed {
			added++
		}
	}
	for _, d := range pack.BadgeModels() {
		changed, err := svc.AddBadgeDefinition(d)
		if err != nil {
			return fmt.Errorf("failed to seed badge %q: %w", d.ID, err)
		}
		if changed {
			added++
		}
	}

	log.Info().
		Str("pack", pack.Name).
		Str("path", path).
		Int("added", added).
		Msg("Quest pack loaded")
	return nil
}
