package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"franklin-api/internal/adapters/primary/http/handlers"
	"franklin-api/internal/adapters/primary/http/middleware"
	githubadapter "franklin-api/internal/adapters/secondary/github"
	"franklin-api/internal/adapters/secondary/postgres"
	"franklin-api/internal/builder"
	"franklin-api/internal/config"
	"franklin-api/internal/core/services"
)

func main() {
	root := &cobra.Command{
		Use:           "franklin",
		Short:         "Deploys static sites from GitHub repositories",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd(), migrateCmd())

	if err := root.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the API server and build workers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			initLogger(cfg)

			pool, err := openPool(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			return postgres.Migrate(cmd.Context(), pool)
		},
	}
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	initLogger(cfg)

	pool, err := openPool(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	log.Info("database connection established")

	// Secondary adapters
	siteRepo := postgres.NewSiteRepository(pool)
	buildRepo := postgres.NewBuildRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	githubClient := githubadapter.NewClient(&cfg.Github, cfg.Server.BaseURL)

	runner := builder.New(cfg.Builder.QueueSize,
		builder.WithWorkers(cfg.Builder.Workers),
		builder.WithCloneTimeout(cfg.Builder.CloneTimeout),
	)

	// Core services
	userSvc := services.NewUserService(userRepo, githubClient)
	authSvc := services.NewAuthService(userRepo, githubClient)
	siteSvc := services.NewSiteService(siteRepo, githubClient, userSvc)
	buildSvc := services.NewBuildService(buildRepo, siteRepo, userRepo, runner, cfg.Builder.BasePath)

	buildCtx, stopBuilds := context.WithCancel(context.Background())
	defer stopBuilds()
	runner.Start(buildCtx, buildSvc)
	log.WithField("workers", cfg.Builder.Workers).Info("build workers started")

	// Primary adapter
	h := handlers.New(siteSvc, userSvc, authSvc, buildSvc, cfg.Github.WebhookSecret)

	if cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), gin.Recovery())

	api := router.Group("/v1")
	h.RegisterRoutes(api, middleware.TokenAuth(authSvc))

	// Health check with DB ping
	router.GET("/healthz", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced shutdown: %w", err)
	}

	stopBuilds()
	runner.Stop()
	log.Info("server stopped")
	return nil
}

func openPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse db config: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.Database.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	if cfg.Logger.File != "" {
		log.SetOutput(&lumberjack.Logger{
			Filename:   cfg.Logger.File,
			MaxSize:    50, // MB
			MaxBackups: 5,
			MaxAge:     14, // days
		})
	}
}
