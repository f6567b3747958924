package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/shelfworks/readstack/backend/handlers"
	"github.com/shelfworks/readstack/readstack"
	"github.com/shelfworks/readstack/readstack/database"
	"github.com/shelfworks/readstack/readstack/logger"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := readstack.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}

	slog.SetDefault(slog.New(logger.NewHandler(cfg.Log.Level)))

	slog.Info("Starting ReadStack progression service",
		slog.String("version", version),
		slog.String("commit", commit))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dbStartTime := time.Now()
	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		slog.Error("Database connection failed",
			slog.Any("error", err),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}

	slog.Info("Database connected",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema", slog.Any("error", err))
		db.Close()
		os.Exit(-1)
	}
	slog.Info("Database schema initialized")

	app := readstack.New(*cfg, db, version, commit)
	defer app.Close()

	server := fiber.New(fiber.Config{
		AppName:               "readstack",
		DisableStartupMessage: true,
	})
	handlers.RegisterRoutes(server, handlers.NewWebApp(app))

	go func() {
		slog.Info("HTTP server listening", slog.String("addr", cfg.Server.Addr()))
		if err := server.Listen(cfg.Server.Addr()); err != nil {
			slog.Error("HTTP server stopped", slog.Any("error", err))
		}
	}()

	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s

	slog.Info("Shutting down")
	if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("Failed to shut down HTTP server", slog.Any("error", err))
	}
}
