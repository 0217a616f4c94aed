package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"shorts-pipeline/internal/assemble"
	"shorts-pipeline/internal/config"
	"shorts-pipeline/internal/footage"
	"shorts-pipeline/internal/history"
	"shorts-pipeline/internal/idea"
	"shorts-pipeline/internal/job"
	"shorts-pipeline/internal/narration"
	"shorts-pipeline/internal/pipeline"
	"shorts-pipeline/internal/script"
	"shorts-pipeline/internal/server"
	"shorts-pipeline/internal/thumbnail"
	"shorts-pipeline/internal/trends"
	"shorts-pipeline/internal/upload"
)

func main() {
	// Load .env (local dev only)
	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	for _, dir := range cfg.Dirs() {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create dir %s: %v", dir, err)
		}
	}

	if _, err := exec.LookPath("ffmpeg"); err != nil {
		log.Println("⚠️  ffmpeg not found in PATH — video assembly will fail until it is installed")
	}

	store, err := history.Open(filepath.Join(cfg.Paths.Data, "shorts.db"))
	if err != nil {
		log.Fatalf("Failed to open history store: %v", err)
	}
	defer store.Close()

	var trendSource pipeline.TrendSource
	if tc, err := trends.New(); err != nil {
		log.Printf("⚠️  Trends disabled: %v", err)
	} else {
		trendSource = tc
	}

	var uploader pipeline.Uploader
	if upload.Configured() {
		uploader = upload.New(cfg)
	} else {
		log.Println("⚠️  YouTube credentials not set — finished videos stay local")
	}

	runner := pipeline.NewRunner(cfg,
		idea.New(cfg),
		trendSource,
		script.New(cfg),
		narration.New(cfg),
		footage.New(cfg),
		thumbnail.New(cfg),
		assemble.New(cfg),
		uploader,
		store,
	)

	coord := job.NewCoordinator(runner, time.Duration(cfg.Jobs.RetentionSec)*time.Second)

	e := echo.New()
	e.HideBanner = true
	e.Validator = server.NewAppValidator()
	e.HTTPErrorHandler = server.HTTPErrorHandler
	e.Use(middleware.Recover())
	server.New(coord, store).Register(e)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		log.Printf("🎬 Shorts pipeline dashboard listening on %s", addr)
		if err := e.Start(addr); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
