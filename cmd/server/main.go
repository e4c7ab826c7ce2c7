package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/kamruz-zzaman/portfolio-v2/internal/app"
	"github.com/kamruz-zzaman/portfolio-v2/internal/config"
)

// teeLog also writes the log to logDir/app.log so a log shipper can pick it
// up. Stdout-only when the directory is not writable.
func teeLog(logDir string) {
	if logDir == "" {
		return
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return
	}
	f, err := os.OpenFile(filepath.Join(logDir, "app.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	log.SetOutput(io.MultiWriter(os.Stdout, f))
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	teeLog(cfg.LogDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := app.New(cfg)
	if err != nil {
		log.Fatal("Failed to initialize server:", err)
	}

	if err := server.Run(ctx); err != nil {
		log.Fatal("Server error:", err)
	}
	log.Println("Server stopped")
}
